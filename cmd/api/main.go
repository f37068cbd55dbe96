package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-stock-service/config"
	"github.com/fekuna/omnipos-stock-service/internal/fulfillment"
	"github.com/fekuna/omnipos-stock-service/internal/server"
	userDTO "github.com/fekuna/omnipos-stock-service/internal/user/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/broker"
	"github.com/fekuna/omnipos-stock-service/pkg/cache"
	"github.com/fekuna/omnipos-stock-service/pkg/database"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/fekuna/omnipos-stock-service/pkg/search"
	"github.com/fekuna/omnipos-stock-service/pkg/telemetry"
	"github.com/jmoiron/sqlx"

	catH "github.com/fekuna/omnipos-stock-service/internal/catalog/handler"
	catRepoPkg "github.com/fekuna/omnipos-stock-service/internal/catalog/repository"
	catUCPkg "github.com/fekuna/omnipos-stock-service/internal/catalog/usecase"

	invH "github.com/fekuna/omnipos-stock-service/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-stock-service/internal/inventory/listener"
	invRepoPkg "github.com/fekuna/omnipos-stock-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-stock-service/internal/inventory/usecase"

	reqH "github.com/fekuna/omnipos-stock-service/internal/stockrequest/handler"
	reqRepoPkg "github.com/fekuna/omnipos-stock-service/internal/stockrequest/repository"
	reqUCPkg "github.com/fekuna/omnipos-stock-service/internal/stockrequest/usecase"

	fulH "github.com/fekuna/omnipos-stock-service/internal/fulfillment/handler"
	fulStorePkg "github.com/fekuna/omnipos-stock-service/internal/fulfillment/store"
	fulUCPkg "github.com/fekuna/omnipos-stock-service/internal/fulfillment/usecase"

	userH "github.com/fekuna/omnipos-stock-service/internal/user/handler"
	userRepoPkg "github.com/fekuna/omnipos-stock-service/internal/user/repository"
	userUCPkg "github.com/fekuna/omnipos-stock-service/internal/user/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Telemetry
	shutdownTelemetry, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: "1.0.0",
	})
	if err != nil {
		appLogger.Warn("Could not initialise telemetry, continuing without it", zap.Error(err))
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	// 4. Connect to Database
	db, err := openDatabase(cfg)
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoSchema {
		if err := database.EnsureSchema(ctx, db); err != nil {
			appLogger.Fatal("Could not apply schema", zap.Error(err))
		}
	}
	txManager := database.NewTxManager(db)

	// 5. Initialize Redis (optional)
	var redisClient *cache.RedisClient
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 6. Initialize Elasticsearch (optional)
	var esClient *search.Client
	if cfg.Elastic.Enabled {
		esClient, err = search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch (search falls back to the database)", zap.Error(err))
			esClient = nil
		} else {
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 7. Initialize Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	reqRepo := reqRepoPkg.NewPGRepository(db)
	userRepo := userRepoPkg.NewPGRepository(db)

	// 8. Initialize UseCases
	catUC := catUCPkg.NewCatalogUseCase(catRepo, redisClient, esClient, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, catRepo, catUC, txManager, appLogger)
	reqUC := reqUCPkg.NewStockRequestUseCase(reqRepo, catRepo, invUC, txManager, appLogger)
	userUC := userUCPkg.NewUserUseCase(userRepo, txManager, appLogger)

	var sessions fulfillment.Store = fulStorePkg.NewMemoryStore()
	if redisClient != nil {
		sessions = fulStorePkg.NewRedisStore(redisClient, cfg.Fulfillment.SessionTTL, appLogger)
	}
	fulUC := fulUCPkg.NewFulfillmentUseCase(reqUC, catRepo, sessions, appLogger)

	if cfg.Bootstrap.AdminEmail != "" {
		admin, err := userUC.EnsureAdmin(ctx, &userDTO.CreateUserInput{
			Name:     cfg.Bootstrap.AdminName,
			Email:    cfg.Bootstrap.AdminEmail,
			Password: cfg.Bootstrap.AdminPassword,
		})
		if err != nil {
			appLogger.Fatal("Could not bootstrap admin user", zap.Error(err))
		}
		if admin != nil {
			appLogger.Info("Bootstrapped admin user", zap.String("user_id", admin.ID), zap.String("email", admin.Email))
		}
	}

	// 9. Goods receipt listener (optional)
	if cfg.Kafka.Enabled {
		kafkaConsumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()
		appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

		receiptListener := invListenerPkg.NewReceiptListener(kafkaConsumer, invUC, appLogger)
		go receiptListener.Start(ctx)
	}

	// 10. HTTP API
	router := server.NewRouter(
		server.RouterConfig{ServiceName: cfg.Telemetry.ServiceName, Debug: logConfig.IsDevelopment},
		db,
		userRepo,
		appLogger,
		catH.NewCatalogHandler(catUC, appLogger),
		invH.NewInventoryHandler(invUC, appLogger),
		reqH.NewStockRequestHandler(reqUC, appLogger),
		fulH.NewFulfillmentHandler(fulUC, appLogger),
		userH.NewUserHandler(userUC, appLogger),
	)
	httpServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	// 11. gRPC health
	grpcPort := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcPort)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	grpcServer, healthServer := server.NewGRPCServer()
	go server.WatchDatabase(ctx, db, healthServer, 10*time.Second, appLogger)

	go func() {
		appLogger.Info("Starting gRPC health server", zap.String("port", grpcPort))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve gRPC", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		appLogger.Error("telemetry shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func openDatabase(cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.Database.Driver {
	case database.DriverSQLite:
		return database.NewSQLite(cfg.Database.SQLitePath)
	case database.DriverPostgres, "postgres":
		return database.NewPostgres(&database.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
	default:
		return nil, errors.New("unsupported DB_DRIVER " + cfg.Database.Driver)
	}
}

func normalizePort(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
