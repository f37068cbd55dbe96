package server

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name reported by the gRPC health service.
const ServiceName = "omnipos.stock.v1.StockService"

// NewGRPCServer returns a server exposing grpc.health.v1 and reflection.
func NewGRPCServer() (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// Register Reflection
	reflection.Register(grpcServer)
	return grpcServer, healthServer
}

// WatchDatabase pings db every interval and mirrors the result into the
// health status of both the overall server and ServiceName.
func WatchDatabase(ctx context.Context, db Pinger, hs *health.Server, interval time.Duration, log logger.ZapLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		status := healthpb.HealthCheckResponse_SERVING
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		if err := db.PingContext(pingCtx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			if last != status {
				log.Warn("database unreachable, reporting NOT_SERVING", zap.Error(err))
			}
		}
		cancel()

		if status != last {
			hs.SetServingStatus("", status)
			hs.SetServingStatus(ServiceName, status)
			last = status
		}

		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
		}
	}
}
