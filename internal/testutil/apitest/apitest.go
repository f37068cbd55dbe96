// Package apitest wires the complete HTTP API on an in-memory database.
package apitest

import (
	"testing"

	catH "github.com/fekuna/omnipos-stock-service/internal/catalog/handler"
	catRepo "github.com/fekuna/omnipos-stock-service/internal/catalog/repository"
	catUC "github.com/fekuna/omnipos-stock-service/internal/catalog/usecase"
	fulH "github.com/fekuna/omnipos-stock-service/internal/fulfillment/handler"
	fulStore "github.com/fekuna/omnipos-stock-service/internal/fulfillment/store"
	fulUC "github.com/fekuna/omnipos-stock-service/internal/fulfillment/usecase"
	invH "github.com/fekuna/omnipos-stock-service/internal/inventory/handler"
	invRepo "github.com/fekuna/omnipos-stock-service/internal/inventory/repository"
	invUC "github.com/fekuna/omnipos-stock-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-stock-service/internal/server"
	reqH "github.com/fekuna/omnipos-stock-service/internal/stockrequest/handler"
	reqRepo "github.com/fekuna/omnipos-stock-service/internal/stockrequest/repository"
	reqUC "github.com/fekuna/omnipos-stock-service/internal/stockrequest/usecase"
	"github.com/fekuna/omnipos-stock-service/internal/testutil"
	userH "github.com/fekuna/omnipos-stock-service/internal/user/handler"
	userRepo "github.com/fekuna/omnipos-stock-service/internal/user/repository"
	userUC "github.com/fekuna/omnipos-stock-service/internal/user/usecase"
	"github.com/fekuna/omnipos-stock-service/pkg/database"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// NewRouter returns the full router and the database behind it.
func NewRouter(t *testing.T) (*gin.Engine, *sqlx.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	log := logger.NewNop()
	tx := database.NewTxManager(db)

	items := catRepo.NewPGRepository(db)
	users := userRepo.NewPGRepository(db)
	catalog := catUC.NewCatalogUseCase(items, nil, nil, log)
	inventory := invUC.NewInventoryUseCase(invRepo.NewPGRepository(db), items, catalog, tx, log)
	requests := reqUC.NewStockRequestUseCase(reqRepo.NewPGRepository(db), items, inventory, tx, log)
	fulfillment := fulUC.NewFulfillmentUseCase(requests, items, fulStore.NewMemoryStore(), log)

	router := server.NewRouter(server.RouterConfig{ServiceName: "stock-service-test", Debug: true}, db, users, log,
		catH.NewCatalogHandler(catalog, log),
		invH.NewInventoryHandler(inventory, log),
		reqH.NewStockRequestHandler(requests, log),
		fulH.NewFulfillmentHandler(fulfillment, log),
		userH.NewUserHandler(userUC.NewUserUseCase(users, tx, log), log),
	)
	return router, db
}
