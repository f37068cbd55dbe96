package fulfillment

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/fulfillment/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type UseCase interface {
	Start(ctx context.Context, requestID string) (*Session, error)
	Get(ctx context.Context, requestID string) (*Session, error)
	Scan(ctx context.Context, requestID, barcode string) (*dto.ScanResult, error)
	Confirm(ctx context.Context, requestID string, input *dto.ConfirmInput) (*Session, error)
	Ship(ctx context.Context, requestID string) (*model.StockRequest, error)
	Abandon(ctx context.Context, requestID string) error
}

// Requests is the part of the lifecycle engine fulfillment depends on.
type Requests interface {
	GetRequest(ctx context.Context, id string) (*model.StockRequest, error)
	MarkShipped(ctx context.Context, id string) (*model.StockRequest, error)
}

type BarcodeFinder interface {
	FindByBarcode(ctx context.Context, barcode string) (*model.StockItem, error)
}
