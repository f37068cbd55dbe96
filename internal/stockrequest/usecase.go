package stockrequest

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/stockrequest/dto"
)

type UseCase interface {
	CreateRequest(ctx context.Context, input *dto.CreateRequestInput) (*model.StockRequest, error)
	UpdateRequest(ctx context.Context, id string, input *dto.UpdateRequestInput) (*model.StockRequest, error)
	TransitionStatus(ctx context.Context, id string, status model.RequestStatus, opts *dto.TransitionOptions) (*model.StockRequest, error)
	AcceptWithModifications(ctx context.Context, id string, items []dto.ItemLine, warehouseNotes string) (*model.StockRequest, error)
	MarkShipped(ctx context.Context, id string) (*model.StockRequest, error)
	DeleteRequest(ctx context.Context, id string) error
	ListRequests(ctx context.Context, filters *dto.RequestFilters) ([]model.StockRequest, error)
	GetRequest(ctx context.Context, id string) (*model.StockRequest, error)
}

// Ledger is the part of the inventory the lifecycle writes to.
type Ledger interface {
	Decrement(ctx context.Context, itemID string, quantity int) error
}

type ItemFinder interface {
	FindByID(ctx context.Context, id string) (*model.StockItem, error)
}
