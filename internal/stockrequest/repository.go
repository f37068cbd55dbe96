package stockrequest

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/stockrequest/dto"
)

type Repository interface {
	NextRequestNumber(ctx context.Context) (int, error)
	Create(ctx context.Context, req *model.StockRequest) error
	FindByID(ctx context.Context, id string) (*model.StockRequest, error)
	FindAll(ctx context.Context, filters *dto.RequestFilters) ([]model.StockRequest, error)
	FindItems(ctx context.Context, requestID string) ([]model.RequestItem, error)

	// UpdatePending writes comments and store location, only while the
	// request is still pending. It reports whether a row was updated.
	UpdatePending(ctx context.Context, req *model.StockRequest) (bool, error)
	// UpdateStatus writes the status and its timestamps if the stored status
	// still equals from. It reports whether a row was updated.
	UpdateStatus(ctx context.Context, req *model.StockRequest, from model.RequestStatus) (bool, error)
	ReplaceItems(ctx context.Context, requestID string, items []model.RequestItem) error
	Delete(ctx context.Context, id string) error
}
