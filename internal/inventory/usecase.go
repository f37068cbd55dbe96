package inventory

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type UseCase interface {
	GetInventory(ctx context.Context) ([]model.InventoryRow, error)
	AddStock(ctx context.Context, input *dto.AddStockInput) error
	Decrement(ctx context.Context, itemID string, quantity int) error
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.StockItem, error)
	DeleteProduct(ctx context.Context, itemID string) error
	Receive(ctx context.Context, input *dto.ReceiveInput) (*dto.ReceiveResult, error)
}
