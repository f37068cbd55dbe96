package catalog

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, item *model.StockItem) error
	FindByID(ctx context.Context, id string) (*model.StockItem, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.StockItem, error)
	FindAll(ctx context.Context) ([]model.StockItem, error)
	Search(ctx context.Context, query string, limit int) ([]model.StockItem, error)
	Delete(ctx context.Context, id string) error

	// Check SKU/Barcode uniqueness
	IsSKUUnique(ctx context.Context, sku string) (bool, error)
	IsBarcodeUnique(ctx context.Context, barcode string) (bool, error)
}
