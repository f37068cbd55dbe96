package catalog

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type UseCase interface {
	Syncer

	CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.StockItem, error)
	GetItem(ctx context.Context, id string) (*model.StockItem, error)
	GetItemByBarcode(ctx context.Context, barcode string) (*model.StockItem, error)
	ListItems(ctx context.Context) ([]model.StockItem, error)
	SearchItems(ctx context.Context, filters *dto.SearchFilters) ([]model.StockItem, error)
}

// Syncer keeps the list cache and the search index in step with catalog
// writes made outside this package, such as inventory createProduct and
// deleteProduct. Both must be called after the owning transaction commits.
type Syncer interface {
	ItemCreated(ctx context.Context, item *model.StockItem)
	ItemDeleted(ctx context.Context, id string)
}
