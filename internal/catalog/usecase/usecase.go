package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/catalog"
	"github.com/fekuna/omnipos-stock-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/cache"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/fekuna/omnipos-stock-service/pkg/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	listCacheKey = "stock_items:list"
	listCacheTTL = 5 * time.Minute
	indexName    = "stock_items"

	indexMapping = `{
		"mappings": {
			"properties": {
				"name": { "type": "text" },
				"sku": { "type": "keyword" },
				"barcode": { "type": "keyword" }
			}
		}
	}`
)

type catalogUseCase struct {
	repo   catalog.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

// NewCatalogUseCase wires the catalog. cache and es are optional.
func NewCatalogUseCase(repo catalog.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

func (uc *catalogUseCase) CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.StockItem, error) {
	name := strings.TrimSpace(input.Name)
	sku := strings.TrimSpace(input.SKU)
	if name == "" || sku == "" {
		return nil, fmt.Errorf("%w: name and sku are required", model.ErrValidation)
	}

	unique, err := uc.repo.IsSKUUnique(ctx, sku)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, fmt.Errorf("%w: SKU %q already exists", model.ErrConflict, sku)
	}

	var barcode *string
	if bc := strings.TrimSpace(input.Barcode); bc != "" {
		unique, err := uc.repo.IsBarcodeUnique(ctx, bc)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, fmt.Errorf("%w: barcode %q already exists", model.ErrConflict, bc)
		}
		barcode = &bc
	}

	item := &model.StockItem{
		ID:      uuid.New().String(),
		Name:    name,
		SKU:     sku,
		Barcode: barcode,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	uc.ItemCreated(ctx, item)
	return item, nil
}

func (uc *catalogUseCase) GetItem(ctx context.Context, id string) (*model.StockItem, error) {
	return uc.repo.FindByID(ctx, id)
}

// GetItemByBarcode returns (nil, nil) when no item carries the barcode.
func (uc *catalogUseCase) GetItemByBarcode(ctx context.Context, barcode string) (*model.StockItem, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode parameter is required", model.ErrValidation)
	}
	return uc.repo.FindByBarcode(ctx, barcode)
}

func (uc *catalogUseCase) ListItems(ctx context.Context) ([]model.StockItem, error) {
	if uc.cache != nil {
		var cached []model.StockItem
		hit, err := uc.cache.GetJSON(ctx, listCacheKey, &cached)
		if err != nil {
			uc.logger.Warn("stock item cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	items, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, listCacheKey, items, listCacheTTL); err != nil {
			uc.logger.Warn("stock item cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

func (uc *catalogUseCase) SearchItems(ctx context.Context, filters *dto.SearchFilters) ([]model.StockItem, error) {
	query := strings.TrimSpace(filters.Query)
	if query == "" {
		return uc.ListItems(ctx)
	}

	if uc.es != nil {
		q := map[string]interface{}{
			"query": map[string]interface{}{
				"query_string": map[string]interface{}{
					"query":  fmt.Sprintf("*%s*", query),
					"fields": []string{"name^3", "sku", "barcode"},
				},
			},
		}
		if filters.Limit > 0 {
			q["size"] = filters.Limit
		}

		res, err := uc.es.Search(ctx, indexName, q)
		if err == nil {
			items := make([]model.StockItem, 0, len(res.Hits.Hits))
			for _, hit := range res.Hits.Hits {
				var item model.StockItem
				if err := json.Unmarshal(hit.Source, &item); err == nil {
					items = append(items, item)
				}
			}
			return items, nil
		}
		// If ES fails, fall through to DB
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	return uc.repo.Search(ctx, query, filters.Limit)
}

func (uc *catalogUseCase) ItemCreated(ctx context.Context, item *model.StockItem) {
	uc.invalidateListCache(ctx)
	go uc.syncToElastic(context.Background(), item)
}

func (uc *catalogUseCase) ItemDeleted(ctx context.Context, id string) {
	uc.invalidateListCache(ctx)
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), indexName, id); err != nil {
				uc.logger.Error("failed to delete stock item from ES", zap.String("item_id", id), zap.Error(err))
			}
		}()
	}
}

func (uc *catalogUseCase) invalidateListCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, listCacheKey); err != nil {
		uc.logger.Warn("failed to invalidate stock item cache", zap.Error(err))
	}
}

func (uc *catalogUseCase) syncToElastic(ctx context.Context, item *model.StockItem) {
	if uc.es == nil {
		return
	}
	_ = uc.es.CreateIndex(ctx, indexName, indexMapping)

	if err := uc.es.Index(ctx, indexName, item.ID, item); err != nil {
		uc.logger.Error("failed to index stock item", zap.String("item_id", item.ID), zap.Error(err))
	}
}
