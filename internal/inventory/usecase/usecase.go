package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-stock-service/internal/catalog"
	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/database"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	items  catalog.Repository
	syncer catalog.Syncer
	tx     database.Transactor
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, items catalog.Repository, syncer catalog.Syncer, tx database.Transactor, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		items:  items,
		syncer: syncer,
		tx:     tx,
		logger: log,
	}
}

func (uc *inventoryUseCase) GetInventory(ctx context.Context) ([]model.InventoryRow, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *inventoryUseCase) AddStock(ctx context.Context, input *dto.AddStockInput) error {
	if input.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", model.ErrValidation)
	}
	item, err := uc.items.FindByID(ctx, input.ItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: stock item %s", model.ErrNotFound, input.ItemID)
	}

	if err := uc.repo.Increment(ctx, input.ItemID, input.Quantity); err != nil {
		return err
	}
	uc.logger.Info("stock added", zap.String("item_id", input.ItemID), zap.Int("quantity", input.Quantity))
	return nil
}

// Decrement takes quantity out of the ledger, flooring at zero. An item with
// no ledger entry counts as zero available and is left untouched.
func (uc *inventoryUseCase) Decrement(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return nil
	}

	before, err := uc.repo.FindByItemID(ctx, itemID)
	if err != nil {
		return err
	}
	if before == nil {
		uc.logger.Warn("decrement on item without inventory entry",
			zap.String("item_id", itemID),
			zap.Int("requested", quantity),
		)
		return nil
	}

	after, err := uc.repo.Decrement(ctx, itemID, quantity)
	if err != nil {
		return err
	}
	if after != nil && before.AvailableQuantity < quantity {
		uc.logger.Warn("inventory decrement clamped at zero",
			zap.String("item_id", itemID),
			zap.Int("requested", quantity),
			zap.Int("available", before.AvailableQuantity),
		)
	}
	return nil
}

func (uc *inventoryUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.StockItem, error) {
	name := strings.TrimSpace(input.Name)
	sku := strings.TrimSpace(input.SKU)
	if name == "" || sku == "" {
		return nil, fmt.Errorf("%w: product name and sku are required", model.ErrValidation)
	}
	if input.InitialQuantity < 0 {
		return nil, fmt.Errorf("%w: initial quantity cannot be negative", model.ErrValidation)
	}

	item := &model.StockItem{ID: uuid.New().String(), Name: name, SKU: sku}
	if bc := strings.TrimSpace(input.Barcode); bc != "" {
		item.Barcode = &bc
	}

	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		unique, err := uc.items.IsSKUUnique(ctx, sku)
		if err != nil {
			return err
		}
		if !unique {
			return fmt.Errorf("%w: SKU %q already exists", model.ErrConflict, sku)
		}
		if item.Barcode != nil {
			unique, err := uc.items.IsBarcodeUnique(ctx, *item.Barcode)
			if err != nil {
				return err
			}
			if !unique {
				return fmt.Errorf("%w: barcode %q already exists", model.ErrConflict, *item.Barcode)
			}
		}

		if err := uc.items.Create(ctx, item); err != nil {
			return fmt.Errorf("create stock item: %w", err)
		}
		return uc.repo.Create(ctx, &model.InventoryEntry{
			ID:                uuid.New().String(),
			ItemID:            item.ID,
			AvailableQuantity: input.InitialQuantity,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.syncer.ItemCreated(ctx, item)
	uc.logger.Info("product created",
		zap.String("item_id", item.ID),
		zap.String("sku", item.SKU),
		zap.Int("initial_quantity", input.InitialQuantity),
	)
	return item, nil
}

// DeleteProduct removes the ledger entry, every request line that references
// the item, and the catalog record in one transaction.
func (uc *inventoryUseCase) DeleteProduct(ctx context.Context, itemID string) error {
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		item, err := uc.items.FindByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: stock item %s", model.ErrNotFound, itemID)
		}

		if err := uc.repo.DeleteByItemID(ctx, itemID); err != nil {
			return fmt.Errorf("delete inventory entry: %w", err)
		}
		if err := uc.repo.DeleteRequestItemsByItemID(ctx, itemID); err != nil {
			return fmt.Errorf("delete request items: %w", err)
		}
		return uc.items.Delete(ctx, itemID)
	})
	if err != nil {
		return err
	}

	uc.syncer.ItemDeleted(ctx, itemID)
	uc.logger.Info("product deleted", zap.String("item_id", itemID))
	return nil
}

// Receive books a goods receipt. Without SkipInvalid the batch is all or
// nothing.
func (uc *inventoryUseCase) Receive(ctx context.Context, input *dto.ReceiveInput) (*dto.ReceiveResult, error) {
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("%w: receipt has no lines", model.ErrValidation)
	}

	result := &dto.ReceiveResult{}
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		for i, line := range input.Lines {
			itemID, err := uc.resolveLine(ctx, line)
			if err == nil && line.Quantity <= 0 {
				err = fmt.Errorf("%w: quantity must be positive", model.ErrValidation)
			}
			if err != nil {
				if !input.SkipInvalid || !isLineError(err) {
					return fmt.Errorf("line %d: %w", i+1, err)
				}
				uc.logger.Warn("skipping receipt line",
					zap.String("reference", input.Reference),
					zap.Int("line", i+1),
					zap.Error(err),
				)
				result.Skipped++
				continue
			}

			if err := uc.repo.Increment(ctx, itemID, line.Quantity); err != nil {
				return err
			}
			result.Applied++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("receipt booked",
		zap.String("reference", input.Reference),
		zap.Int("applied", result.Applied),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (uc *inventoryUseCase) resolveLine(ctx context.Context, line dto.ReceiveLine) (string, error) {
	var (
		item *model.StockItem
		err  error
	)
	switch {
	case line.ItemID != "":
		item, err = uc.items.FindByID(ctx, line.ItemID)
	case line.Barcode != "":
		item, err = uc.items.FindByBarcode(ctx, line.Barcode)
	default:
		return "", fmt.Errorf("%w: line needs itemId or barcode", model.ErrValidation)
	}
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", fmt.Errorf("%w: stock item %s%s", model.ErrNotFound, line.ItemID, line.Barcode)
	}
	return item.ID, nil
}

func isLineError(err error) bool {
	return errors.Is(err, model.ErrValidation) || errors.Is(err, model.ErrNotFound)
}
