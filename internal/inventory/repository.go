package inventory

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type Repository interface {
	FindAll(ctx context.Context) ([]model.InventoryRow, error)
	FindByItemID(ctx context.Context, itemID string) (*model.InventoryEntry, error)

	// Core stock operations
	Create(ctx context.Context, entry *model.InventoryEntry) error
	Increment(ctx context.Context, itemID string, quantity int) error
	// Decrement floors at zero and returns the updated entry, or nil when the
	// item has no ledger entry.
	Decrement(ctx context.Context, itemID string, quantity int) (*model.InventoryEntry, error)

	// Product removal
	DeleteByItemID(ctx context.Context, itemID string) error
	DeleteRequestItemsByItemID(ctx context.Context, itemID string) error
}
