// Package testutil holds fixtures shared by repository and use case tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/database"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// NewDB opens an in-memory SQLite database with the schema applied.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db))
	return db
}

// SeedUser inserts a user and returns an actor context for it.
func SeedUser(t *testing.T, db *sqlx.DB, role model.Role, store string) (*model.User, context.Context) {
	t.Helper()
	id := uuid.New().String()
	u := &model.User{
		BaseModel: model.BaseModel{ID: id, CreatedAt: time.Now().UTC()},
		Name:      string(role),
		Email:     id + "@example.com",
		Role:      role,
	}
	if store != "" {
		u.StoreLocation = &store
	}
	_, err := db.NamedExec(`INSERT INTO users (id, name, email, role, store_location, password_hash, created_at)
		VALUES (:id, :name, :email, :role, :store_location, :password_hash, :created_at)`, u)
	require.NoError(t, err)
	return u, auth.WithActor(context.Background(), auth.ActorFromUser(u))
}

// SeedItem inserts a catalog item with a ledger entry holding quantity.
// A negative quantity skips the ledger entry.
func SeedItem(t *testing.T, db *sqlx.DB, name, sku, barcode string, quantity int) *model.StockItem {
	t.Helper()
	item := &model.StockItem{ID: uuid.New().String(), Name: name, SKU: sku}
	if barcode != "" {
		item.Barcode = &barcode
	}
	_, err := db.NamedExec(`INSERT INTO stock_items (id, name, sku, barcode) VALUES (:id, :name, :sku, :barcode)`, item)
	require.NoError(t, err)

	if quantity >= 0 {
		_, err = db.Exec(`INSERT INTO warehouse_inventory (id, item_id, available_quantity) VALUES (?, ?, ?)`,
			uuid.New().String(), item.ID, quantity)
		require.NoError(t, err)
	}
	return item
}

// Available reads the ledger quantity of itemID.
func Available(t *testing.T, db *sqlx.DB, itemID string) int {
	t.Helper()
	var qty int
	require.NoError(t, db.Get(&qty, `SELECT available_quantity FROM warehouse_inventory WHERE item_id = ?`, itemID))
	return qty
}

// ActorContext returns a context carrying an actor that is not backed by a
// stored user.
func ActorContext(role model.Role, store string) context.Context {
	return auth.WithActor(context.Background(), &auth.Actor{
		UserID:        uuid.New().String(),
		Role:          role,
		StoreLocation: store,
	})
}
