package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/database"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.InventoryRow, error) {
	rows := []model.InventoryRow{}
	query := `
        SELECT wi.id, wi.item_id, wi.available_quantity, si.name, si.sku, si.barcode
        FROM warehouse_inventory wi
        JOIN stock_items si ON si.id = wi.item_id
        ORDER BY si.name ASC
    `
	err := sqlx.SelectContext(ctx, database.Conn(ctx, r.DB), &rows, query)
	return rows, err
}

func (r *PGRepository) FindByItemID(ctx context.Context, itemID string) (*model.InventoryEntry, error) {
	var entry model.InventoryEntry
	query := r.DB.Rebind(`SELECT id, item_id, available_quantity FROM warehouse_inventory WHERE item_id = ? LIMIT 1`)
	err := sqlx.GetContext(ctx, database.Conn(ctx, r.DB), &entry, query, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Entries are created lazily on first stock addition
		}
		return nil, err
	}
	return &entry, nil
}

func (r *PGRepository) Create(ctx context.Context, entry *model.InventoryEntry) error {
	query := `
        INSERT INTO warehouse_inventory (id, item_id, available_quantity)
        VALUES (:id, :item_id, :available_quantity)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), query, entry)
	return err
}

func (r *PGRepository) Increment(ctx context.Context, itemID string, quantity int) error {
	query := r.DB.Rebind(`
        INSERT INTO warehouse_inventory (id, item_id, available_quantity)
        VALUES (?, ?, ?)
        ON CONFLICT (item_id)
        DO UPDATE SET available_quantity = warehouse_inventory.available_quantity + EXCLUDED.available_quantity
    `)
	_, err := database.Conn(ctx, r.DB).ExecContext(ctx, query, uuid.New().String(), itemID, quantity)
	return err
}

func (r *PGRepository) Decrement(ctx context.Context, itemID string, quantity int) (*model.InventoryEntry, error) {
	var entry model.InventoryEntry
	query := r.DB.Rebind(`
        UPDATE warehouse_inventory
        SET available_quantity = CASE WHEN available_quantity > ? THEN available_quantity - ? ELSE 0 END
        WHERE item_id = ?
        RETURNING id, item_id, available_quantity
    `)
	err := sqlx.GetContext(ctx, database.Conn(ctx, r.DB), &entry, query, quantity, quantity, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *PGRepository) DeleteByItemID(ctx context.Context, itemID string) error {
	_, err := database.Conn(ctx, r.DB).ExecContext(ctx, r.DB.Rebind(`DELETE FROM warehouse_inventory WHERE item_id = ?`), itemID)
	return err
}

func (r *PGRepository) DeleteRequestItemsByItemID(ctx context.Context, itemID string) error {
	_, err := database.Conn(ctx, r.DB).ExecContext(ctx, r.DB.Rebind(`DELETE FROM stock_request_items WHERE item_id = ?`), itemID)
	return err
}
