package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, item *model.StockItem) error {
	query := `INSERT INTO stock_items (id, name, sku, barcode) VALUES (:id, :name, :sku, :barcode)`
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), query, item)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.StockItem, error) {
	return r.findOne(ctx, `SELECT id, name, sku, barcode FROM stock_items WHERE id = ? LIMIT 1`, id)
}

func (r *PGRepository) FindByBarcode(ctx context.Context, barcode string) (*model.StockItem, error) {
	return r.findOne(ctx, `SELECT id, name, sku, barcode FROM stock_items WHERE barcode = ? LIMIT 1`, barcode)
}

func (r *PGRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.StockItem, error) {
	var item model.StockItem
	err := sqlx.GetContext(ctx, database.Conn(ctx, r.DB), &item, r.DB.Rebind(query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.StockItem, error) {
	items := []model.StockItem{}
	err := sqlx.SelectContext(ctx, database.Conn(ctx, r.DB), &items, `SELECT id, name, sku, barcode FROM stock_items ORDER BY name ASC`)
	return items, err
}

// Search is the SQL fallback used when no search index is available.
func (r *PGRepository) Search(ctx context.Context, query string, limit int) ([]model.StockItem, error) {
	items := []model.StockItem{}
	pattern := "%" + strings.ToLower(query) + "%"

	q := `
        SELECT id, name, sku, barcode FROM stock_items
        WHERE LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(COALESCE(barcode, '')) LIKE ?
        ORDER BY name ASC
    `
	args := []interface{}{pattern, pattern, pattern}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	err := sqlx.SelectContext(ctx, database.Conn(ctx, r.DB), &items, r.DB.Rebind(q), args...)
	return items, err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := database.Conn(ctx, r.DB).ExecContext(ctx, r.DB.Rebind(`DELETE FROM stock_items WHERE id = ?`), id)
	return err
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, sku string) (bool, error) {
	return r.isUnique(ctx, `SELECT count(*) FROM stock_items WHERE sku = ?`, sku)
}

func (r *PGRepository) IsBarcodeUnique(ctx context.Context, barcode string) (bool, error) {
	return r.isUnique(ctx, `SELECT count(*) FROM stock_items WHERE barcode = ?`, barcode)
}

func (r *PGRepository) isUnique(ctx context.Context, query string, arg string) (bool, error) {
	var count int
	if err := sqlx.GetContext(ctx, database.Conn(ctx, r.DB), &count, r.DB.Rebind(query), arg); err != nil {
		return false, err
	}
	return count == 0, nil
}
