package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/stockrequest/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

const requestColumns = `id, request_number, store_location, comments, status, submitted_at,
        processed_at, shipped_at, rejected_at, cancelled_at, user_id, processed_by,
        rejection_reason, warehouse_notes`

const itemColumns = `ri.id, ri.request_id, ri.item_id, ri.requested_quantity, si.name, si.sku, si.barcode`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) NextRequestNumber(ctx context.Context) (int, error) {
	return database.NextValue(ctx, r.DB, database.SequenceRequestNumber)
}

func (r *PGRepository) Create(ctx context.Context, req *model.StockRequest) error {
	query := `
        INSERT INTO stock_requests (
            id, request_number, store_location, comments, status, submitted_at, user_id
        )
        VALUES (
            :id, :request_number, :store_location, :comments, :status, :submitted_at, :user_id
        )
    `
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), query, req)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.StockRequest, error) {
	var req model.StockRequest
	query := r.DB.Rebind(`SELECT ` + requestColumns + ` FROM stock_requests WHERE id = ? LIMIT 1`)
	err := sqlx.GetContext(ctx, database.Conn(ctx, r.DB), &req, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.FindItems(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Items = items
	return &req, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.RequestFilters) ([]model.StockRequest, error) {
	conditions := []string{}
	args := []interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}
	if f.StoreLocation != "" {
		conditions = append(conditions, "store_location = ?")
		args = append(args, f.StoreLocation)
	}
	if f.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, f.UserID)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	requests := []model.StockRequest{}
	query := r.DB.Rebind(`SELECT ` + requestColumns + ` FROM stock_requests` + whereClause +
		` ORDER BY submitted_at DESC, request_number DESC`)
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.DB), &requests, query, args...); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return requests, nil
	}

	ids := make([]string, len(requests))
	for i, req := range requests {
		ids[i] = req.ID
	}

	itemQuery, itemArgs, err := sqlx.In(`
        SELECT `+itemColumns+`
        FROM stock_request_items ri
        JOIN stock_items si ON si.id = ri.item_id
        WHERE ri.request_id IN (?)
        ORDER BY si.name ASC
    `, ids)
	if err != nil {
		return nil, err
	}

	// Rebind for Postgres ($1, $2...)
	var items []model.RequestItem
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.DB), &items, r.DB.Rebind(itemQuery), itemArgs...); err != nil {
		return nil, err
	}

	byRequest := make(map[string][]model.RequestItem, len(requests))
	for _, item := range items {
		byRequest[item.RequestID] = append(byRequest[item.RequestID], item)
	}
	for i := range requests {
		requests[i].Items = byRequest[requests[i].ID]
		if requests[i].Items == nil {
			requests[i].Items = []model.RequestItem{}
		}
	}
	return requests, nil
}

func (r *PGRepository) FindItems(ctx context.Context, requestID string) ([]model.RequestItem, error) {
	items := []model.RequestItem{}
	query := r.DB.Rebind(`
        SELECT ` + itemColumns + `
        FROM stock_request_items ri
        JOIN stock_items si ON si.id = ri.item_id
        WHERE ri.request_id = ?
        ORDER BY si.name ASC
    `)
	err := sqlx.SelectContext(ctx, database.Conn(ctx, r.DB), &items, query, requestID)
	return items, err
}

func (r *PGRepository) UpdatePending(ctx context.Context, req *model.StockRequest) (bool, error) {
	query := r.DB.Rebind(`
        UPDATE stock_requests
        SET comments = ?, store_location = ?
        WHERE id = ? AND status = ?
    `)
	res, err := database.Conn(ctx, r.DB).ExecContext(ctx, query, req.Comments, req.StoreLocation, req.ID, model.StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, req *model.StockRequest, from model.RequestStatus) (bool, error) {
	query := r.DB.Rebind(`
        UPDATE stock_requests
        SET status = ?,
            processed_at = ?,
            shipped_at = ?,
            rejected_at = ?,
            cancelled_at = ?,
            processed_by = ?,
            rejection_reason = ?,
            warehouse_notes = ?
        WHERE id = ? AND status = ?
    `)
	res, err := database.Conn(ctx, r.DB).ExecContext(ctx, query,
		req.Status, req.ProcessedAt, req.ShippedAt, req.RejectedAt, req.CancelledAt,
		req.ProcessedBy, req.RejectionReason, req.WarehouseNotes,
		req.ID, from,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ReplaceItems deletes every line of the request and inserts items in their place.
func (r *PGRepository) ReplaceItems(ctx context.Context, requestID string, items []model.RequestItem) error {
	conn := database.Conn(ctx, r.DB)
	if _, err := conn.ExecContext(ctx, r.DB.Rebind(`DELETE FROM stock_request_items WHERE request_id = ?`), requestID); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	for i := range items {
		items[i].RequestID = requestID
	}
	query := `
        INSERT INTO stock_request_items (id, request_id, item_id, requested_quantity)
        VALUES (:id, :request_id, :item_id, :requested_quantity)
    `
	_, err := sqlx.NamedExecContext(ctx, conn, query, items)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	conn := database.Conn(ctx, r.DB)
	if _, err := conn.ExecContext(ctx, r.DB.Rebind(`DELETE FROM stock_request_items WHERE request_id = ?`), id); err != nil {
		return err
	}
	_, err := conn.ExecContext(ctx, r.DB.Rebind(`DELETE FROM stock_requests WHERE id = ?`), id)
	return err
}
