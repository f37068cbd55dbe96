package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SequenceRequestNumber names the counter row backing stock request numbers.
const SequenceRequestNumber = "stock_request_number"

// schema is written in the subset of SQL shared by PostgreSQL and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		email          TEXT NOT NULL UNIQUE,
		role           TEXT NOT NULL,
		store_location TEXT,
		password_hash  TEXT,
		created_at     TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stock_items (
		id      TEXT PRIMARY KEY,
		name    TEXT NOT NULL,
		sku     TEXT NOT NULL UNIQUE,
		barcode TEXT UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS warehouse_inventory (
		id                 TEXT PRIMARY KEY,
		item_id            TEXT NOT NULL UNIQUE REFERENCES stock_items(id) ON DELETE CASCADE,
		available_quantity INTEGER NOT NULL DEFAULT 0 CHECK (available_quantity >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS stock_requests (
		id               TEXT PRIMARY KEY,
		request_number   INTEGER NOT NULL UNIQUE,
		store_location   TEXT NOT NULL,
		comments         TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL DEFAULT 'pending',
		submitted_at     TIMESTAMP NOT NULL,
		processed_at     TIMESTAMP,
		shipped_at       TIMESTAMP,
		rejected_at      TIMESTAMP,
		cancelled_at     TIMESTAMP,
		user_id          TEXT REFERENCES users(id),
		processed_by     TEXT REFERENCES users(id),
		rejection_reason TEXT,
		warehouse_notes  TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS stock_request_items (
		id                 TEXT PRIMARY KEY,
		request_id         TEXT NOT NULL REFERENCES stock_requests(id) ON DELETE CASCADE,
		item_id            TEXT NOT NULL REFERENCES stock_items(id) ON DELETE CASCADE,
		requested_quantity INTEGER NOT NULL CHECK (requested_quantity > 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_request_items_request_id ON stock_request_items (request_id)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_requests_store_location ON stock_requests (store_location)`,
	`CREATE TABLE IF NOT EXISTS sequences (
		name  TEXT PRIMARY KEY,
		value BIGINT NOT NULL DEFAULT 0
	)`,
}

// EnsureSchema creates the tables the service needs when they are missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	seed := db.Rebind(`INSERT INTO sequences (name, value) VALUES (?, 0) ON CONFLICT (name) DO NOTHING`)
	if _, err := db.ExecContext(ctx, seed, SequenceRequestNumber); err != nil {
		return fmt.Errorf("seed sequences: %w", err)
	}
	return nil
}

// NextValue atomically increments the named counter and returns the new value.
// Values are never handed out twice, even after the rows that used them are deleted.
func NextValue(ctx context.Context, db *sqlx.DB, name string) (int, error) {
	var value int
	query := db.Rebind(`UPDATE sequences SET value = value + 1 WHERE name = ? RETURNING value`)
	if err := sqlx.GetContext(ctx, Conn(ctx, db), &value, query, name); err != nil {
		return 0, fmt.Errorf("next value of %s: %w", name, err)
	}
	return value, nil
}
