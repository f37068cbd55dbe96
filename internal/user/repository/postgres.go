package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, name, email, role, store_location, password_hash, created_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (id, name, email, role, store_location, password_hash, created_at)
        VALUES (:id, :name, :email, :role, :store_location, :password_hash, :created_at)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), query, u)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
}

func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg string) (*model.User, error) {
	var u model.User
	err := sqlx.GetContext(ctx, database.Conn(ctx, r.DB), &u, r.DB.Rebind(query), arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	err := sqlx.SelectContext(ctx, database.Conn(ctx, r.DB), &users, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	return users, err
}

func (r *PGRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, database.Conn(ctx, r.DB), &count, `SELECT count(*) FROM users`)
	return count, err
}

func (r *PGRepository) Update(ctx context.Context, u *model.User) error {
	query := `
        UPDATE users
        SET name = :name,
            email = :email,
            role = :role,
            store_location = :store_location,
            password_hash = :password_hash
        WHERE id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), query, u)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := database.Conn(ctx, r.DB).ExecContext(ctx, r.DB.Rebind(`DELETE FROM users WHERE id = ?`), id)
	return err
}

func (r *PGRepository) DeleteRequestsByUser(ctx context.Context, userID string) error {
	conn := database.Conn(ctx, r.DB)
	itemsQuery := r.DB.Rebind(`
        DELETE FROM stock_request_items
        WHERE request_id IN (SELECT id FROM stock_requests WHERE user_id = ?)
    `)
	if _, err := conn.ExecContext(ctx, itemsQuery, userID); err != nil {
		return err
	}
	_, err := conn.ExecContext(ctx, r.DB.Rebind(`DELETE FROM stock_requests WHERE user_id = ?`), userID)
	return err
}

func (r *PGRepository) ClearProcessedBy(ctx context.Context, userID string) error {
	_, err := database.Conn(ctx, r.DB).ExecContext(ctx, r.DB.Rebind(`UPDATE stock_requests SET processed_by = NULL WHERE processed_by = ?`), userID)
	return err
}
