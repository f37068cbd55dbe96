package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, EnsureSchema(context.Background(), db))
	return db
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, EnsureSchema(context.Background(), db))

	var count int
	require.NoError(t, db.Get(&count, `SELECT count(*) FROM sequences`))
	assert.Equal(t, 1, count)
}

func TestNextValue_Monotonic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, err := NextValue(ctx, db, SequenceRequestNumber)
	require.NoError(t, err)
	second, err := NextValue(ctx, db, SequenceRequestNumber)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestNextValue_UnknownSequence(t *testing.T) {
	db := newTestDB(t)
	_, err := NextValue(context.Background(), db, "missing")
	assert.Error(t, err)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	tm := NewTxManager(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := tm.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := NextValue(ctx, db, SequenceRequestNumber); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	next, err := NextValue(ctx, db, SequenceRequestNumber)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestWithinTx_NestedJoinsOuter(t *testing.T) {
	db := newTestDB(t)
	tm := NewTxManager(db)
	ctx := context.Background()

	err := tm.WithinTx(ctx, func(outer context.Context) error {
		return tm.WithinTx(outer, func(inner context.Context) error {
			assert.Same(t, Conn(outer, db), Conn(inner, db))
			_, err := NextValue(inner, db, SequenceRequestNumber)
			return err
		})
	})
	require.NoError(t, err)

	var value int
	require.NoError(t, db.Get(&value, `SELECT value FROM sequences WHERE name = ?`, SequenceRequestNumber))
	assert.Equal(t, 1, value)
}

func TestConn_WithoutTx(t *testing.T) {
	db := newTestDB(t)
	assert.Same(t, db, Conn(context.Background(), db))
}
