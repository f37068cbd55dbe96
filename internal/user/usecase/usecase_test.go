package usecase_test

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/testutil"
	"github.com/fekuna/omnipos-stock-service/internal/user"
	"github.com/fekuna/omnipos-stock-service/internal/user/dto"
	"github.com/fekuna/omnipos-stock-service/internal/user/repository"
	"github.com/fekuna/omnipos-stock-service/internal/user/usecase"
	"github.com/fekuna/omnipos-stock-service/pkg/database"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUseCase(t *testing.T) (user.UseCase, *sqlx.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return usecase.NewUserUseCase(repository.NewPGRepository(db), database.NewTxManager(db), logger.NewNop()), db
}

func TestCreateUser(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	u, err := uc.CreateUser(ctx, &dto.CreateUserInput{
		Name:          "Sam",
		Email:         " Sam@Example.com ",
		Role:          model.RoleStoreManager,
		StoreLocation: "Sydney",
		Password:      "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", u.Email)
	require.NotNil(t, u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte("correct horse")))

	got, err := uc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sydney", *got.StoreLocation)

	_, err = uc.CreateUser(ctx, &dto.CreateUserInput{Name: "Dup", Email: "SAM@example.com", Role: model.RoleAdmin})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestCreateUser_Validation(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	cases := map[string]*dto.CreateUserInput{
		"missing name":           {Email: "a@example.com", Role: model.RoleAdmin},
		"bad email":              {Name: "A", Email: "not-an-email", Role: model.RoleAdmin},
		"unknown role":           {Name: "A", Email: "a@example.com", Role: "guest"},
		"store manager no store": {Name: "A", Email: "a@example.com", Role: model.RoleStoreManager},
		"short password":         {Name: "A", Email: "a@example.com", Role: model.RoleAdmin, Password: "short"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.CreateUser(ctx, input)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestUpdateUser(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	a, err := uc.CreateUser(ctx, &dto.CreateUserInput{Name: "A", Email: "a@example.com", Role: model.RoleWarehouseManager})
	require.NoError(t, err)
	_, err = uc.CreateUser(ctx, &dto.CreateUserInput{Name: "B", Email: "b@example.com", Role: model.RoleAdmin})
	require.NoError(t, err)

	role := model.RoleStoreManager
	_, err = uc.UpdateUser(ctx, a.ID, &dto.UpdateUserInput{Role: &role})
	assert.ErrorIs(t, err, model.ErrValidation, "store manager without store")

	store := "Perth"
	updated, err := uc.UpdateUser(ctx, a.ID, &dto.UpdateUserInput{Role: &role, StoreLocation: &store})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStoreManager, updated.Role)

	taken := "B@example.com"
	_, err = uc.UpdateUser(ctx, a.ID, &dto.UpdateUserInput{Email: &taken})
	assert.ErrorIs(t, err, model.ErrConflict)

	same := "A@EXAMPLE.COM"
	_, err = uc.UpdateUser(ctx, a.ID, &dto.UpdateUserInput{Email: &same})
	assert.NoError(t, err)

	_, err = uc.UpdateUser(ctx, "missing", &dto.UpdateUserInput{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteUser_Cascades(t *testing.T) {
	uc, db := newUseCase(t)
	ctx := context.Background()

	store, _ := testutil.SeedUser(t, db, model.RoleStoreManager, "Sydney")
	warehouse, _ := testutil.SeedUser(t, db, model.RoleWarehouseManager, "")
	item := testutil.SeedItem(t, db, "Widget", "W-1", "", 5)

	_, err := db.Exec(`INSERT INTO stock_requests (id, request_number, store_location, status, submitted_at, user_id, processed_by)
		VALUES ('own', 1, 'Sydney', 'accepted', CURRENT_TIMESTAMP, ?, ?),
		       ('other', 2, 'Sydney', 'accepted', CURRENT_TIMESTAMP, NULL, ?)`, store.ID, warehouse.ID, warehouse.ID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO stock_request_items (id, request_id, item_id, requested_quantity) VALUES ('l1', 'own', ?, 1)`, item.ID)
	require.NoError(t, err)

	require.NoError(t, uc.DeleteUser(ctx, store.ID))
	var remaining int
	require.NoError(t, db.Get(&remaining, `SELECT count(*) FROM stock_requests`))
	assert.Equal(t, 1, remaining)
	require.NoError(t, db.Get(&remaining, `SELECT count(*) FROM stock_request_items`))
	assert.Zero(t, remaining)

	require.NoError(t, uc.DeleteUser(ctx, warehouse.ID))
	var processedBy *string
	require.NoError(t, db.Get(&processedBy, `SELECT processed_by FROM stock_requests WHERE id = 'other'`))
	assert.Nil(t, processedBy)

	assert.ErrorIs(t, uc.DeleteUser(ctx, warehouse.ID), model.ErrNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	input := &dto.CreateUserInput{Name: "Root", Email: "root@example.com", Role: model.RoleStoreManager, Password: "bootstrap-pass"}

	admin, err := uc.EnsureAdmin(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	again, err := uc.EnsureAdmin(ctx, input)
	require.NoError(t, err)
	assert.Nil(t, again)

	users, err := uc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
