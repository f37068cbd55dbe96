package usecase_test

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-stock-service/internal/catalog"
	"github.com/fekuna/omnipos-stock-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-stock-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-stock-service/internal/catalog/usecase"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/testutil"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUseCase(t *testing.T) catalog.UseCase {
	t.Helper()
	db := testutil.NewDB(t)
	return usecase.NewCatalogUseCase(repository.NewPGRepository(db), nil, nil, logger.NewNop())
}

func TestCreateItem(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	item, err := uc.CreateItem(ctx, &dto.CreateItemInput{Name: "Widget", SKU: "W-1", Barcode: " 111 "})
	require.NoError(t, err)
	assert.Equal(t, "111", item.BarcodeValue())

	_, err = uc.CreateItem(ctx, &dto.CreateItemInput{Name: "Again", SKU: "W-1"})
	assert.ErrorIs(t, err, model.ErrConflict)
	_, err = uc.CreateItem(ctx, &dto.CreateItemInput{Name: "Again", SKU: "W-2", Barcode: "111"})
	assert.ErrorIs(t, err, model.ErrConflict)
	_, err = uc.CreateItem(ctx, &dto.CreateItemInput{Name: " ", SKU: "W-3"})
	assert.ErrorIs(t, err, model.ErrValidation)

	got, err := uc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
}

func TestGetItemByBarcode(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()
	_, err := uc.CreateItem(ctx, &dto.CreateItemInput{Name: "Widget", SKU: "W-1", Barcode: "111"})
	require.NoError(t, err)

	item, err := uc.GetItemByBarcode(ctx, "111")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "W-1", item.SKU)

	missing, err := uc.GetItemByBarcode(ctx, "222")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = uc.GetItemByBarcode(ctx, "")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSearchItems_FallsBackToDatabase(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()
	for _, in := range []dto.CreateItemInput{
		{Name: "Blue Widget", SKU: "BW-1", Barcode: "9300001"},
		{Name: "Red Widget", SKU: "RW-1"},
		{Name: "Gadget", SKU: "G-1", Barcode: "9300002"},
	} {
		in := in
		_, err := uc.CreateItem(ctx, &in)
		require.NoError(t, err)
	}

	byName, err := uc.SearchItems(ctx, &dto.SearchFilters{Query: "widget"})
	require.NoError(t, err)
	require.Len(t, byName, 2)
	assert.Equal(t, "Blue Widget", byName[0].Name)

	byBarcode, err := uc.SearchItems(ctx, &dto.SearchFilters{Query: "930000"})
	require.NoError(t, err)
	assert.Len(t, byBarcode, 2)

	limited, err := uc.SearchItems(ctx, &dto.SearchFilters{Query: "w", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	all, err := uc.SearchItems(ctx, &dto.SearchFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
