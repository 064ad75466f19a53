package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/service"
)

func newInventoryFixture() (service.InventoryService, *memProductRepo, *memInventoryRepo) {
	productRepo := newMemProductRepo()
	inventoryRepo := &memInventoryRepo{}
	svc := service.NewInventoryService(productRepo, inventoryRepo)
	return svc, productRepo, inventoryRepo
}

func seedProduct(t *testing.T, repo *memProductRepo) model.Product {
	t.Helper()

	id, err := uuid.NewV7()
	require.NoError(t, err)

	product := model.Product{
		ID:        id,
		Sku:       "WID-" + id.String()[:8],
		Name:      "Widget",
		UnitPrice: 9.99,
		CostPrice: 4.5,
	}
	require.NoError(t, repo.Create(context.Background(), product))
	return product
}

func TestAddInventory(t *testing.T) {
	svc, productRepo, inventoryRepo := newInventoryFixture()
	product := seedProduct(t, productRepo)

	t.Run("Should create an item for an existing product", func(t *testing.T) {
		item, err := svc.AddInventory(context.Background(), service.AddInventoryParams{
			ProductID: product.ID,
			Quantity:  25,
			Location:  "Main Warehouse",
			Status:    model.InventoryStatusAvailable,
		})
		require.NoError(t, err)

		assert.Equal(t, product.ID, item.ProductID)
		assert.Equal(t, 25, item.Quantity)
		assert.False(t, item.LastCountDate.IsZero())
		require.Len(t, inventoryRepo.items, 1)
	})

	t.Run("Should reject an unknown product", func(t *testing.T) {
		_, err := svc.AddInventory(context.Background(), service.AddInventoryParams{
			ProductID: uuid.New(),
			Quantity:  5,
		})
		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})
}

func TestSetQuantity(t *testing.T) {
	svc, productRepo, inventoryRepo := newInventoryFixture()
	product := seedProduct(t, productRepo)
	seedInventory(t, inventoryRepo, product.ID, 10)

	item, err := svc.SetQuantity(context.Background(), inventoryRepo.items[0].ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)

	t.Run("Should fail for a missing item", func(t *testing.T) {
		_, err := svc.SetQuantity(context.Background(), uuid.New(), 4)
		assert.ErrorIs(t, err, apperr.InventoryItemNotFoundErr)
	})
}

func TestDueForRecount(t *testing.T) {
	svc, productRepo, inventoryRepo := newInventoryFixture()
	product := seedProduct(t, productRepo)

	stale, err := uuid.NewV7()
	require.NoError(t, err)
	fresh, err := uuid.NewV7()
	require.NoError(t, err)

	inventoryRepo.items = append(inventoryRepo.items,
		model.InventoryItem{
			ID:            stale,
			ProductID:     product.ID,
			Quantity:      5,
			LastCountDate: time.Now().AddDate(0, 0, -45),
		},
		model.InventoryItem{
			ID:            fresh,
			ProductID:     product.ID,
			Quantity:      5,
			LastCountDate: time.Now().AddDate(0, 0, -2),
		},
	)

	t.Run("Should flag only stale items with the default threshold", func(t *testing.T) {
		items, err := svc.DueForRecount(context.Background(), 0)
		require.NoError(t, err)

		require.Len(t, items, 1)
		assert.Equal(t, stale, items[0].ID)
	})

	t.Run("Should honor a custom threshold", func(t *testing.T) {
		items, err := svc.DueForRecount(context.Background(), 1)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})
}
