package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/event"
	"github.com/polybooks/polybooks/internal/service"
)

func TestCreateProduct(t *testing.T) {
	productRepo := newMemProductRepo()
	outboxRepo := &memOutboxRepo{}
	svc := service.NewProductService(fakeDB{}, productRepo, outboxRepo)

	product, err := svc.CreateProduct(context.Background(), service.CreateProductParams{
		Sku:       "WID-001",
		Name:      "Widget",
		Category:  "Hardware",
		UnitPrice: 9.99,
		CostPrice: 4.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "WID-001", product.Sku)
	assert.False(t, product.CreatedAt.IsZero())

	t.Run("Should enqueue a product created event", func(t *testing.T) {
		require.Len(t, outboxRepo.msgs, 1)
		msg := outboxRepo.msgs[0]
		assert.Equal(t, event.TopicProductCreated, msg.Topic)

		var ev event.ProductCreatedEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		assert.Equal(t, product.ID.String(), ev.ProductID)
		assert.Equal(t, "WID-001", ev.Sku)
	})

	t.Run("Should reject a duplicate sku", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), service.CreateProductParams{
			Sku:  "WID-001",
			Name: "Another Widget",
		})
		assert.ErrorIs(t, err, apperr.ProductSkuConflictErr)
	})
}

func TestUpdateProduct(t *testing.T) {
	productRepo := newMemProductRepo()
	svc := service.NewProductService(fakeDB{}, productRepo, &memOutboxRepo{})

	product, err := svc.CreateProduct(context.Background(), service.CreateProductParams{
		Sku:       "WID-002",
		Name:      "Widget",
		UnitPrice: 10,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(context.Background(), product.ID, service.UpdateProductParams{
		Name:      "Widget v2",
		UnitPrice: 12,
		CostPrice: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, "Widget v2", updated.Name)
	assert.Equal(t, 12.0, updated.UnitPrice)
	assert.Equal(t, "WID-002", updated.Sku)
	assert.True(t, updated.UpdatedAt.After(product.UpdatedAt) || updated.UpdatedAt.Equal(product.UpdatedAt))
}
