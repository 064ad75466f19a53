package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/event"
	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/service"
)

func seedInventory(t *testing.T, repo *memInventoryRepo, productID uuid.UUID, quantities ...int) {
	t.Helper()

	base := time.Now().Add(-time.Hour)
	for i, quantity := range quantities {
		id, err := uuid.NewV7()
		require.NoError(t, err)

		repo.items = append(repo.items, model.InventoryItem{
			ID:            id,
			ProductID:     productID,
			Quantity:      quantity,
			Location:      "Main Warehouse",
			Status:        model.InventoryStatusAvailable,
			LastCountDate: base,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func newTransactionFixture() (service.TransactionService, *memTransactionRepo, *memInventoryRepo, *memOutboxRepo) {
	transactionRepo := &memTransactionRepo{}
	inventoryRepo := &memInventoryRepo{}
	outboxRepo := &memOutboxRepo{}
	svc := service.NewTransactionService(fakeDB{}, transactionRepo, inventoryRepo, outboxRepo)
	return svc, transactionRepo, inventoryRepo, outboxRepo
}

func saleParams(productID uuid.UUID, quantity int) service.CreateTransactionParams {
	return service.CreateTransactionParams{
		Type:   model.TransactionTypeSale,
		Status: model.TransactionStatusCompleted,
		Items: []service.CreateTransactionItemParams{
			{ProductID: productID, Quantity: quantity, UnitPrice: 9.99},
		},
	}
}

func TestCreateTransaction_SaleDrawsDownInCreationOrder(t *testing.T) {
	svc, _, inventoryRepo, _ := newTransactionFixture()
	productID := uuid.New()
	seedInventory(t, inventoryRepo, productID, 5, 4)

	result, err := svc.CreateTransaction(context.Background(), saleParams(productID, 6))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 3}, inventoryRepo.quantities(productID))
	require.Len(t, result.Allocations, 1)
	assert.Equal(t, 6, result.Allocations[0].Requested)
	assert.Equal(t, 6, result.Allocations[0].Fulfilled)
	assert.Equal(t, 0, result.Allocations[0].Shortfall)
}

func TestCreateTransaction_SaleDrainsFirstItemThenDrawsNext(t *testing.T) {
	svc, _, inventoryRepo, _ := newTransactionFixture()
	productID := uuid.New()
	seedInventory(t, inventoryRepo, productID, 3, 5)

	result, err := svc.CreateTransaction(context.Background(), saleParams(productID, 4))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 4}, inventoryRepo.quantities(productID))
	require.Len(t, result.Allocations, 1)
	assert.Equal(t, 4, result.Allocations[0].Fulfilled)
	assert.Equal(t, 0, result.Allocations[0].Shortfall)
}

func TestCreateTransaction_SaleStopsAtFirstSufficientItem(t *testing.T) {
	svc, _, inventoryRepo, _ := newTransactionFixture()
	productID := uuid.New()
	seedInventory(t, inventoryRepo, productID, 10, 4)

	_, err := svc.CreateTransaction(context.Background(), saleParams(productID, 3))
	require.NoError(t, err)

	assert.Equal(t, []int{7, 4}, inventoryRepo.quantities(productID))
}

func TestCreateTransaction_SaleShortfallClampsAtZero(t *testing.T) {
	svc, _, inventoryRepo, outboxRepo := newTransactionFixture()
	productID := uuid.New()
	seedInventory(t, inventoryRepo, productID, 2)

	result, err := svc.CreateTransaction(context.Background(), saleParams(productID, 5))
	require.NoError(t, err)

	assert.Equal(t, []int{0}, inventoryRepo.quantities(productID))
	require.Len(t, result.Allocations, 1)
	assert.Equal(t, 5, result.Allocations[0].Requested)
	assert.Equal(t, 2, result.Allocations[0].Fulfilled)
	assert.Equal(t, 3, result.Allocations[0].Shortfall)

	assert.Contains(t, outboxRepo.topics(), event.TopicInventoryShortfall)
}

func TestCreateTransaction_SaleWithoutStockFulfillsNothing(t *testing.T) {
	svc, _, inventoryRepo, _ := newTransactionFixture()
	productID := uuid.New()

	result, err := svc.CreateTransaction(context.Background(), saleParams(productID, 4))
	require.NoError(t, err)

	assert.Empty(t, inventoryRepo.quantities(productID))
	require.Len(t, result.Allocations, 1)
	assert.Equal(t, 0, result.Allocations[0].Fulfilled)
	assert.Equal(t, 4, result.Allocations[0].Shortfall)
}

func TestCreateTransaction_PurchaseCreditsFirstItemOnly(t *testing.T) {
	svc, _, inventoryRepo, _ := newTransactionFixture()
	productID := uuid.New()
	seedInventory(t, inventoryRepo, productID, 3, 7)

	_, err := svc.CreateTransaction(context.Background(), service.CreateTransactionParams{
		Type:   model.TransactionTypePurchase,
		Status: model.TransactionStatusCompleted,
		Items: []service.CreateTransactionItemParams{
			{ProductID: productID, Quantity: 5, UnitPrice: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{8, 7}, inventoryRepo.quantities(productID))
}

func TestCreateTransaction_PurchaseCreatesItemWhenNoneExists(t *testing.T) {
	svc, _, inventoryRepo, _ := newTransactionFixture()
	productID := uuid.New()

	_, err := svc.CreateTransaction(context.Background(), service.CreateTransactionParams{
		Type:   model.TransactionTypePurchase,
		Status: model.TransactionStatusCompleted,
		Items: []service.CreateTransactionItemParams{
			{ProductID: productID, Quantity: 12, UnitPrice: 2},
		},
	})
	require.NoError(t, err)

	require.Len(t, inventoryRepo.items, 1)
	created := inventoryRepo.items[0]
	assert.Equal(t, 12, created.Quantity)
	assert.Equal(t, "Main Warehouse", created.Location)
	assert.Equal(t, model.InventoryStatusAvailable, created.Status)
}

func TestCreateTransaction_ReturnCreatesReturnsItemWhenNoneExists(t *testing.T) {
	svc, _, inventoryRepo, _ := newTransactionFixture()
	productID := uuid.New()

	_, err := svc.CreateTransaction(context.Background(), service.CreateTransactionParams{
		Type:   model.TransactionTypeReturn,
		Status: model.TransactionStatusCompleted,
		Items: []service.CreateTransactionItemParams{
			{ProductID: productID, Quantity: 2, UnitPrice: 9.99},
		},
	})
	require.NoError(t, err)

	require.Len(t, inventoryRepo.items, 1)
	created := inventoryRepo.items[0]
	assert.Equal(t, 2, created.Quantity)
	assert.Equal(t, "Returns", created.Location)
	assert.Equal(t, model.InventoryStatusReturned, created.Status)
}

func TestCreateTransaction_AdjustmentOverwritesFirstItem(t *testing.T) {
	svc, _, inventoryRepo, _ := newTransactionFixture()
	productID := uuid.New()
	seedInventory(t, inventoryRepo, productID, 3, 7)

	before := inventoryRepo.items[0].LastCountDate

	_, err := svc.CreateTransaction(context.Background(), service.CreateTransactionParams{
		Type:   model.TransactionTypeAdjustment,
		Status: model.TransactionStatusCompleted,
		Items: []service.CreateTransactionItemParams{
			{ProductID: productID, Quantity: 12},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{12, 7}, inventoryRepo.quantities(productID))
	assert.True(t, inventoryRepo.items[0].LastCountDate.After(before))
}

func TestCreateTransaction_RejectsUnknownTypeBeforePersisting(t *testing.T) {
	svc, transactionRepo, _, outboxRepo := newTransactionFixture()

	_, err := svc.CreateTransaction(context.Background(), service.CreateTransactionParams{
		Type:   model.TransactionType("refund"),
		Status: model.TransactionStatusCompleted,
		Items: []service.CreateTransactionItemParams{
			{ProductID: uuid.New(), Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.InvalidTransactionTypeErr)

	assert.Empty(t, transactionRepo.transactions)
	assert.Empty(t, outboxRepo.msgs)
}

func TestCreateTransaction_RejectsUnknownStatus(t *testing.T) {
	svc, transactionRepo, _, _ := newTransactionFixture()

	_, err := svc.CreateTransaction(context.Background(), service.CreateTransactionParams{
		Type:   model.TransactionTypeSale,
		Status: model.TransactionStatus("archived"),
		Items: []service.CreateTransactionItemParams{
			{ProductID: uuid.New(), Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.InvalidTransactionStatusErr)
	assert.Empty(t, transactionRepo.transactions)
}

func TestCreateTransaction_DuplicateReference(t *testing.T) {
	svc, _, inventoryRepo, _ := newTransactionFixture()
	productID := uuid.New()
	seedInventory(t, inventoryRepo, productID, 10)

	params := saleParams(productID, 1)
	params.ReferenceNumber = "TX-DEADBEEF"

	_, err := svc.CreateTransaction(context.Background(), params)
	require.NoError(t, err)

	_, err = svc.CreateTransaction(context.Background(), params)
	assert.ErrorIs(t, err, apperr.ReferenceConflictErr)
}

func TestCreateTransaction_InventoryFailureAbortsTransaction(t *testing.T) {
	svc, _, inventoryRepo, _ := newTransactionFixture()
	productID := uuid.New()
	seedInventory(t, inventoryRepo, productID, 2, 2)

	inventoryRepo.setQuantityErrAfter = 2
	inventoryRepo.setQuantityErr = errors.New("connection reset")

	_, err := svc.CreateTransaction(context.Background(), saleParams(productID, 4))
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection reset")
}

func TestCreateTransaction_ComputesItemTotals(t *testing.T) {
	svc, transactionRepo, inventoryRepo, _ := newTransactionFixture()
	productID := uuid.New()
	seedInventory(t, inventoryRepo, productID, 10)

	result, err := svc.CreateTransaction(context.Background(), service.CreateTransactionParams{
		Type:   model.TransactionTypeSale,
		Status: model.TransactionStatusCompleted,
		Items: []service.CreateTransactionItemParams{
			{ProductID: productID, Quantity: 3, UnitPrice: 2.5},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Transaction.Items, 1)
	assert.Equal(t, 7.5, result.Transaction.Items[0].TotalPrice)
	require.Len(t, transactionRepo.items, 1)
	assert.Equal(t, result.Transaction.ID, transactionRepo.items[0].TransactionID)
}

func TestCreateTransaction_EnqueuesRecordedEvent(t *testing.T) {
	svc, _, inventoryRepo, outboxRepo := newTransactionFixture()
	productID := uuid.New()
	seedInventory(t, inventoryRepo, productID, 10)

	_, err := svc.CreateTransaction(context.Background(), saleParams(productID, 1))
	require.NoError(t, err)

	assert.Contains(t, outboxRepo.topics(), event.TopicTransactionRecorded)
	assert.NotContains(t, outboxRepo.topics(), event.TopicInventoryShortfall)
}

func TestNewReferenceNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^TX-[0-9A-F]{8}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		reference := service.NewReferenceNumber()
		assert.Regexp(t, pattern, reference)

		_, dup := seen[reference]
		assert.False(t, dup, "duplicate reference %s", reference)
		seen[reference] = struct{}{}
	}
}

func TestGetTransactionByReference(t *testing.T) {
	svc, _, inventoryRepo, _ := newTransactionFixture()
	productID := uuid.New()
	seedInventory(t, inventoryRepo, productID, 10)

	params := saleParams(productID, 1)
	params.ReferenceNumber = "TX-0A1B2C3D"
	result, err := svc.CreateTransaction(context.Background(), params)
	require.NoError(t, err)

	t.Run("Should return the transaction for its reference", func(t *testing.T) {
		transaction, err := svc.GetTransactionByReference(context.Background(), "TX-0A1B2C3D")
		require.NoError(t, err)
		assert.Equal(t, result.Transaction.ID, transaction.ID)
	})

	t.Run("Should fail for an unknown reference", func(t *testing.T) {
		_, err := svc.GetTransactionByReference(context.Background(), "TX-FFFFFFFF")
		assert.ErrorIs(t, err, apperr.TransactionNotFoundErr)
	})
}

func TestUpdateTransactionStatus(t *testing.T) {
	svc, _, inventoryRepo, _ := newTransactionFixture()
	productID := uuid.New()
	seedInventory(t, inventoryRepo, productID, 10)

	result, err := svc.CreateTransaction(context.Background(), saleParams(productID, 1))
	require.NoError(t, err)

	t.Run("Should update to a known status", func(t *testing.T) {
		updated, err := svc.UpdateTransactionStatus(context.Background(), result.Transaction.ID, model.TransactionStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, model.TransactionStatusCancelled, updated.Status)
	})

	t.Run("Should reject an unknown status", func(t *testing.T) {
		_, err := svc.UpdateTransactionStatus(context.Background(), result.Transaction.ID, model.TransactionStatus("voided"))
		assert.ErrorIs(t, err, apperr.InvalidTransactionStatusErr)
	})

	t.Run("Should fail for a missing transaction", func(t *testing.T) {
		_, err := svc.UpdateTransactionStatus(context.Background(), uuid.New(), model.TransactionStatusCompleted)
		assert.ErrorIs(t, err, apperr.TransactionNotFoundErr)
	})
}
