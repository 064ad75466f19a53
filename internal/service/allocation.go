package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/repository"
)

const (
	defaultLocation = "Main Warehouse"
	returnsLocation = "Returns"
)

// AllocationResult reports what a stock mutation actually did. Shortfall is
// the portion of a sale that could not be fulfilled; the drawdown clamps at
// zero instead of failing, so the caller must surface it.
type AllocationResult struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Fulfilled int       `json:"fulfilled"`
	Shortfall int       `json:"shortfall"`
}

// stockAllocator maps a single line item to concrete inventory mutations.
// All methods expect a repository bound to the surrounding transaction, with
// rows locked via ListByProductForUpdate so concurrent mutations of the same
// product serialize.
type stockAllocator struct {
	inventoryRepo repository.InventoryRepository
}

// drawDown consumes stock for a sale. Items are walked in creation order:
// the first item that can cover the remaining quantity absorbs it and the
// walk stops; items with less than the remaining quantity are drained to
// zero. Quantities never go negative; an exhausted list leaves the excess as
// Shortfall. Each touched item is persisted as it is modified.
func (a stockAllocator) drawDown(ctx context.Context, productID uuid.UUID, quantity int) (AllocationResult, error) {
	items, err := a.inventoryRepo.ListByProductForUpdate(ctx, productID)
	if err != nil {
		return AllocationResult{}, fmt.Errorf("list inventory items: %w", err)
	}

	remaining := quantity
	for _, item := range items {
		if item.Quantity >= remaining {
			if _, err := a.inventoryRepo.SetQuantity(ctx, item.ID, item.Quantity-remaining); err != nil {
				return AllocationResult{}, fmt.Errorf("set inventory quantity: %w", err)
			}
			remaining = 0
			break
		}

		remaining -= item.Quantity
		if _, err := a.inventoryRepo.SetQuantity(ctx, item.ID, 0); err != nil {
			return AllocationResult{}, fmt.Errorf("set inventory quantity: %w", err)
		}
	}

	return AllocationResult{
		ProductID: productID,
		Requested: quantity,
		Fulfilled: quantity - remaining,
		Shortfall: remaining,
	}, nil
}

// credit adds stock for a purchase or return. Only the first item in
// creation order is credited; if the product has no items yet, a new one is
// created at the given location and status.
func (a stockAllocator) credit(ctx context.Context, productID uuid.UUID, quantity int, location string, status model.InventoryStatus) (AllocationResult, error) {
	items, err := a.inventoryRepo.ListByProductForUpdate(ctx, productID)
	if err != nil {
		return AllocationResult{}, fmt.Errorf("list inventory items: %w", err)
	}

	if len(items) > 0 {
		first := items[0]
		if _, err := a.inventoryRepo.SetQuantity(ctx, first.ID, first.Quantity+quantity); err != nil {
			return AllocationResult{}, fmt.Errorf("set inventory quantity: %w", err)
		}
	} else if err := a.createItem(ctx, productID, quantity, location, status); err != nil {
		return AllocationResult{}, err
	}

	return AllocationResult{
		ProductID: productID,
		Requested: quantity,
		Fulfilled: quantity,
	}, nil
}

// overwrite sets the first item's quantity to exactly the given value for an
// adjustment. Not additive; last_count_date is refreshed by SetQuantity.
func (a stockAllocator) overwrite(ctx context.Context, productID uuid.UUID, quantity int) (AllocationResult, error) {
	items, err := a.inventoryRepo.ListByProductForUpdate(ctx, productID)
	if err != nil {
		return AllocationResult{}, fmt.Errorf("list inventory items: %w", err)
	}

	if len(items) > 0 {
		if _, err := a.inventoryRepo.SetQuantity(ctx, items[0].ID, quantity); err != nil {
			return AllocationResult{}, fmt.Errorf("set inventory quantity: %w", err)
		}
	} else if err := a.createItem(ctx, productID, quantity, defaultLocation, model.InventoryStatusAvailable); err != nil {
		return AllocationResult{}, err
	}

	return AllocationResult{
		ProductID: productID,
		Requested: quantity,
		Fulfilled: quantity,
	}, nil
}

func (a stockAllocator) createItem(ctx context.Context, productID uuid.UUID, quantity int, location string, status model.InventoryStatus) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	if err := a.inventoryRepo.Create(ctx, model.InventoryItem{
		ID:            id,
		ProductID:     productID,
		Quantity:      quantity,
		Location:      location,
		Status:        status,
		LastCountDate: now,
		CreatedAt:     now,
	}); err != nil {
		return fmt.Errorf("create inventory item: %w", err)
	}

	return nil
}
