package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/repository"
)

// DefaultRecountThresholdDays is how stale a count may get before an item is
// flagged for a physical recount.
const DefaultRecountThresholdDays = 30

type AddInventoryParams struct {
	ProductID uuid.UUID
	Quantity  int
	Location  string
	Status    model.InventoryStatus
}

type InventoryService interface {
	AddInventory(ctx context.Context, params AddInventoryParams) (model.InventoryItem, error)
	SetQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (model.InventoryItem, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.InventoryItem, error)
	// DueForRecount returns items not counted for more than thresholdDays
	// days. A non-positive threshold falls back to the default.
	DueForRecount(ctx context.Context, thresholdDays int) ([]model.InventoryItem, error)
}

type inventoryService struct {
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
}

func NewInventoryService(
	productRepo repository.ProductRepository,
	inventoryRepo repository.InventoryRepository,
) InventoryService {
	return &inventoryService{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
	}
}

func (s *inventoryService) AddInventory(ctx context.Context, params AddInventoryParams) (model.InventoryItem, error) {
	exists, err := s.productRepo.Exists(ctx, params.ProductID)
	if err != nil {
		return model.InventoryItem{}, fmt.Errorf("product repository exists: %w", err)
	}
	if !exists {
		return model.InventoryItem{}, apperr.ProductNotFoundErr
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.InventoryItem{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	item := model.InventoryItem{
		ID:            id,
		ProductID:     params.ProductID,
		Quantity:      params.Quantity,
		Location:      params.Location,
		Status:        params.Status,
		LastCountDate: now,
		CreatedAt:     now,
	}

	if err := s.inventoryRepo.Create(ctx, item); err != nil {
		return model.InventoryItem{}, fmt.Errorf("inventory repository create: %w", err)
	}

	return item, nil
}

func (s *inventoryService) SetQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (model.InventoryItem, error) {
	item, err := s.inventoryRepo.SetQuantity(ctx, itemID, quantity)
	if err != nil {
		return model.InventoryItem{}, fmt.Errorf("inventory repository set quantity: %w", err)
	}

	return item, nil
}

func (s *inventoryService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.InventoryItem, error) {
	items, err := s.inventoryRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("inventory repository list by product: %w", err)
	}

	return items, nil
}

func (s *inventoryService) DueForRecount(ctx context.Context, thresholdDays int) ([]model.InventoryItem, error) {
	if thresholdDays <= 0 {
		thresholdDays = DefaultRecountThresholdDays
	}

	olderThan := time.Now().AddDate(0, 0, -thresholdDays)
	items, err := s.inventoryRepo.ListDueForRecount(ctx, olderThan)
	if err != nil {
		return nil, fmt.Errorf("inventory repository list due for recount: %w", err)
	}

	return items, nil
}
