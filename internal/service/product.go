package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/polybooks/polybooks/internal/event"
	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/repository"
	"github.com/polybooks/polybooks/internal/storage/db"
	"github.com/polybooks/polybooks/pkg/outbox"
	"github.com/polybooks/polybooks/pkg/ptr"
)

type CreateProductParams struct {
	Sku         string
	Name        string
	Description string
	Category    string
	UnitPrice   float64
	CostPrice   float64
}

type UpdateProductParams struct {
	Name        string
	Description string
	Category    string
	UnitPrice   float64
	CostPrice   float64
}

type ProductService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	GetProductBySku(ctx context.Context, sku string) (model.Product, error)
	ListProducts(ctx context.Context, offset, limit int) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	db            db.DB
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewProductService(
	db db.DB,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		db:            db,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	product := model.Product{
		ID:          id,
		Sku:         params.Sku,
		Name:        params.Name,
		Description: params.Description,
		Category:    params.Category,
		UnitPrice:   params.UnitPrice,
		CostPrice:   params.CostPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ev := event.ProductCreatedEvent{
		ProductID: product.ID.String(),
		Sku:       product.Sku,
		Name:      product.Name,
		Category:  product.Category,
		UnitPrice: product.UnitPrice,
		CostPrice: product.CostPrice,
	}

	evBytes, err := json.Marshal(ev)
	if err != nil {
		return model.Product{}, fmt.Errorf("marshal event: %w", err)
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			Create(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        event.TopicProductCreated,
				Headers:      outbox.BuildHeaders(ctx),
				Payload:      evBytes,
				PartitionKey: ptr.New(product.ID.String()),
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get by id: %w", err)
	}

	return product, nil
}

func (s *productService) GetProductBySku(ctx context.Context, sku string) (model.Product, error) {
	product, err := s.productRepo.GetBySku(ctx, sku)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get by sku: %w", err)
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, offset, limit int) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("product repository list: %w", err)
	}

	return products, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get by id: %w", err)
	}

	product.Name = params.Name
	product.Description = params.Description
	product.Category = params.Category
	product.UnitPrice = params.UnitPrice
	product.CostPrice = params.CostPrice
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return model.Product{}, fmt.Errorf("product repository update: %w", err)
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("product repository delete: %w", err)
	}

	return nil
}
