package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/storage/db"
)

const pgUniqueViolation = "23505"

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	Create(ctx context.Context, product model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (model.Product, error)
	GetBySku(ctx context.Context, sku string) (model.Product, error)
	List(ctx context.Context, offset, limit int) ([]model.Product, error)
	Update(ctx context.Context, product model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, sku, name, description, category, unit_price, cost_price, created_at, updated_at`

func (r productRepository) Create(ctx context.Context, product model.Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, sku, name, description, category, unit_price, cost_price, created_at, updated_at)
		VALUES (@id, @sku, @name, @description, @category, @unit_price, @cost_price, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":          product.ID,
		"sku":         product.Sku,
		"name":        product.Name,
		"description": product.Description,
		"category":    product.Category,
		"unit_price":  product.UnitPrice,
		"cost_price":  product.CostPrice,
		"created_at":  product.CreatedAt,
		"updated_at":  product.UpdatedAt,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.ProductSkuConflictErr.WrapParent(err)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r productRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})

	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, apperr.ProductNotFoundErr
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("select product by id: %w", err)
	}

	return product, nil
}

func (r productRepository) GetBySku(ctx context.Context, sku string) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE sku = @sku
	`, pgx.NamedArgs{"sku": sku})

	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, apperr.ProductNotFoundErr
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("select product by sku: %w", err)
	}

	return product, nil
}

func (r productRepository) List(ctx context.Context, offset, limit int) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at, id
		OFFSET @offset
		LIMIT @limit
	`, pgx.NamedArgs{"offset": offset, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (r productRepository) Update(ctx context.Context, product model.Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name        = @name,
		    description = @description,
		    category    = @category,
		    unit_price  = @unit_price,
		    cost_price  = @cost_price,
		    updated_at  = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":          product.ID,
		"name":        product.Name,
		"description": product.Description,
		"category":    product.Category,
		"unit_price":  product.UnitPrice,
		"cost_price":  product.CostPrice,
		"updated_at":  product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ProductNotFoundErr
	}

	return nil
}

func (r productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM products
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ProductNotFoundErr
	}

	return nil
}

func (r productRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM products WHERE id = @id)
	`, pgx.NamedArgs{"id": id}).Scan(&exists); err != nil {
		return false, fmt.Errorf("select product exists: %w", err)
	}

	return exists, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Sku,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.UnitPrice,
		&p.CostPrice,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
