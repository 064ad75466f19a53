package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/storage/db"
)

const pgForeignKeyViolation = "23503"

// InventoryRepository is the inventory ledger. All stock mutations go through
// it; no other component writes inventory rows directly.
type InventoryRepository interface {
	WithDB(db db.DB) InventoryRepository
	Create(ctx context.Context, item model.InventoryItem) error
	GetByID(ctx context.Context, id uuid.UUID) (model.InventoryItem, error)
	// ListByProduct returns all items for a product in creation order
	// (first inserted, first returned).
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.InventoryItem, error)
	// ListByProductForUpdate is ListByProduct with row locks held until the
	// surrounding transaction ends. It must only be called inside WithTx;
	// the locks serialize concurrent stock mutation per product.
	ListByProductForUpdate(ctx context.Context, productID uuid.UUID) ([]model.InventoryItem, error)
	// SetQuantity overwrites an item's quantity and stamps last_count_date.
	SetQuantity(ctx context.Context, id uuid.UUID, quantity int) (model.InventoryItem, error)
	// ListDueForRecount returns items whose last_count_date is older than the
	// given cutoff.
	ListDueForRecount(ctx context.Context, olderThan time.Time) ([]model.InventoryItem, error)
}

type inventoryRepository struct {
	db db.DB
}

func NewInventoryRepository(db db.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r inventoryRepository) WithDB(db db.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

const inventoryColumns = `id, product_id, quantity, location, status, last_count_date, created_at`

func (r inventoryRepository) Create(ctx context.Context, item model.InventoryItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO inventory_items (id, product_id, quantity, location, status, last_count_date, created_at)
		VALUES (@id, @product_id, @quantity, @location, @status, @last_count_date, @created_at)
	`, pgx.NamedArgs{
		"id":              item.ID,
		"product_id":      item.ProductID,
		"quantity":        item.Quantity,
		"location":        item.Location,
		"status":          string(item.Status),
		"last_count_date": item.LastCountDate,
		"created_at":      item.CreatedAt,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return apperr.ProductNotFoundErr.WrapParent(err)
		}
		return fmt.Errorf("insert inventory item: %w", err)
	}

	return nil
}

func (r inventoryRepository) GetByID(ctx context.Context, id uuid.UUID) (model.InventoryItem, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})

	item, err := scanInventoryItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.InventoryItem{}, apperr.InventoryItemNotFoundErr
	}
	if err != nil {
		return model.InventoryItem{}, fmt.Errorf("select inventory item by id: %w", err)
	}

	return item, nil
}

func (r inventoryRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.InventoryItem, error) {
	return r.listByProduct(ctx, productID, false)
}

func (r inventoryRepository) ListByProductForUpdate(ctx context.Context, productID uuid.UUID) ([]model.InventoryItem, error) {
	return r.listByProduct(ctx, productID, true)
}

func (r inventoryRepository) listByProduct(ctx context.Context, productID uuid.UUID, forUpdate bool) ([]model.InventoryItem, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory_items
		WHERE product_id = @product_id
		ORDER BY created_at, id
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rows, err := r.db.Query(ctx, query, pgx.NamedArgs{"product_id": productID})
	if err != nil {
		return nil, fmt.Errorf("select inventory items by product: %w", err)
	}
	defer rows.Close()

	return collectInventoryItems(rows)
}

func (r inventoryRepository) SetQuantity(ctx context.Context, id uuid.UUID, quantity int) (model.InventoryItem, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE inventory_items
		SET quantity        = @quantity,
		    last_count_date = NOW()
		WHERE id = @id
		RETURNING `+inventoryColumns+`
	`, pgx.NamedArgs{"id": id, "quantity": quantity})

	item, err := scanInventoryItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.InventoryItem{}, apperr.InventoryItemNotFoundErr
	}
	if err != nil {
		return model.InventoryItem{}, fmt.Errorf("update inventory item quantity: %w", err)
	}

	return item, nil
}

func (r inventoryRepository) ListDueForRecount(ctx context.Context, olderThan time.Time) ([]model.InventoryItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE last_count_date < @older_than
		ORDER BY last_count_date
	`, pgx.NamedArgs{"older_than": olderThan})
	if err != nil {
		return nil, fmt.Errorf("select inventory items due for recount: %w", err)
	}
	defer rows.Close()

	return collectInventoryItems(rows)
}

func collectInventoryItems(rows pgx.Rows) ([]model.InventoryItem, error) {
	items := make([]model.InventoryItem, 0)
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory items: %w", err)
	}

	return items, nil
}

func scanInventoryItem(row pgx.Row) (model.InventoryItem, error) {
	var item model.InventoryItem
	err := row.Scan(
		&item.ID,
		&item.ProductID,
		&item.Quantity,
		&item.Location,
		&item.Status,
		&item.LastCountDate,
		&item.CreatedAt,
	)
	return item, err
}
