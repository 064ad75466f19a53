package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/polybooks/polybooks/internal/storage/db"
)

// InventoryStockRow is one product's aggregate stock position across all
// inventory locations.
type InventoryStockRow struct {
	ProductID uuid.UUID
	Sku       string
	Name      string
	Category  string
	CostPrice float64
	Quantity  int
}

// SalesRow is one sold line item joined with its transaction header.
type SalesRow struct {
	Date            time.Time
	ReferenceNumber string
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int
	UnitPrice       float64
	TotalPrice      float64
}

type ReportRepository interface {
	WithDB(db db.DB) ReportRepository
	InventoryStock(ctx context.Context) ([]InventoryStockRow, error)
	SalesBetween(ctx context.Context, start, end time.Time) ([]SalesRow, error)
}

type reportRepository struct {
	db db.DB
}

func NewReportRepository(db db.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r reportRepository) WithDB(db db.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r reportRepository) InventoryStock(ctx context.Context) ([]InventoryStockRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id,
			p.sku,
			p.name,
			p.category,
			p.cost_price,
			COALESCE(SUM(i.quantity), 0)::int AS quantity
		FROM products p
		LEFT JOIN inventory_items i ON i.product_id = p.id
		GROUP BY p.id, p.sku, p.name, p.category, p.cost_price
		ORDER BY p.sku
	`)
	if err != nil {
		return nil, fmt.Errorf("select inventory stock: %w", err)
	}
	defer rows.Close()

	results := make([]InventoryStockRow, 0)
	for rows.Next() {
		var row InventoryStockRow
		if err := rows.Scan(
			&row.ProductID,
			&row.Sku,
			&row.Name,
			&row.Category,
			&row.CostPrice,
			&row.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan inventory stock row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory stock rows: %w", err)
	}

	return results, nil
}

func (r reportRepository) SalesBetween(ctx context.Context, start, end time.Time) ([]SalesRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.transaction_date,
			t.reference_number,
			ti.product_id,
			p.name,
			ti.quantity,
			ti.unit_price,
			ti.total_price
		FROM transactions t
		JOIN transaction_items ti ON ti.transaction_id = t.id
		JOIN products p ON p.id = ti.product_id
		WHERE t.transaction_type = 'sale'
			AND t.transaction_date >= @start
			AND t.transaction_date <= @end
		ORDER BY t.transaction_date
	`, pgx.NamedArgs{"start": start, "end": end})
	if err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}
	defer rows.Close()

	results := make([]SalesRow, 0)
	for rows.Next() {
		var row SalesRow
		if err := rows.Scan(
			&row.Date,
			&row.ReferenceNumber,
			&row.ProductID,
			&row.ProductName,
			&row.Quantity,
			&row.UnitPrice,
			&row.TotalPrice,
		); err != nil {
			return nil, fmt.Errorf("scan sales row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales rows: %w", err)
	}

	return results, nil
}
