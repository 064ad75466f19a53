package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/polybooks/polybooks/internal/repository"
)

// lowStockThreshold is the quantity below which a product counts as low
// stock in the inventory report.
const lowStockThreshold = 10

type InventoryReportLine struct {
	ProductID  uuid.UUID `json:"product_id"`
	Sku        string    `json:"sku"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Quantity   int       `json:"quantity"`
	UnitCost   float64   `json:"unit_cost"`
	TotalValue float64   `json:"total_value"`
}

type InventoryReportSummary struct {
	ReportDate          time.Time `json:"report_date"`
	TotalProducts       int       `json:"total_products"`
	TotalInventoryValue float64   `json:"total_inventory_value"`
	LowStockItems       int       `json:"low_stock_items"`
	ZeroStockItems      int       `json:"zero_stock_items"`
}

type InventoryReport struct {
	Summary InventoryReportSummary `json:"summary"`
	Details []InventoryReportLine  `json:"details"`
}

type SalesReportLine struct {
	Date        time.Time `json:"date"`
	Reference   string    `json:"reference"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalPrice  float64   `json:"total_price"`
}

type TopProduct struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
}

type SalesReportSummary struct {
	StartDate        time.Time    `json:"start_date"`
	EndDate          time.Time    `json:"end_date"`
	TotalSales       float64      `json:"total_sales"`
	TotalItemsSold   int          `json:"total_items_sold"`
	TransactionCount int          `json:"transaction_count"`
	TopProducts      []TopProduct `json:"top_products"`
}

type SalesReport struct {
	Summary SalesReportSummary `json:"summary"`
	Details []SalesReportLine  `json:"details"`
}

type ReportService interface {
	InventoryReport(ctx context.Context) (InventoryReport, error)
	// SalesReport covers [start, end]; zero values default to the last 30
	// days ending now.
	SalesReport(ctx context.Context, start, end time.Time) (SalesReport, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
}

func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{reportRepo: reportRepo}
}

func (s *reportService) InventoryReport(ctx context.Context) (InventoryReport, error) {
	stockRows, err := s.reportRepo.InventoryStock(ctx)
	if err != nil {
		return InventoryReport{}, fmt.Errorf("report repository inventory stock: %w", err)
	}

	details := make([]InventoryReportLine, 0, len(stockRows))
	summary := InventoryReportSummary{
		ReportDate:    time.Now(),
		TotalProducts: len(stockRows),
	}
	for _, row := range stockRows {
		value := float64(row.Quantity) * row.CostPrice
		details = append(details, InventoryReportLine{
			ProductID:  row.ProductID,
			Sku:        row.Sku,
			Name:       row.Name,
			Category:   row.Category,
			Quantity:   row.Quantity,
			UnitCost:   row.CostPrice,
			TotalValue: value,
		})

		summary.TotalInventoryValue += value
		if row.Quantity == 0 {
			summary.ZeroStockItems++
		} else if row.Quantity < lowStockThreshold {
			summary.LowStockItems++
		}
	}

	return InventoryReport{Summary: summary, Details: details}, nil
}

func (s *reportService) SalesReport(ctx context.Context, start, end time.Time) (SalesReport, error) {
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -30)
	}

	salesRows, err := s.reportRepo.SalesBetween(ctx, start, end)
	if err != nil {
		return SalesReport{}, fmt.Errorf("report repository sales between: %w", err)
	}

	details := make([]SalesReportLine, 0, len(salesRows))
	byProduct := make(map[string]*TopProduct)
	transactions := make(map[string]struct{})
	summary := SalesReportSummary{
		StartDate: start,
		EndDate:   end,
	}
	for _, row := range salesRows {
		details = append(details, SalesReportLine{
			Date:        row.Date,
			Reference:   row.ReferenceNumber,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			TotalPrice:  row.TotalPrice,
		})

		summary.TotalSales += row.TotalPrice
		summary.TotalItemsSold += row.Quantity
		transactions[row.ReferenceNumber] = struct{}{}

		top, ok := byProduct[row.ProductName]
		if !ok {
			top = &TopProduct{ProductName: row.ProductName}
			byProduct[row.ProductName] = top
		}
		top.Quantity += row.Quantity
		top.TotalPrice += row.TotalPrice
	}
	summary.TransactionCount = len(transactions)

	topProducts := make([]TopProduct, 0, len(byProduct))
	for _, top := range byProduct {
		topProducts = append(topProducts, *top)
	}
	sort.Slice(topProducts, func(i, j int) bool {
		return topProducts[i].TotalPrice > topProducts[j].TotalPrice
	})
	if len(topProducts) > 5 {
		topProducts = topProducts[:5]
	}
	summary.TopProducts = topProducts

	return SalesReport{Summary: summary, Details: details}, nil
}
