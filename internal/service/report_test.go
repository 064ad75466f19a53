package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polybooks/polybooks/internal/repository"
	"github.com/polybooks/polybooks/internal/service"
	"github.com/polybooks/polybooks/internal/storage/db"
)

type memReportRepo struct {
	stockRows []repository.InventoryStockRow
	salesRows []repository.SalesRow

	lastStart time.Time
	lastEnd   time.Time
}

func (m *memReportRepo) WithDB(db.DB) repository.ReportRepository { return m }

func (m *memReportRepo) InventoryStock(context.Context) ([]repository.InventoryStockRow, error) {
	return m.stockRows, nil
}

func (m *memReportRepo) SalesBetween(_ context.Context, start, end time.Time) ([]repository.SalesRow, error) {
	m.lastStart = start
	m.lastEnd = end
	return m.salesRows, nil
}

func TestInventoryReport(t *testing.T) {
	reportRepo := &memReportRepo{
		stockRows: []repository.InventoryStockRow{
			{ProductID: uuid.New(), Sku: "A", Name: "Healthy", CostPrice: 2, Quantity: 50},
			{ProductID: uuid.New(), Sku: "B", Name: "Low", CostPrice: 3, Quantity: 4},
			{ProductID: uuid.New(), Sku: "C", Name: "Empty", CostPrice: 1, Quantity: 0},
		},
	}
	svc := service.NewReportService(reportRepo)

	report, err := svc.InventoryReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.TotalProducts)
	assert.Equal(t, 112.0, report.Summary.TotalInventoryValue)
	assert.Equal(t, 1, report.Summary.LowStockItems)
	assert.Equal(t, 1, report.Summary.ZeroStockItems)

	require.Len(t, report.Details, 3)
	assert.Equal(t, 100.0, report.Details[0].TotalValue)
}

func TestSalesReport(t *testing.T) {
	widgetID := uuid.New()
	gadgetID := uuid.New()
	reportRepo := &memReportRepo{
		salesRows: []repository.SalesRow{
			{ReferenceNumber: "TX-00000001", ProductID: widgetID, ProductName: "Widget", Quantity: 2, UnitPrice: 10, TotalPrice: 20},
			{ReferenceNumber: "TX-00000001", ProductID: gadgetID, ProductName: "Gadget", Quantity: 1, UnitPrice: 50, TotalPrice: 50},
			{ReferenceNumber: "TX-00000002", ProductID: widgetID, ProductName: "Widget", Quantity: 2, UnitPrice: 10, TotalPrice: 20},
		},
	}
	svc := service.NewReportService(reportRepo)

	report, err := svc.SalesReport(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 90.0, report.Summary.TotalSales)
	assert.Equal(t, 5, report.Summary.TotalItemsSold)
	assert.Equal(t, 2, report.Summary.TransactionCount)

	require.Len(t, report.Summary.TopProducts, 2)
	assert.Equal(t, "Gadget", report.Summary.TopProducts[0].ProductName)
	assert.Equal(t, 50.0, report.Summary.TopProducts[0].TotalPrice)

	t.Run("Should default the range to the last 30 days", func(t *testing.T) {
		assert.WithinDuration(t, time.Now(), reportRepo.lastEnd, time.Minute)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, -30), reportRepo.lastStart, time.Minute)
	})
}
