package recount

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/polybooks/polybooks/internal/config"
	"github.com/polybooks/polybooks/internal/service"
)

// Service periodically scans for inventory items whose last physical count
// is older than the configured threshold and flags them in the logs and
// metrics. It never mutates stock.
type Service struct {
	cfg          config.Recount
	logger       *slog.Logger
	inventorySvc service.InventoryService

	dueItems prometheus.Gauge

	stopChan chan struct{}
}

func NewService(
	cfg config.Recount,
	logger *slog.Logger,
	inventorySvc service.InventoryService,
) *Service {
	return &Service{
		cfg:          cfg,
		logger:       logger.With(slog.String("service", "recount")),
		inventorySvc: inventorySvc,
		dueItems: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_recount_due_items",
			Help: "Number of inventory items overdue for a physical recount",
		}),
		stopChan: make(chan struct{}),
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.run(ctx)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
		}
	}
}

func (s *Service) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-time.After(s.cfg.Interval):
			items, err := s.inventorySvc.DueForRecount(ctx, s.cfg.ThresholdDays)
			if err != nil {
				s.logger.ErrorContext(ctx, "error listing items due for recount", slog.Any("error", err))
				continue
			}

			s.dueItems.Set(float64(len(items)))
			if len(items) == 0 {
				continue
			}

			s.logger.WarnContext(ctx, "inventory items overdue for recount",
				slog.Int("count", len(items)),
				slog.Int("threshold_days", s.cfg.ThresholdDays),
			)
			for _, item := range items {
				s.logger.InfoContext(ctx, "item due for recount",
					slog.String("item_id", item.ID.String()),
					slog.String("product_id", item.ProductID.String()),
					slog.String("location", item.Location),
					slog.Time("last_count_date", item.LastCountDate),
				)
			}
		}
	}
}
