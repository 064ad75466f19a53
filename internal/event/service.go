package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/polybooks/polybooks/internal/storage/mq"
)

// Service consumes the domain event stream produced through the outbox.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:     logger,
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := registerJSONHandler(s.mqConsumer, TopicProductCreated, s.handleProductCreated); err != nil {
		return nil, err
	}
	if err := registerJSONHandler(s.mqConsumer, TopicTransactionRecorded, s.handleTransactionRecorded); err != nil {
		return nil, err
	}
	if err := registerJSONHandler(s.mqConsumer, TopicInventoryShortfall, s.handleInventoryShortfall); err != nil {
		return nil, err
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func registerJSONHandler[T any](consumer mq.Consumer, topic string, handle func(ctx context.Context, ev T) error) error {
	if err := consumer.RegisterHandler(
		topic,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev T
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal %s event: %w", topic, err)
			}

			if err := handle(ctx, ev); err != nil {
				return fmt.Errorf("handle %s event: %w", topic, err)
			}

			return nil
		},
	); err != nil {
		return fmt.Errorf("register %s event handler: %w", topic, err)
	}

	return nil
}

func (s *Service) handleProductCreated(ctx context.Context, ev ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", ev.ProductID),
		slog.String("sku", ev.Sku))
	return nil
}

func (s *Service) handleTransactionRecorded(ctx context.Context, ev TransactionRecordedEvent) error {
	s.logger.InfoContext(ctx, "transaction recorded",
		slog.String("transaction_id", ev.TransactionID),
		slog.String("reference_number", ev.ReferenceNumber),
		slog.String("transaction_type", ev.Type),
		slog.Int("item_count", len(ev.Items)))
	return nil
}

func (s *Service) handleInventoryShortfall(ctx context.Context, ev InventoryShortfallEvent) error {
	s.logger.WarnContext(ctx, "sale fulfilled short of requested quantity",
		slog.String("transaction_id", ev.TransactionID),
		slog.String("reference_number", ev.ReferenceNumber),
		slog.String("product_id", ev.ProductID),
		slog.Int("requested", ev.Requested),
		slog.Int("shortfall", ev.Shortfall))
	return nil
}
