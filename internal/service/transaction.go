package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/event"
	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/repository"
	"github.com/polybooks/polybooks/internal/storage/db"
	"github.com/polybooks/polybooks/pkg/outbox"
	"github.com/polybooks/polybooks/pkg/ptr"
)

type CreateTransactionItemParams struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice float64
}

type CreateTransactionParams struct {
	Type            model.TransactionType
	ReferenceNumber string
	CustomerID      *uuid.UUID
	VendorID        *uuid.UUID
	TotalAmount     float64
	Status          model.TransactionStatus
	Notes           string
	Items           []CreateTransactionItemParams
}

// CreateTransactionResult carries the committed transaction along with the
// inventory effect of each line item, in item order.
type CreateTransactionResult struct {
	Transaction model.Transaction
	Allocations []AllocationResult
}

type TransactionService interface {
	CreateTransaction(ctx context.Context, params CreateTransactionParams) (CreateTransactionResult, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (model.Transaction, error)
	GetTransactionByReference(ctx context.Context, reference string) (model.Transaction, error)
	ListTransactions(ctx context.Context, offset, limit int) ([]model.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status model.TransactionStatus) (model.Transaction, error)
}

type transactionService struct {
	db              db.DB
	transactionRepo repository.TransactionRepository
	inventoryRepo   repository.InventoryRepository
	outboxMsgRepo   repository.OutboxMsgRepository
}

func NewTransactionService(
	db db.DB,
	transactionRepo repository.TransactionRepository,
	inventoryRepo repository.InventoryRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) TransactionService {
	return &transactionService{
		db:              db,
		transactionRepo: transactionRepo,
		inventoryRepo:   inventoryRepo,
		outboxMsgRepo:   outboxMsgRepo,
	}
}

// CreateTransaction persists the transaction header and items, applies the
// inventory effect of every line item, and enqueues the audit events, all in
// one database transaction. A failure anywhere rolls back everything.
func (s *transactionService) CreateTransaction(ctx context.Context, params CreateTransactionParams) (CreateTransactionResult, error) {
	if err := params.Type.Validate(); err != nil {
		return CreateTransactionResult{}, apperr.InvalidTransactionTypeErr.WrapParent(err)
	}
	if err := params.Status.Validate(); err != nil {
		return CreateTransactionResult{}, apperr.InvalidTransactionStatusErr.WrapParent(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return CreateTransactionResult{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	reference := params.ReferenceNumber
	if reference == "" {
		reference = NewReferenceNumber()
	}

	transaction := model.Transaction{
		ID:              id,
		TransactionDate: time.Now(),
		Type:            params.Type,
		ReferenceNumber: reference,
		CustomerID:      params.CustomerID,
		VendorID:        params.VendorID,
		TotalAmount:     params.TotalAmount,
		Status:          params.Status,
		Notes:           params.Notes,
	}

	items := make([]model.TransactionItem, 0, len(params.Items))
	for _, itemParams := range params.Items {
		itemID, err := uuid.NewV7()
		if err != nil {
			return CreateTransactionResult{}, fmt.Errorf("generate uuid v7: %w", err)
		}

		items = append(items, model.TransactionItem{
			ID:            itemID,
			TransactionID: transaction.ID,
			ProductID:     itemParams.ProductID,
			Quantity:      itemParams.Quantity,
			UnitPrice:     itemParams.UnitPrice,
			TotalPrice:    float64(itemParams.Quantity) * itemParams.UnitPrice,
		})
	}
	transaction.Items = items

	var allocations []AllocationResult
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		transactionRepo := s.transactionRepo.WithDB(db)

		if err := transactionRepo.CreateTransaction(ctx, transaction); err != nil {
			return fmt.Errorf("transaction repository create transaction: %w", err)
		}

		if err := transactionRepo.CreateItems(ctx, items); err != nil {
			return fmt.Errorf("transaction repository create items: %w", err)
		}

		allocations, err = s.applyInventoryEffects(ctx, db, transaction)
		if err != nil {
			return fmt.Errorf("apply inventory effects: %w", err)
		}

		if err := s.enqueueEvents(ctx, db, transaction, allocations); err != nil {
			return fmt.Errorf("enqueue events: %w", err)
		}

		return nil
	}); err != nil {
		return CreateTransactionResult{}, fmt.Errorf("db with tx: %w", err)
	}

	return CreateTransactionResult{
		Transaction: transaction,
		Allocations: allocations,
	}, nil
}

// applyInventoryEffects dispatches on the transaction type and runs the
// matching allocation once per line item, in item order.
func (s *transactionService) applyInventoryEffects(ctx context.Context, db db.DB, transaction model.Transaction) ([]AllocationResult, error) {
	allocator := stockAllocator{inventoryRepo: s.inventoryRepo.WithDB(db)}

	allocations := make([]AllocationResult, 0, len(transaction.Items))
	for _, item := range transaction.Items {
		var (
			allocation AllocationResult
			err        error
		)

		switch transaction.Type {
		case model.TransactionTypeSale:
			allocation, err = allocator.drawDown(ctx, item.ProductID, item.Quantity)
		case model.TransactionTypePurchase:
			allocation, err = allocator.credit(ctx, item.ProductID, item.Quantity, defaultLocation, model.InventoryStatusAvailable)
		case model.TransactionTypeReturn:
			allocation, err = allocator.credit(ctx, item.ProductID, item.Quantity, returnsLocation, model.InventoryStatusReturned)
		case model.TransactionTypeAdjustment:
			allocation, err = allocator.overwrite(ctx, item.ProductID, item.Quantity)
		default:
			// unreachable after Validate, kept so the switch stays exhaustive
			err = apperr.InvalidTransactionTypeErr
		}
		if err != nil {
			return nil, fmt.Errorf("apply %s effect for product %s: %w", transaction.Type, item.ProductID, err)
		}

		allocations = append(allocations, allocation)
	}

	return allocations, nil
}

func (s *transactionService) enqueueEvents(ctx context.Context, db db.DB, transaction model.Transaction, allocations []AllocationResult) error {
	outboxMsgRepo := s.outboxMsgRepo.WithDB(db)

	itemEffects := make([]event.TransactionItemEffect, 0, len(allocations))
	for _, allocation := range allocations {
		itemEffects = append(itemEffects, event.TransactionItemEffect{
			ProductID: allocation.ProductID,
			Requested: allocation.Requested,
			Fulfilled: allocation.Fulfilled,
			Shortfall: allocation.Shortfall,
		})
	}

	recorded := event.TransactionRecordedEvent{
		TransactionID:   transaction.ID.String(),
		Type:            string(transaction.Type),
		ReferenceNumber: transaction.ReferenceNumber,
		TotalAmount:     transaction.TotalAmount,
		Status:          string(transaction.Status),
		Items:           itemEffects,
	}
	if err := s.enqueueEvent(ctx, outboxMsgRepo, event.TopicTransactionRecorded, transaction.ID.String(), recorded); err != nil {
		return err
	}

	for _, allocation := range allocations {
		if allocation.Shortfall == 0 {
			continue
		}

		shortfall := event.InventoryShortfallEvent{
			TransactionID:   transaction.ID.String(),
			ReferenceNumber: transaction.ReferenceNumber,
			ProductID:       allocation.ProductID.String(),
			Requested:       allocation.Requested,
			Fulfilled:       allocation.Fulfilled,
			Shortfall:       allocation.Shortfall,
		}
		if err := s.enqueueEvent(ctx, outboxMsgRepo, event.TopicInventoryShortfall, allocation.ProductID.String(), shortfall); err != nil {
			return err
		}
	}

	return nil
}

func (s *transactionService) enqueueEvent(ctx context.Context, outboxMsgRepo repository.OutboxMsgRepository, topic, partitionKey string, ev any) error {
	evBytes, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := outboxMsgRepo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        topic,
		Headers:      outbox.BuildHeaders(ctx),
		Payload:      evBytes,
		PartitionKey: ptr.New(partitionKey),
	}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

func (s *transactionService) GetTransaction(ctx context.Context, id uuid.UUID) (model.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction repository get by id: %w", err)
	}

	return transaction, nil
}

func (s *transactionService) GetTransactionByReference(ctx context.Context, reference string) (model.Transaction, error) {
	transaction, err := s.transactionRepo.GetByReference(ctx, reference)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction repository get by reference: %w", err)
	}

	return transaction, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, offset, limit int) ([]model.Transaction, error) {
	transactions, err := s.transactionRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("transaction repository list: %w", err)
	}

	return transactions, nil
}

func (s *transactionService) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status model.TransactionStatus) (model.Transaction, error) {
	if err := status.Validate(); err != nil {
		return model.Transaction{}, apperr.InvalidTransactionStatusErr.WrapParent(err)
	}

	transaction, err := s.transactionRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction repository update status: %w", err)
	}

	return transaction, nil
}

// NewReferenceNumber generates a reference of the form TX-XXXXXXXX, where the
// suffix is the first eight uppercase hex characters of a random UUID.
// Collisions are improbable rather than impossible; the unique constraint on
// reference_number is the actual guarantee.
func NewReferenceNumber() string {
	u := uuid.New()
	return "TX-" + strings.ToUpper(hex.EncodeToString(u[:4]))
}
