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

type TransactionRepository interface {
	WithDB(db db.DB) TransactionRepository
	CreateTransaction(ctx context.Context, transaction model.Transaction) error
	CreateItems(ctx context.Context, items []model.TransactionItem) error
	GetByID(ctx context.Context, id uuid.UUID) (model.Transaction, error)
	GetByReference(ctx context.Context, reference string) (model.Transaction, error)
	// List returns transactions ordered by transaction_date descending.
	List(ctx context.Context, offset, limit int) ([]model.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.TransactionStatus) (model.Transaction, error)
}

type transactionRepository struct {
	db db.DB
}

func NewTransactionRepository(db db.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r transactionRepository) WithDB(db db.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, transaction_date, transaction_type, reference_number, customer_id, vendor_id, total_amount, status, notes`

func (r transactionRepository) CreateTransaction(ctx context.Context, transaction model.Transaction) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO transactions (id, transaction_date, transaction_type, reference_number, customer_id, vendor_id, total_amount, status, notes)
		VALUES (@id, @transaction_date, @transaction_type, @reference_number, @customer_id, @vendor_id, @total_amount, @status, @notes)
	`, pgx.NamedArgs{
		"id":               transaction.ID,
		"transaction_date": transaction.TransactionDate,
		"transaction_type": string(transaction.Type),
		"reference_number": transaction.ReferenceNumber,
		"customer_id":      transaction.CustomerID,
		"vendor_id":        transaction.VendorID,
		"total_amount":     transaction.TotalAmount,
		"status":           string(transaction.Status),
		"notes":            transaction.Notes,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.ReferenceConflictErr.WrapParent(err)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}

func (r transactionRepository) CreateItems(ctx context.Context, items []model.TransactionItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	transactionIDs := make([]uuid.UUID, 0, len(items))
	productIDs := make([]uuid.UUID, 0, len(items))
	quantities := make([]int32, 0, len(items))
	unitPrices := make([]float64, 0, len(items))
	totalPrices := make([]float64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
		transactionIDs = append(transactionIDs, item.TransactionID)
		productIDs = append(productIDs, item.ProductID)
		quantities = append(quantities, int32(item.Quantity))
		unitPrices = append(unitPrices, item.UnitPrice)
		totalPrices = append(totalPrices, item.TotalPrice)
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO transaction_items (id, transaction_id, product_id, quantity, unit_price, total_price)
		SELECT UNNEST(@ids::uuid[]),
			UNNEST(@transaction_ids::uuid[]),
			UNNEST(@product_ids::uuid[]),
			UNNEST(@quantities::int[]),
			UNNEST(@unit_prices::float8[]),
			UNNEST(@total_prices::float8[])
	`, pgx.NamedArgs{
		"ids":             ids,
		"transaction_ids": transactionIDs,
		"product_ids":     productIDs,
		"quantities":      quantities,
		"unit_prices":     unitPrices,
		"total_prices":    totalPrices,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return apperr.ProductNotFoundErr.WrapParent(err)
		}
		return fmt.Errorf("insert transaction items: %w", err)
	}

	return nil
}

func (r transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Transaction, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})

	transaction, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Transaction{}, apperr.TransactionNotFoundErr
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("select transaction by id: %w", err)
	}

	if err := r.attachItems(ctx, []*model.Transaction{&transaction}); err != nil {
		return model.Transaction{}, err
	}

	return transaction, nil
}

func (r transactionRepository) GetByReference(ctx context.Context, reference string) (model.Transaction, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE reference_number = @reference_number
	`, pgx.NamedArgs{"reference_number": reference})

	transaction, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Transaction{}, apperr.TransactionNotFoundErr
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("select transaction by reference: %w", err)
	}

	if err := r.attachItems(ctx, []*model.Transaction{&transaction}); err != nil {
		return model.Transaction{}, err
	}

	return transaction, nil
}

func (r transactionRepository) List(ctx context.Context, offset, limit int) ([]model.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY transaction_date DESC
		OFFSET @offset
		LIMIT @limit
	`, pgx.NamedArgs{"offset": offset, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]model.Transaction, 0)
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	refs := make([]*model.Transaction, 0, len(transactions))
	for i := range transactions {
		refs = append(refs, &transactions[i])
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}

	return transactions, nil
}

func (r transactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TransactionStatus) (model.Transaction, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE transactions
		SET status = @status
		WHERE id = @id
		RETURNING `+transactionColumns+`
	`, pgx.NamedArgs{"id": id, "status": string(status)})

	transaction, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Transaction{}, apperr.TransactionNotFoundErr
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("update transaction status: %w", err)
	}

	if err := r.attachItems(ctx, []*model.Transaction{&transaction}); err != nil {
		return model.Transaction{}, err
	}

	return transaction, nil
}

func (r transactionRepository) attachItems(ctx context.Context, transactions []*model.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(transactions))
	byID := make(map[uuid.UUID]*model.Transaction, len(transactions))
	for _, transaction := range transactions {
		ids = append(ids, transaction.ID)
		byID[transaction.ID] = transaction
		transaction.Items = make([]model.TransactionItem, 0)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, transaction_id, product_id, quantity, unit_price, total_price
		FROM transaction_items
		WHERE transaction_id = ANY(@transaction_ids::uuid[])
		ORDER BY id
	`, pgx.NamedArgs{"transaction_ids": ids})
	if err != nil {
		return fmt.Errorf("select transaction items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.TransactionItem
		if err := rows.Scan(
			&item.ID,
			&item.TransactionID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
		); err != nil {
			return fmt.Errorf("scan transaction item: %w", err)
		}
		if transaction, ok := byID[item.TransactionID]; ok {
			transaction.Items = append(transaction.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate transaction items: %w", err)
	}

	return nil
}

func scanTransaction(row pgx.Row) (model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(
		&t.ID,
		&t.TransactionDate,
		&t.Type,
		&t.ReferenceNumber,
		&t.CustomerID,
		&t.VendorID,
		&t.TotalAmount,
		&t.Status,
		&t.Notes,
	)
	return t, err
}
