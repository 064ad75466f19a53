package service_test

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/repository"
	"github.com/polybooks/polybooks/internal/storage/db"
)

// fakeDB satisfies db.DB for services whose repositories are mocked. WithTx
// just runs the function; the raw query methods are never reached.
type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (fakeDB) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (fakeDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

func (f fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(f)
}

// memInventoryRepo keeps items in insertion order, mirroring the
// created_at/id ordering of the real repository.
type memInventoryRepo struct {
	items []model.InventoryItem

	// setQuantityErrAfter fails the nth SetQuantity call (1-based) when > 0.
	setQuantityErrAfter int
	setQuantityCalls    int
	setQuantityErr      error
}

func (m *memInventoryRepo) WithDB(db.DB) repository.InventoryRepository { return m }

func (m *memInventoryRepo) Create(_ context.Context, item model.InventoryItem) error {
	m.items = append(m.items, item)
	return nil
}

func (m *memInventoryRepo) GetByID(_ context.Context, id uuid.UUID) (model.InventoryItem, error) {
	for _, item := range m.items {
		if item.ID == id {
			return item, nil
		}
	}
	return model.InventoryItem{}, apperr.InventoryItemNotFoundErr
}

func (m *memInventoryRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]model.InventoryItem, error) {
	items := make([]model.InventoryItem, 0)
	for _, item := range m.items {
		if item.ProductID == productID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *memInventoryRepo) ListByProductForUpdate(ctx context.Context, productID uuid.UUID) ([]model.InventoryItem, error) {
	return m.ListByProduct(ctx, productID)
}

func (m *memInventoryRepo) SetQuantity(_ context.Context, id uuid.UUID, quantity int) (model.InventoryItem, error) {
	m.setQuantityCalls++
	if m.setQuantityErrAfter > 0 && m.setQuantityCalls >= m.setQuantityErrAfter {
		return model.InventoryItem{}, m.setQuantityErr
	}

	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Quantity = quantity
			m.items[i].LastCountDate = time.Now()
			return m.items[i], nil
		}
	}
	return model.InventoryItem{}, apperr.InventoryItemNotFoundErr
}

func (m *memInventoryRepo) ListDueForRecount(_ context.Context, olderThan time.Time) ([]model.InventoryItem, error) {
	items := make([]model.InventoryItem, 0)
	for _, item := range m.items {
		if item.LastCountDate.Before(olderThan) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].LastCountDate.Before(items[j].LastCountDate)
	})
	return items, nil
}

func (m *memInventoryRepo) quantities(productID uuid.UUID) []int {
	quantities := make([]int, 0)
	for _, item := range m.items {
		if item.ProductID == productID {
			quantities = append(quantities, item.Quantity)
		}
	}
	return quantities
}

type memTransactionRepo struct {
	transactions []model.Transaction
	items        []model.TransactionItem
}

func (m *memTransactionRepo) WithDB(db.DB) repository.TransactionRepository { return m }

func (m *memTransactionRepo) CreateTransaction(_ context.Context, transaction model.Transaction) error {
	for _, existing := range m.transactions {
		if existing.ReferenceNumber == transaction.ReferenceNumber {
			return apperr.ReferenceConflictErr
		}
	}
	m.transactions = append(m.transactions, transaction)
	return nil
}

func (m *memTransactionRepo) CreateItems(_ context.Context, items []model.TransactionItem) error {
	m.items = append(m.items, items...)
	return nil
}

func (m *memTransactionRepo) GetByID(_ context.Context, id uuid.UUID) (model.Transaction, error) {
	for _, transaction := range m.transactions {
		if transaction.ID == id {
			return transaction, nil
		}
	}
	return model.Transaction{}, apperr.TransactionNotFoundErr
}

func (m *memTransactionRepo) GetByReference(_ context.Context, reference string) (model.Transaction, error) {
	for _, transaction := range m.transactions {
		if transaction.ReferenceNumber == reference {
			return transaction, nil
		}
	}
	return model.Transaction{}, apperr.TransactionNotFoundErr
}

func (m *memTransactionRepo) List(_ context.Context, _, _ int) ([]model.Transaction, error) {
	return m.transactions, nil
}

func (m *memTransactionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.TransactionStatus) (model.Transaction, error) {
	for i := range m.transactions {
		if m.transactions[i].ID == id {
			m.transactions[i].Status = status
			return m.transactions[i], nil
		}
	}
	return model.Transaction{}, apperr.TransactionNotFoundErr
}

type memOutboxRepo struct {
	msgs []repository.CreateOutboxMsgParams
}

func (m *memOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return m }

func (m *memOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	m.msgs = append(m.msgs, params)
	return nil
}

func (m *memOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (m *memOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

func (m *memOutboxRepo) topics() []string {
	topics := make([]string, 0, len(m.msgs))
	for _, msg := range m.msgs {
		topics = append(topics, msg.Topic)
	}
	return topics
}

type memProductRepo struct {
	products map[uuid.UUID]model.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]model.Product)}
}

func (m *memProductRepo) WithDB(db.DB) repository.ProductRepository { return m }

func (m *memProductRepo) Create(_ context.Context, product model.Product) error {
	for _, existing := range m.products {
		if existing.Sku == product.Sku {
			return apperr.ProductSkuConflictErr
		}
	}
	m.products[product.ID] = product
	return nil
}

func (m *memProductRepo) GetByID(_ context.Context, id uuid.UUID) (model.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return model.Product{}, apperr.ProductNotFoundErr
	}
	return product, nil
}

func (m *memProductRepo) GetBySku(_ context.Context, sku string) (model.Product, error) {
	for _, product := range m.products {
		if product.Sku == sku {
			return product, nil
		}
	}
	return model.Product{}, apperr.ProductNotFoundErr
}

func (m *memProductRepo) List(context.Context, int, int) ([]model.Product, error) {
	products := make([]model.Product, 0, len(m.products))
	for _, product := range m.products {
		products = append(products, product)
	}
	return products, nil
}

func (m *memProductRepo) Update(_ context.Context, product model.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return apperr.ProductNotFoundErr
	}
	m.products[product.ID] = product
	return nil
}

func (m *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return apperr.ProductNotFoundErr
	}
	delete(m.products, id)
	return nil
}

func (m *memProductRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.products[id]
	return ok, nil
}

type memUserRepo struct {
	users []model.User
}

func (m *memUserRepo) WithDB(db.DB) repository.UserRepository { return m }

func (m *memUserRepo) Create(_ context.Context, user model.User) error {
	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperr.UserConflictErr
		}
	}
	m.users = append(m.users, user)
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return model.User{}, apperr.UserNotFoundErr
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (model.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return model.User{}, apperr.UserNotFoundErr
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, apperr.UserNotFoundErr
}

func (m *memUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].LastLogin = &at
			return nil
		}
	}
	return apperr.UserNotFoundErr
}
