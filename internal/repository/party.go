package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/storage/db"
)

// CustomerRepository and VendorRepository share one implementation; the two
// tables have identical columns.
type CustomerRepository interface {
	WithDB(db db.DB) CustomerRepository
	Create(ctx context.Context, customer model.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (model.Customer, error)
	List(ctx context.Context, offset, limit int) ([]model.Customer, error)
}

type VendorRepository interface {
	WithDB(db db.DB) VendorRepository
	Create(ctx context.Context, vendor model.Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (model.Vendor, error)
	List(ctx context.Context, offset, limit int) ([]model.Vendor, error)
}

type customerRepository struct {
	db db.DB
}

func NewCustomerRepository(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r customerRepository) WithDB(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r customerRepository) Create(ctx context.Context, customer model.Customer) error {
	return insertParty(ctx, r.db, "customers", partyRow(customer))
}

func (r customerRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	row, err := getPartyByID(ctx, r.db, "customers", id)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Customer{}, apperr.CustomerNotFoundErr
	}
	if err != nil {
		return model.Customer{}, fmt.Errorf("select customer by id: %w", err)
	}
	return model.Customer(row), nil
}

func (r customerRepository) List(ctx context.Context, offset, limit int) ([]model.Customer, error) {
	rows, err := listParties(ctx, r.db, "customers", offset, limit)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}

	customers := make([]model.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, model.Customer(row))
	}
	return customers, nil
}

type vendorRepository struct {
	db db.DB
}

func NewVendorRepository(db db.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r vendorRepository) WithDB(db db.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r vendorRepository) Create(ctx context.Context, vendor model.Vendor) error {
	return insertParty(ctx, r.db, "vendors", partyRow(vendor))
}

func (r vendorRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Vendor, error) {
	row, err := getPartyByID(ctx, r.db, "vendors", id)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Vendor{}, apperr.VendorNotFoundErr
	}
	if err != nil {
		return model.Vendor{}, fmt.Errorf("select vendor by id: %w", err)
	}
	return model.Vendor(row), nil
}

func (r vendorRepository) List(ctx context.Context, offset, limit int) ([]model.Vendor, error) {
	rows, err := listParties(ctx, r.db, "vendors", offset, limit)
	if err != nil {
		return nil, fmt.Errorf("select vendors: %w", err)
	}

	vendors := make([]model.Vendor, 0, len(rows))
	for _, row := range rows {
		vendors = append(vendors, model.Vendor(row))
	}
	return vendors, nil
}

// partyRow matches the field sets of model.Customer and model.Vendor so both
// convert to and from it directly.
type partyRow = model.Customer

const partyColumns = `id, name, email, phone, address, balance, is_active, created_at`

func insertParty(ctx context.Context, dbc db.DB, table string, row partyRow) error {
	_, err := dbc.Exec(ctx, `
		INSERT INTO `+table+` (`+partyColumns+`)
		VALUES (@id, @name, @email, @phone, @address, @balance, @is_active, @created_at)
	`, pgx.NamedArgs{
		"id":         row.ID,
		"name":       row.Name,
		"email":      row.Email,
		"phone":      row.Phone,
		"address":    row.Address,
		"balance":    row.Balance,
		"is_active":  row.IsActive,
		"created_at": row.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func getPartyByID(ctx context.Context, dbc db.DB, table string, id uuid.UUID) (partyRow, error) {
	row := dbc.QueryRow(ctx, `
		SELECT `+partyColumns+`
		FROM `+table+`
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})

	return scanParty(row)
}

func listParties(ctx context.Context, dbc db.DB, table string, offset, limit int) ([]partyRow, error) {
	rows, err := dbc.Query(ctx, `
		SELECT `+partyColumns+`
		FROM `+table+`
		ORDER BY name, id
		OFFSET @offset
		LIMIT @limit
	`, pgx.NamedArgs{"offset": offset, "limit": limit})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parties := make([]partyRow, 0)
	for rows.Next() {
		party, err := scanParty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		parties = append(parties, party)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return parties, nil
}

func scanParty(row pgx.Row) (partyRow, error) {
	var party partyRow
	err := row.Scan(
		&party.ID,
		&party.Name,
		&party.Email,
		&party.Phone,
		&party.Address,
		&party.Balance,
		&party.IsActive,
		&party.CreatedAt,
	)
	return party, err
}
