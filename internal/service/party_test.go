package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/repository"
	"github.com/polybooks/polybooks/internal/service"
	"github.com/polybooks/polybooks/internal/storage/db"
)

type memCustomerRepo struct {
	customers []model.Customer
}

func (r *memCustomerRepo) WithDB(_ db.DB) repository.CustomerRepository { return r }

func (r *memCustomerRepo) Create(_ context.Context, customer model.Customer) error {
	r.customers = append(r.customers, customer)
	return nil
}

func (r *memCustomerRepo) GetByID(_ context.Context, id uuid.UUID) (model.Customer, error) {
	for _, c := range r.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Customer{}, apperr.CustomerNotFoundErr
}

func (r *memCustomerRepo) List(_ context.Context, offset, limit int) ([]model.Customer, error) {
	if offset >= len(r.customers) {
		return nil, nil
	}
	end := min(offset+limit, len(r.customers))
	return r.customers[offset:end], nil
}

type memVendorRepo struct {
	vendors []model.Vendor
}

func (r *memVendorRepo) WithDB(_ db.DB) repository.VendorRepository { return r }

func (r *memVendorRepo) Create(_ context.Context, vendor model.Vendor) error {
	r.vendors = append(r.vendors, vendor)
	return nil
}

func (r *memVendorRepo) GetByID(_ context.Context, id uuid.UUID) (model.Vendor, error) {
	for _, v := range r.vendors {
		if v.ID == id {
			return v, nil
		}
	}
	return model.Vendor{}, apperr.VendorNotFoundErr
}

func (r *memVendorRepo) List(_ context.Context, offset, limit int) ([]model.Vendor, error) {
	if offset >= len(r.vendors) {
		return nil, nil
	}
	end := min(offset+limit, len(r.vendors))
	return r.vendors[offset:end], nil
}

func newPartyFixture() (service.PartyService, *memCustomerRepo, *memVendorRepo) {
	customerRepo := &memCustomerRepo{}
	vendorRepo := &memVendorRepo{}
	svc := service.NewPartyService(customerRepo, vendorRepo)
	return svc, customerRepo, vendorRepo
}

func TestCreateCustomer(t *testing.T) {
	svc, customerRepo, _ := newPartyFixture()

	customer, err := svc.CreateCustomer(context.Background(), service.CreatePartyParams{
		Name:  "Acme Retail",
		Email: "orders@acme.example",
		Phone: "555-0101",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, customer.ID)
	assert.Equal(t, "Acme Retail", customer.Name)
	assert.True(t, customer.IsActive)
	assert.False(t, customer.CreatedAt.IsZero())
	require.Len(t, customerRepo.customers, 1)
}

func TestGetVendor(t *testing.T) {
	svc, _, _ := newPartyFixture()

	t.Run("Should return a created vendor", func(t *testing.T) {
		created, err := svc.CreateVendor(context.Background(), service.CreatePartyParams{
			Name:    "Widget Supply Co",
			Address: "1 Industrial Way",
		})
		require.NoError(t, err)

		vendor, err := svc.GetVendor(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, vendor)
	})

	t.Run("Should report a missing vendor", func(t *testing.T) {
		id, err := uuid.NewV7()
		require.NoError(t, err)

		_, err = svc.GetVendor(context.Background(), id)
		assert.ErrorIs(t, err, apperr.VendorNotFoundErr)
	})
}

func TestListCustomers(t *testing.T) {
	svc, _, _ := newPartyFixture()

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		_, err := svc.CreateCustomer(context.Background(), service.CreatePartyParams{Name: name})
		require.NoError(t, err)
	}

	customers, err := svc.ListCustomers(context.Background(), 1, 50)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Beta", customers[0].Name)
}
