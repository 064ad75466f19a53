package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/repository"
)

type CreatePartyParams struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// PartyService manages the counterparties of sale and purchase transactions.
type PartyService interface {
	CreateCustomer(ctx context.Context, params CreatePartyParams) (model.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error)
	ListCustomers(ctx context.Context, offset, limit int) ([]model.Customer, error)
	CreateVendor(ctx context.Context, params CreatePartyParams) (model.Vendor, error)
	GetVendor(ctx context.Context, id uuid.UUID) (model.Vendor, error)
	ListVendors(ctx context.Context, offset, limit int) ([]model.Vendor, error)
}

type partyService struct {
	customerRepo repository.CustomerRepository
	vendorRepo   repository.VendorRepository
}

func NewPartyService(
	customerRepo repository.CustomerRepository,
	vendorRepo repository.VendorRepository,
) PartyService {
	return &partyService{
		customerRepo: customerRepo,
		vendorRepo:   vendorRepo,
	}
}

func (s *partyService) CreateCustomer(ctx context.Context, params CreatePartyParams) (model.Customer, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Customer{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	customer := model.Customer{
		ID:        id,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Address:   params.Address,
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return model.Customer{}, fmt.Errorf("customer repository create: %w", err)
	}

	return customer, nil
}

func (s *partyService) GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return model.Customer{}, fmt.Errorf("customer repository get by id: %w", err)
	}

	return customer, nil
}

func (s *partyService) ListCustomers(ctx context.Context, offset, limit int) ([]model.Customer, error) {
	customers, err := s.customerRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("customer repository list: %w", err)
	}

	return customers, nil
}

func (s *partyService) CreateVendor(ctx context.Context, params CreatePartyParams) (model.Vendor, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Vendor{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	vendor := model.Vendor{
		ID:        id,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Address:   params.Address,
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	if err := s.vendorRepo.Create(ctx, vendor); err != nil {
		return model.Vendor{}, fmt.Errorf("vendor repository create: %w", err)
	}

	return vendor, nil
}

func (s *partyService) GetVendor(ctx context.Context, id uuid.UUID) (model.Vendor, error) {
	vendor, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		return model.Vendor{}, fmt.Errorf("vendor repository get by id: %w", err)
	}

	return vendor, nil
}

func (s *partyService) ListVendors(ctx context.Context, offset, limit int) ([]model.Vendor, error) {
	vendors, err := s.vendorRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("vendor repository list: %w", err)
	}

	return vendors, nil
}
