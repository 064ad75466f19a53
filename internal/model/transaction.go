package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionType is a closed enum; every dispatch site must handle all four
// values and reject anything else up front.
type TransactionType string

const (
	TransactionTypeSale       TransactionType = "sale"
	TransactionTypePurchase   TransactionType = "purchase"
	TransactionTypeReturn     TransactionType = "return"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// Validate implements the enum contract used by the `enum` validator tag.
func (t TransactionType) Validate() error {
	switch t {
	case TransactionTypeSale, TransactionTypePurchase, TransactionTypeReturn, TransactionTypeAdjustment:
		return nil
	default:
		return fmt.Errorf("unknown transaction type: %q", string(t))
	}
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Validate implements the enum contract used by the `enum` validator tag.
func (s TransactionStatus) Validate() error {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusCancelled:
		return nil
	default:
		return fmt.Errorf("unknown transaction status: %q", string(s))
	}
}

type Transaction struct {
	ID              uuid.UUID         `json:"id"`
	TransactionDate time.Time         `json:"transaction_date"`
	Type            TransactionType   `json:"transaction_type"`
	ReferenceNumber string            `json:"reference_number"`
	CustomerID      *uuid.UUID        `json:"customer_id,omitempty"`
	VendorID        *uuid.UUID        `json:"vendor_id,omitempty"`
	TotalAmount     float64           `json:"total_amount"`
	Status          TransactionStatus `json:"status"`
	Notes           string            `json:"notes"`
	Items           []TransactionItem `json:"items"`
}

// TransactionItem snapshots quantity and price at recording time.
// TotalPrice is computed once at creation and never recomputed.
type TransactionItem struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	ProductID     uuid.UUID `json:"product_id"`
	Quantity      int       `json:"quantity"`
	UnitPrice     float64   `json:"unit_price"`
	TotalPrice    float64   `json:"total_price"`
}
