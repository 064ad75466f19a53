package model

import (
	"time"

	"github.com/google/uuid"
)

// InventoryStatus is an open enum: new values may appear in storage without a
// migration, so no transition rules are enforced here.
type InventoryStatus string

const (
	InventoryStatusAvailable InventoryStatus = "available"
	InventoryStatusReserved  InventoryStatus = "reserved"
	InventoryStatusDamaged   InventoryStatus = "damaged"
	InventoryStatusReturned  InventoryStatus = "returned"
)

// InventoryItem is a per-product, per-location stock record. A product may
// have several items across locations; creation order (CreatedAt, then ID)
// drives sale consumption priority.
type InventoryItem struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      int             `json:"quantity"`
	Location      string          `json:"location"`
	Status        InventoryStatus `json:"status"`
	LastCountDate time.Time       `json:"last_count_date"`
	CreatedAt     time.Time       `json:"created_at"`
}
