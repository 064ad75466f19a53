package event

import "github.com/google/uuid"

const (
	TopicProductCreated      = "product.created"
	TopicTransactionRecorded = "transaction.recorded"
	TopicInventoryShortfall  = "inventory.shortfall"
)

type ProductCreatedEvent struct {
	ProductID string  `json:"product_id"`
	Sku       string  `json:"sku"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	UnitPrice float64 `json:"unit_price"`
	CostPrice float64 `json:"cost_price"`
}

type TransactionItemEffect struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Fulfilled int       `json:"fulfilled"`
	Shortfall int       `json:"shortfall"`
}

// TransactionRecordedEvent is the audit record for a committed transaction,
// including the inventory effect of every line item.
type TransactionRecordedEvent struct {
	TransactionID   string                  `json:"transaction_id"`
	Type            string                  `json:"transaction_type"`
	ReferenceNumber string                  `json:"reference_number"`
	TotalAmount     float64                 `json:"total_amount"`
	Status          string                  `json:"status"`
	Items           []TransactionItemEffect `json:"items"`
}

// InventoryShortfallEvent signals that a sale demanded more stock than was
// available. The drawdown clamps at zero instead of failing, so this event is
// the only durable record of the unfulfilled quantity.
type InventoryShortfallEvent struct {
	TransactionID   string `json:"transaction_id"`
	ReferenceNumber string `json:"reference_number"`
	ProductID       string `json:"product_id"`
	Requested       int    `json:"requested"`
	Fulfilled       int    `json:"fulfilled"`
	Shortfall       int    `json:"shortfall"`
}
