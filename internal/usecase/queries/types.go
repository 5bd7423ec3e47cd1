package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)

type InventoryView struct {
	ProductID      uuid.UUID `json:"product_id"`
	AvailableStock int64     `json:"available_stock"`
	ReservedStock  int64     `json:"reserved_stock"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type OrderItemView struct {
	ProductID      uuid.UUID `json:"product_id"`
	Quantity       int64     `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}

type OrderView struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	Items            []OrderItemView `json:"items"`
	TotalAmountCents int64           `json:"total_amount_cents"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"payment_status"`
	TransactionID    *string         `json:"transaction_id,omitempty"`
	FailureReason    *string         `json:"failure_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type OrderListItem struct {
	ID               uuid.UUID `json:"id"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	Status           string    `json:"status"`
	PaymentStatus    string    `json:"payment_status"`
	CreatedAt        time.Time `json:"created_at"`
}

type IdempotencyKeyView struct {
	Key           uuid.UUID  `json:"key"`
	UserID        uuid.UUID  `json:"user_id"`
	Endpoint      string     `json:"endpoint"`
	RequestHash   string     `json:"request_hash"`
	Status        string     `json:"status"`
	ResultOrderID *uuid.UUID `json:"result_order_id,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
}
