package commands

import (
	"context"
	"time"

	"order-checkout/internal/domain/inventory"
	"order-checkout/internal/domain/order"
	"order-checkout/internal/usecase/queries"

	"github.com/google/uuid"
)

// InventoryRepository is the write side of the stock ledger. UpdateCounters
// has compare-and-swap semantics: the write applies only against the version
// the caller read, otherwise it fails with a conflict kind.
type InventoryRepository interface {
	Insert(ctx context.Context, rec *inventory.Record) error
	FindByProductID(ctx context.Context, productID uuid.UUID) (*inventory.Record, error)
	UpdateCounters(ctx context.Context, productID uuid.UUID, available, reserved, expectedVersion int64) (*inventory.Record, error)
}

// OrderRepository persists the order aggregate. Create writes the order row
// and its line items atomically.
type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status, paymentStatus order.PaymentStatus, transactionID, failureReason *string) error
}

// IdempotencyRepository backs exactly-once delivery of checkout results.
// TryInsert reports whether the caller claimed the key; a lost claim means
// another attempt owns or owned it, and Get tells which.
type IdempotencyRepository interface {
	TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error)
	Get(ctx context.Context, key, userID uuid.UUID) (*queries.IdempotencyKeyView, error)
	UpdateStatusCompleted(ctx context.Context, key, userID, resultOrderID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// ChargeRequest is sent to the payment gateway collaborator.
type ChargeRequest struct {
	OrderID       uuid.UUID
	UserID        uuid.UUID
	AmountCents   int64
	PaymentMethod string
}

type ChargeStatus string

const (
	ChargeSuccess ChargeStatus = "SUCCESS"
	ChargeFailed  ChargeStatus = "FAILED"
)

type ChargeResult struct {
	TransactionID string
	Status        ChargeStatus
}

// PaymentGateway reports a business outcome (SUCCESS/FAILED) via the result;
// an error means the gateway could not be reached and the outcome is unknown.
// The orchestrator must treat those two cases differently.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// CartLine mirrors one entry of the customer's cart snapshot.
type CartLine struct {
	ProductID      uuid.UUID
	Quantity       int64
	UnitPriceCents int64
}

// CartGateway talks to the cart service collaborator. Clear is best-effort
// after a completed checkout.
type CartGateway interface {
	Fetch(ctx context.Context, userID uuid.UUID) ([]CartLine, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}
