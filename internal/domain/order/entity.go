package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoItems         = errors.New("order must contain at least one item")
	ErrInvalidItem     = errors.New("order item quantity and price must be positive")
	ErrAlreadyTerminal = errors.New("order already reached a terminal state")
)

// Line is one (productId, quantity, unitPrice) entry of an order.
type Line struct {
	ProductID      uuid.UUID
	Quantity       int64
	UnitPriceCents int64
}

func (l Line) SubtotalCents() int64 {
	return l.Quantity * l.UnitPriceCents
}

// Order is the checkout aggregate. It is mutated only by the orchestrator
// that owns the checkout attempt, so it carries no concurrency token.
type Order struct {
	id            uuid.UUID
	userID        uuid.UUID
	items         []Line
	totalCents    int64
	status        Status
	paymentStatus PaymentStatus
	transactionID *string
	createdAt     time.Time
	updatedAt     time.Time
}

func ReconstructOrder(
	id, userID uuid.UUID,
	items []Line,
	totalCents int64,
	status Status,
	paymentStatus PaymentStatus,
	transactionID *string,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:            id,
		userID:        userID,
		items:         items,
		totalCents:    totalCents,
		status:        status,
		paymentStatus: paymentStatus,
		transactionID: transactionID,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// MarkCompleted records a successful checkout: payment settled, all
// reservations deducted.
func (o *Order) MarkCompleted(transactionID string) error {
	if o.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	o.status = StatusCompleted
	o.paymentStatus = PaymentSuccess
	o.transactionID = &transactionID
	return nil
}

// MarkFailed records a deterministic failure (insufficient stock or payment
// denied); every reservation made for the order must already be released.
func (o *Order) MarkFailed() error {
	if o.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	o.status = StatusFailed
	o.paymentStatus = PaymentFailed
	return nil
}

// MarkIncomplete records an unknown payment outcome. Payment stays PENDING
// and reservations stay held so reconciliation can finish the order later.
func (o *Order) MarkIncomplete() error {
	if o.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	o.status = StatusIncomplete
	o.paymentStatus = PaymentPending
	return nil
}

func (o *Order) ID() uuid.UUID                { return o.id }
func (o *Order) UserID() uuid.UUID            { return o.userID }
func (o *Order) Items() []Line                { return o.items }
func (o *Order) TotalCents() int64            { return o.totalCents }
func (o *Order) Status() Status               { return o.status }
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }
func (o *Order) TransactionID() *string       { return o.transactionID }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) UpdatedAt() time.Time         { return o.updatedAt }
