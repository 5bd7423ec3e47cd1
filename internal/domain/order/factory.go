package order

import (
	"order-checkout/internal/pkg/clock"

	"github.com/google/uuid"
)

type Factory struct {
	Clock clock.Clock
}

func NewFactory(clock clock.Clock) *Factory {
	return &Factory{Clock: clock}
}

// NewPendingOrder validates the line items and builds the order in PENDING
// with the computed total. The saga drives it to a terminal state afterwards.
func (f *Factory) NewPendingOrder(userID uuid.UUID, items []Line) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	var total int64
	for _, item := range items {
		if item.Quantity <= 0 || item.UnitPriceCents < 0 {
			return nil, ErrInvalidItem
		}
		total += item.SubtotalCents()
	}

	now := f.Clock.Now()
	return &Order{
		id:            uuid.New(),
		userID:        userID,
		items:         items,
		totalCents:    total,
		status:        StatusPending,
		paymentStatus: PaymentPending,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}
