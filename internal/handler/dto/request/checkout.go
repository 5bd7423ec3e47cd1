package request

import (
	"order-checkout/internal/domain/order"

	"github.com/google/uuid"
)

type CheckoutItemRequest struct {
	ProductID      uuid.UUID `json:"productId" binding:"required"`
	Quantity       int64     `json:"quantity" binding:"required,gt=0"`
	UnitPriceCents int64     `json:"unitPriceCents" binding:"gte=0"`
}

// CheckoutRequest carries explicit line items; an empty items list means the
// server resolves them from the user's cart.
type CheckoutRequest struct {
	Items         []CheckoutItemRequest `json:"items"`
	PaymentMethod string                `json:"paymentMethod" binding:"required"`
}

func (r CheckoutRequest) ToLines() []order.Line {
	lines := make([]order.Line, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, order.Line{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return lines
}
