package response

import (
	"time"

	"order-checkout/internal/usecase/commands"
	"order-checkout/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderItemResponse struct {
	ProductID      uuid.UUID `json:"productId"`
	Quantity       int64     `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
}

type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	UserID           uuid.UUID           `json:"userId"`
	Items            []OrderItemResponse `json:"items"`
	TotalAmountCents int64               `json:"totalAmountCents"`
	Status           string              `json:"status"`
	PaymentStatus    string              `json:"paymentStatus"`
	TransactionID    *string             `json:"transactionId,omitempty"`
	FailureReason    *string             `json:"failureReason,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

type OrderListResponse struct {
	ID               uuid.UUID `json:"id"`
	TotalAmountCents int64     `json:"totalAmountCents"`
	Status           string    `json:"status"`
	PaymentStatus    string    `json:"paymentStatus"`
	CreatedAt        time.Time `json:"createdAt"`
}

// CheckoutResponse is the order representation plus checkout-attempt
// metadata; a terminal but unsuccessful order still returns 201 Created.
type CheckoutResponse struct {
	Order      OrderResponse `json:"order"`
	IsReplayed bool          `json:"isReplayed"`
}

func FromOrderView(rm *queries.OrderView) *OrderResponse {
	items := make([]OrderItemResponse, len(rm.Items))
	for i, item := range rm.Items {
		items[i] = OrderItemResponse{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		}
	}
	return &OrderResponse{
		ID:               rm.ID,
		UserID:           rm.UserID,
		Items:            items,
		TotalAmountCents: rm.TotalAmountCents,
		Status:           rm.Status,
		PaymentStatus:    rm.PaymentStatus,
		TransactionID:    rm.TransactionID,
		FailureReason:    rm.FailureReason,
		CreatedAt:        rm.CreatedAt,
		UpdatedAt:        rm.UpdatedAt,
	}
}

func FromOrderListItem(rm *queries.OrderListItem) *OrderListResponse {
	return &OrderListResponse{
		ID:               rm.ID,
		TotalAmountCents: rm.TotalAmountCents,
		Status:           rm.Status,
		PaymentStatus:    rm.PaymentStatus,
		CreatedAt:        rm.CreatedAt,
	}
}

func FromCheckoutResult(result *commands.CheckoutResult) *CheckoutResponse {
	return &CheckoutResponse{
		Order:      *FromOrderView(result.Order),
		IsReplayed: result.IsReplayed,
	}
}
