package request

import (
	"github.com/google/uuid"
)

type ProvisionInventoryRequest struct {
	ProductID    uuid.UUID `json:"productId" binding:"required"`
	InitialStock int64     `json:"initialStock" binding:"gte=0"`
}

// StockOperationRequest is shared by reserve, release and deduct.
type StockOperationRequest struct {
	ProductID   uuid.UUID  `json:"productId" binding:"required"`
	Quantity    int64      `json:"quantity" binding:"required,gt=0"`
	ReferenceID *uuid.UUID `json:"referenceId,omitempty"`
}

func (r StockOperationRequest) Reference() uuid.UUID {
	if r.ReferenceID == nil {
		return uuid.Nil
	}
	return *r.ReferenceID
}

type AdjustStockRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Delta     int64     `json:"delta" binding:"required"`
	Reason    string    `json:"reason" binding:"required"`
}
