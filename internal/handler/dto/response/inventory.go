package response

import (
	"time"

	"order-checkout/internal/usecase/commands"
	"order-checkout/internal/usecase/queries"

	"github.com/google/uuid"
)

type InventoryResponse struct {
	ProductID      uuid.UUID `json:"productId"`
	AvailableStock int64     `json:"availableStock"`
	ReservedStock  int64     `json:"reservedStock"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// StockLevelsResponse is returned by ledger mutations and echoes which
// operation produced the levels and the reference it was tracked under.
type StockLevelsResponse struct {
	ProductID   uuid.UUID  `json:"productId"`
	Reserved    int64      `json:"reserved"`
	Available   int64      `json:"available"`
	Operation   string     `json:"operation"`
	ReferenceID *uuid.UUID `json:"referenceId,omitempty"`
}

type AvailabilityResponse struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int64     `json:"quantity"`
	Available bool      `json:"available"`
}

func FromInventoryView(rm *queries.InventoryView) *InventoryResponse {
	return &InventoryResponse{
		ProductID:      rm.ProductID,
		AvailableStock: rm.AvailableStock,
		ReservedStock:  rm.ReservedStock,
		Version:        rm.Version,
		CreatedAt:      rm.CreatedAt,
		UpdatedAt:      rm.UpdatedAt,
	}
}

func FromStockLevels(levels *commands.StockLevels, operation string, referenceID *uuid.UUID) *StockLevelsResponse {
	return &StockLevelsResponse{
		ProductID:   levels.ProductID,
		Reserved:    levels.Reserved,
		Available:   levels.Available,
		Operation:   operation,
		ReferenceID: referenceID,
	}
}
