package queries

import (
	"context"

	"order-checkout/internal/infra"
	"order-checkout/internal/pkg/errs"

	"github.com/google/uuid"
)

type InventoryQueries interface {
	GetByProductID(ctx context.Context, productID uuid.UUID) (*InventoryView, error)
	HasSufficientStock(ctx context.Context, productID uuid.UUID, quantity int64) (bool, error)
}

type InventoryReadStore interface {
	FindByProductID(ctx context.Context, productID uuid.UUID) (*InventoryView, error)
}

type inventoryQueriesImpl struct {
	store InventoryReadStore
}

func NewInventoryQueries(store InventoryReadStore) InventoryQueries {
	return &inventoryQueriesImpl{store: store}
}

func (q *inventoryQueriesImpl) GetByProductID(ctx context.Context, productID uuid.UUID) (*InventoryView, error) {
	view, err := q.store.FindByProductID(ctx, productID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrProductNotFound
		}
		return nil, errs.Wrap(err, "failed to find inventory record")
	}
	return view, nil
}

// HasSufficientStock answers false, not an error, for unknown products.
func (q *inventoryQueriesImpl) HasSufficientStock(ctx context.Context, productID uuid.UUID, quantity int64) (bool, error) {
	if quantity <= 0 {
		return false, nil
	}
	view, err := q.store.FindByProductID(ctx, productID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return false, nil
		}
		return false, errs.Wrap(err, "failed to find inventory record")
	}
	return view.AvailableStock >= quantity, nil
}
