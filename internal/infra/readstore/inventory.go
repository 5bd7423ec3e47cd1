package readstore

import (
	"context"
	"errors"

	"order-checkout/internal/infra"
	"order-checkout/internal/infra/db"
	"order-checkout/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InventoryReadStore struct {
	db db.DBTX
}

func NewInventoryReadStore(dbtx db.DBTX) *InventoryReadStore {
	return &InventoryReadStore{db: dbtx}
}

func (r *InventoryReadStore) FindByProductID(ctx context.Context, productID uuid.UUID) (*queries.InventoryView, error) {
	row := r.db.QueryRow(ctx, `
		SELECT product_id, available_stock, reserved_stock, version, created_at, updated_at
		FROM inventory_records
		WHERE product_id = $1`,
		productID,
	)

	var view queries.InventoryView
	err := row.Scan(
		&view.ProductID, &view.AvailableStock, &view.ReservedStock,
		&view.Version, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("inventory record not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find inventory record", err)
	}

	return &view, nil
}
