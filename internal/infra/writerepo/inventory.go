package writerepo

import (
	"context"
	"errors"
	"time"

	"order-checkout/internal/domain/inventory"
	"order-checkout/internal/infra"
	"order-checkout/internal/infra/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/google/uuid"
)

const pgErrCodeUniqueViolation = "23505"

type InventoryRepository struct {
	db db.DBTX
}

func NewInventoryRepository(dbtx db.DBTX) *InventoryRepository {
	return &InventoryRepository{db: dbtx}
}

func (r *InventoryRepository) Insert(ctx context.Context, rec *inventory.Record) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO inventory_records (product_id, available_stock, reserved_stock, version)
		VALUES ($1, $2, $3, 0)`,
		rec.ProductID(), rec.Available(), rec.Reserved(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return infra.WrapRepoErr("inventory record already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert inventory record", err)
	}
	return nil
}

func (r *InventoryRepository) FindByProductID(ctx context.Context, productID uuid.UUID) (*inventory.Record, error) {
	row := r.db.QueryRow(ctx, `
		SELECT product_id, available_stock, reserved_stock, version, created_at, updated_at
		FROM inventory_records
		WHERE product_id = $1`,
		productID,
	)
	return scanRecord(row)
}

// UpdateCounters is the ledger's compare-and-swap: the write applies only if
// the version is still the one the caller read. Zero rows affected means
// another writer got there first and is reported as a conflict, never applied
// partially (records are never deleted while the product exists).
func (r *InventoryRepository) UpdateCounters(
	ctx context.Context,
	productID uuid.UUID,
	available, reserved, expectedVersion int64,
) (*inventory.Record, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE inventory_records
		SET available_stock = $3,
		    reserved_stock  = $4,
		    version         = version + 1,
		    updated_at      = now()
		WHERE product_id = $1 AND version = $2
		RETURNING product_id, available_stock, reserved_stock, version, created_at, updated_at`,
		productID, expectedVersion, available, reserved,
	)

	rec, err := scanRecord(row)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, infra.WrapRepoErr("inventory record modified concurrently", nil, infra.KindConflict)
		}
		return nil, err
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (*inventory.Record, error) {
	var (
		productID            uuid.UUID
		available, reserved  int64
		version              int64
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&productID, &available, &reserved, &version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("inventory record not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan inventory record", err)
	}
	return inventory.ReconstructRecord(productID, available, reserved, version, createdAt, updatedAt), nil
}
