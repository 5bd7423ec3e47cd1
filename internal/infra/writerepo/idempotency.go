package writerepo

import (
	"context"
	"errors"
	"time"

	"order-checkout/internal/infra"
	"order-checkout/internal/infra/db"
	"order-checkout/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx}
}

// TryInsert claims the key in "processing" and reports whether this call won
// the claim. A concurrent or repeated request with the same key is a no-op so
// the follow-up Get decides how to proceed.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at)
		VALUES ($1, $2, $3, $4, 'processing', $5)
		ON CONFLICT (key, user_id) DO NOTHING`,
		key, userID, endpoint, requestHash, expiresAt,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, userID uuid.UUID) (*queries.IdempotencyKeyView, error) {
	row := r.db.QueryRow(ctx, `
		SELECT key, user_id, endpoint, request_hash, status, result_order_id, expires_at, created_at
		FROM idempotency_keys
		WHERE key = $1 AND user_id = $2`,
		key, userID,
	)

	var view queries.IdempotencyKeyView
	err := row.Scan(
		&view.Key, &view.UserID, &view.Endpoint, &view.RequestHash,
		&view.Status, &view.ResultOrderID, &view.ExpiresAt, &view.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}

	// Expired keys are treated as not found
	if time.Now().After(view.ExpiresAt) {
		return nil, infra.WrapRepoErr("idempotency key expired", nil, infra.KindNotFound)
	}

	return &view, nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, key, userID, resultOrderID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE idempotency_keys
		SET status = 'completed', result_order_id = $3, updated_at = now()
		WHERE key = $1 AND user_id = $2`,
		key, userID, resultOrderID,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	return nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at < now()`)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
