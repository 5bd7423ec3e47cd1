package writerepo

import (
	"context"
	"errors"
	"log/slog"

	"order-checkout/internal/domain/order"
	"order-checkout/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order row and its line items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return infra.WrapRepoErr("failed to begin transaction", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback order create transaction", "error", rollbackErr.Error())
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, total_amount_cents, status, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		o.ID(), o.UserID(), o.TotalCents(), o.Status().String(), o.PaymentStatus().String(), o.CreatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert order", err)
	}

	for _, item := range o.Items() {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), o.ID(), item.ProductID, item.Quantity, item.UnitPriceCents,
		)
		if err != nil {
			return infra.WrapRepoErr("failed to insert order item", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr("failed to commit order create transaction", err)
	}
	return nil
}

// UpdateStatus writes the terminal state of an order. The orchestrator owns
// the order row, so this is an unconditional write.
func (r *OrderRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status order.Status,
	paymentStatus order.PaymentStatus,
	transactionID *string,
	failureReason *string,
) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = $2, payment_status = $3, payment_transaction_id = $4, failure_reason = $5, updated_at = now()
		WHERE id = $1`,
		id, status.String(), paymentStatus.String(), transactionID, failureReason,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return nil
}
