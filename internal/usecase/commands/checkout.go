package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"order-checkout/internal/domain/order"
	"order-checkout/internal/pkg/clock"
	"order-checkout/internal/pkg/errs"
	"order-checkout/internal/pkg/metrics"
	"order-checkout/internal/usecase/queries"

	"github.com/google/uuid"
)

const (
	checkoutEndpoint  = "POST /api/checkout"
	idempotencyKeyTTL = 24 * time.Hour

	idempotencyStatusCompleted  = "completed"
	idempotencyStatusProcessing = "processing"
)

// Failure reasons surfaced on a terminal order representation. The checkout
// response always carries the order; these explain why it is not COMPLETED.
const (
	FailureInsufficientStock  = "INSUFFICIENT_STOCK"
	FailurePaymentDenied      = "PAYMENT_DENIED"
	FailurePaymentUnreachable = "PAYMENT_UNREACHABLE"
)

type CheckoutInput struct {
	UserID        uuid.UUID
	Items         []order.Line
	PaymentMethod string
}

type CheckoutResult struct {
	Order         *queries.OrderView
	IsReplayed    bool
	FailureReason string
}

type CheckoutCommands interface {
	Checkout(ctx context.Context, input CheckoutInput, idempotencyKey uuid.UUID) (*CheckoutResult, error)
}

type checkoutCommandsImpl struct {
	inventory   InventoryCommands
	orderRepo   OrderRepository
	idemRepo    IdempotencyRepository
	orderReader queries.OrderQueries
	payment     PaymentGateway
	cart        CartGateway
	factory     *order.Factory
	clock       clock.Clock
	metrics     *metrics.Metrics
}

func NewCheckoutCommands(
	inventory InventoryCommands,
	orderRepo OrderRepository,
	idemRepo IdempotencyRepository,
	orderReader queries.OrderQueries,
	payment PaymentGateway,
	cart CartGateway,
	factory *order.Factory,
	clk clock.Clock,
	m *metrics.Metrics,
) CheckoutCommands {
	return &checkoutCommandsImpl{
		inventory:   inventory,
		orderRepo:   orderRepo,
		idemRepo:    idemRepo,
		orderReader: orderReader,
		payment:     payment,
		cart:        cart,
		factory:     factory,
		clock:       clk,
		metrics:     m,
	}
}

// Checkout drives one checkout attempt end to end: claim the idempotency key,
// resolve line items, create the PENDING order, reserve stock, charge, then
// settle into exactly one terminal state. Reservations are the only step with
// a compensation (release); they are compensated on every deterministic
// failure and deliberately kept when the payment outcome is unknown.
func (s *checkoutCommandsImpl) Checkout(ctx context.Context, input CheckoutInput, idempotencyKey uuid.UUID) (*CheckoutResult, error) {
	if idempotencyKey == uuid.Nil {
		return nil, errs.ErrIdempotencyKeyRequired
	}

	requestHash := hashCheckoutRequest(input)
	claimed, err := s.idemRepo.TryInsert(
		ctx, idempotencyKey, input.UserID, checkoutEndpoint, requestHash,
		s.clock.Now().Add(idempotencyKeyTTL),
	)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrIdempotencyCheckFailed)
	}
	if !claimed {
		return s.replay(ctx, idempotencyKey, input.UserID, requestHash)
	}

	items, err := s.resolveItems(ctx, input)
	if err != nil {
		return nil, err
	}

	o, err := s.factory.NewPendingOrder(input.UserID, items)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}
	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	result, err := s.runSaga(ctx, o, input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	if err := s.idemRepo.UpdateStatusCompleted(ctx, idempotencyKey, input.UserID, o.ID()); err != nil {
		// The order is settled; failing to mark the key only costs a
		// duplicate 409 on retry, so log and return the result.
		slog.Error("failed to complete idempotency key",
			"key", idempotencyKey,
			"order_id", o.ID(),
			"error", err.Error(),
		)
	}

	s.metrics.CheckoutsTotal.WithLabelValues(result.Order.Status).Inc()
	return result, nil
}

// replay resolves a lost idempotency claim: a completed key returns the
// recorded order, a still-processing key rejects the concurrent attempt, and
// a hash mismatch rejects key reuse across different payloads.
func (s *checkoutCommandsImpl) replay(ctx context.Context, key, userID uuid.UUID, requestHash string) (*CheckoutResult, error) {
	view, err := s.idemRepo.Get(ctx, key, userID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrIdempotencyCheckFailed)
	}

	if view.RequestHash != requestHash {
		return nil, errs.ErrDuplicateCheckout
	}

	switch view.Status {
	case idempotencyStatusCompleted:
		if view.ResultOrderID == nil {
			return nil, errs.Newf("completed idempotency key %s has no order", key)
		}
		orderView, err := s.orderReader.GetByIDSystem(ctx, *view.ResultOrderID)
		if err != nil {
			return nil, err
		}
		result := &CheckoutResult{Order: orderView, IsReplayed: true}
		if orderView.FailureReason != nil {
			result.FailureReason = *orderView.FailureReason
		}
		return result, nil
	case idempotencyStatusProcessing:
		return nil, errs.ErrIdempotencyInProgress
	default:
		return nil, errs.Newf("idempotency key %s in unexpected status %q", key, view.Status)
	}
}

// resolveItems returns the order lines, preferring the explicit request items
// and falling back to the user's cart snapshot when none were sent.
func (s *checkoutCommandsImpl) resolveItems(ctx context.Context, input CheckoutInput) ([]order.Line, error) {
	if len(input.Items) > 0 {
		return input.Items, nil
	}

	cartLines, err := s.cart.Fetch(ctx, input.UserID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrCartUnavailable)
	}
	if len(cartLines) == 0 {
		return nil, errs.Mark(order.ErrNoItems, errs.ErrDomainValidation)
	}

	items := make([]order.Line, 0, len(cartLines))
	for _, line := range cartLines {
		items = append(items, order.Line{
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		})
	}
	return items, nil
}

// runSaga executes reserve -> charge -> deduct for an already-persisted
// PENDING order and settles it into COMPLETED, FAILED or INCOMPLETE.
func (s *checkoutCommandsImpl) runSaga(ctx context.Context, o *order.Order, paymentMethod string) (*CheckoutResult, error) {
	reserved, err := s.reserveAll(ctx, o)
	if err != nil {
		s.releaseAll(ctx, o.ID(), reserved)
		if errors.Is(err, errs.ErrInsufficientStock) {
			return s.settle(ctx, o, failOrder, FailureInsufficientStock)
		}
		// Unknown product or infrastructure failure: surface the error
		// rather than a terminal order representation.
		s.failBestEffort(ctx, o)
		return nil, err
	}

	charge, err := s.payment.Charge(ctx, ChargeRequest{
		OrderID:       o.ID(),
		UserID:        o.UserID(),
		AmountCents:   o.TotalCents(),
		PaymentMethod: paymentMethod,
	})
	if err != nil {
		// Outcome unknown: keep every reservation held so reconciliation
		// can settle the order once the gateway answers.
		s.metrics.PaymentRequestsTotal.WithLabelValues("unreachable").Inc()
		slog.Warn("payment gateway unreachable, order left incomplete",
			"order_id", o.ID(),
			"error", err.Error(),
		)
		return s.settle(ctx, o, incompleteOrder, FailurePaymentUnreachable)
	}

	if charge.Status == ChargeFailed {
		s.metrics.PaymentRequestsTotal.WithLabelValues("denied").Inc()
		s.releaseAll(ctx, o.ID(), reserved)
		return s.settle(ctx, o, failOrder, FailurePaymentDenied)
	}

	s.metrics.PaymentRequestsTotal.WithLabelValues("success").Inc()
	s.deductAll(ctx, o)

	// The cart snapshot is cleared on every successful checkout, whether the
	// lines came from the request or from the cart; best-effort only.
	if err := s.cart.Clear(ctx, o.UserID()); err != nil {
		slog.Warn("failed to clear cart after checkout", "user_id", o.UserID(), "error", err.Error())
	}

	return s.settle(ctx, o, func(ord *order.Order) error {
		return ord.MarkCompleted(charge.TransactionID)
	}, "")
}

// reserveAll reserves stock line by line and returns the lines that were
// actually reserved, so the caller can compensate exactly those on failure.
func (s *checkoutCommandsImpl) reserveAll(ctx context.Context, o *order.Order) ([]order.Line, error) {
	reserved := make([]order.Line, 0, len(o.Items()))
	for _, item := range o.Items() {
		if _, err := s.inventory.Reserve(ctx, item.ProductID, item.Quantity, o.ID()); err != nil {
			return reserved, err
		}
		reserved = append(reserved, item)
	}
	return reserved, nil
}

// releaseAll compensates prior reservations. Failures are logged, not
// returned: compensation runs on a path that already decided the outcome.
func (s *checkoutCommandsImpl) releaseAll(ctx context.Context, orderID uuid.UUID, reserved []order.Line) {
	for _, item := range reserved {
		if _, err := s.inventory.Release(ctx, item.ProductID, item.Quantity, orderID); err != nil {
			s.metrics.PostCommitInconsistency.Inc()
			slog.Error("failed to release reservation during compensation",
				"order_id", orderID,
				"product_id", item.ProductID,
				"quantity", item.Quantity,
				"error", err.Error(),
			)
		}
	}
}

// deductAll converts the order's reservations into deductions after a
// successful charge. The charge already settled, so a failing deduct cannot
// fail the checkout; it is recorded as a post-commit inconsistency.
func (s *checkoutCommandsImpl) deductAll(ctx context.Context, o *order.Order) {
	for _, item := range o.Items() {
		if _, err := s.inventory.Deduct(ctx, item.ProductID, item.Quantity, o.ID()); err != nil {
			s.metrics.PostCommitInconsistency.Inc()
			slog.Error("failed to deduct reserved stock after successful charge",
				"order_id", o.ID(),
				"product_id", item.ProductID,
				"quantity", item.Quantity,
				"error", err.Error(),
			)
		}
	}
}

func failOrder(o *order.Order) error       { return o.MarkFailed() }
func incompleteOrder(o *order.Order) error { return o.MarkIncomplete() }

// settle applies the terminal transition, persists it and loads the read
// model the handler returns.
func (s *checkoutCommandsImpl) settle(
	ctx context.Context,
	o *order.Order,
	transition func(*order.Order) error,
	failureReason string,
) (*CheckoutResult, error) {
	if err := transition(o); err != nil {
		return nil, errs.Wrap(err, "invalid order state transition")
	}
	var reason *string
	if failureReason != "" {
		reason = &failureReason
	}
	if err := s.orderRepo.UpdateStatus(ctx, o.ID(), o.Status(), o.PaymentStatus(), o.TransactionID(), reason); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	view, err := s.orderReader.GetByIDSystem(ctx, o.ID())
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{Order: view, FailureReason: failureReason}, nil
}

// failBestEffort marks the order FAILED on paths that return an error to the
// caller, so no PENDING row is left behind.
func (s *checkoutCommandsImpl) failBestEffort(ctx context.Context, o *order.Order) {
	if err := o.MarkFailed(); err != nil {
		return
	}
	if err := s.orderRepo.UpdateStatus(ctx, o.ID(), o.Status(), o.PaymentStatus(), nil, nil); err != nil {
		slog.Error("failed to mark order failed", "order_id", o.ID(), "error", err.Error())
	}
}

// hashCheckoutRequest produces a stable digest of the request payload so key
// reuse with a different payload can be rejected. Items are sorted to make
// the digest order-insensitive.
func hashCheckoutRequest(input CheckoutInput) string {
	lines := make([]string, 0, len(input.Items))
	for _, item := range input.Items {
		lines = append(lines, fmt.Sprintf("%s:%d:%d", item.ProductID, item.Quantity, item.UnitPriceCents))
	}
	sort.Strings(lines)

	h := sha256.New()
	h.Write([]byte(input.UserID.String()))
	h.Write([]byte(input.PaymentMethod))
	h.Write([]byte(strings.Join(lines, "|")))
	return hex.EncodeToString(h.Sum(nil))
}
