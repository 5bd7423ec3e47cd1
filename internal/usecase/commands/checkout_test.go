//go:build unit

package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"order-checkout/internal/domain/order"
	"order-checkout/internal/infra"
	"order-checkout/internal/pkg/clock"
	"order-checkout/internal/pkg/errs"
	"order-checkout/internal/pkg/metrics"
	"order-checkout/internal/usecase/commands"
	"order-checkout/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storedOrder struct {
	userID        uuid.UUID
	items         []order.Line
	totalCents    int64
	status        order.Status
	paymentStatus order.PaymentStatus
	transactionID *string
	failureReason *string
	createdAt     time.Time
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*storedOrder
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*storedOrder)}
}

func (f *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID()] = &storedOrder{
		userID:        o.UserID(),
		items:         o.Items(),
		totalCents:    o.TotalCents(),
		status:        o.Status(),
		paymentStatus: o.PaymentStatus(),
		createdAt:     o.CreatedAt(),
	}
	return nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status order.Status, paymentStatus order.PaymentStatus, transactionID, failureReason *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.orders[id]
	if !ok {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	stored.status = status
	stored.paymentStatus = paymentStatus
	stored.transactionID = transactionID
	stored.failureReason = failureReason
	return nil
}

func (f *fakeOrderRepo) get(id uuid.UUID) (*storedOrder, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.orders[id]
	return stored, ok
}

func (f *fakeOrderRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

// fakeOrderReader serves the read side from the write fake's state.
type fakeOrderReader struct {
	repo *fakeOrderRepo
}

func (f *fakeOrderReader) GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*queries.OrderView, error) {
	view, err := f.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.UserID != actor {
		return nil, errs.ErrOrderNotFound
	}
	return view, nil
}

func (f *fakeOrderReader) GetByIDSystem(_ context.Context, id uuid.UUID) (*queries.OrderView, error) {
	stored, ok := f.repo.get(id)
	if !ok {
		return nil, errs.ErrOrderNotFound
	}
	items := make([]queries.OrderItemView, len(stored.items))
	for i, item := range stored.items {
		items[i] = queries.OrderItemView{ProductID: item.ProductID, Quantity: item.Quantity, UnitPriceCents: item.UnitPriceCents}
	}
	return &queries.OrderView{
		ID:               id,
		UserID:           stored.userID,
		Items:            items,
		TotalAmountCents: stored.totalCents,
		Status:           stored.status.String(),
		PaymentStatus:    stored.paymentStatus.String(),
		TransactionID:    stored.transactionID,
		FailureReason:    stored.failureReason,
		CreatedAt:        stored.createdAt,
	}, nil
}

func (f *fakeOrderReader) ListByUser(_ context.Context, _ uuid.UUID, _ int) ([]*queries.OrderListItem, error) {
	return nil, nil
}

type fakeIdemRepo struct {
	mu   sync.Mutex
	keys map[uuid.UUID]*queries.IdempotencyKeyView
}

func newFakeIdemRepo() *fakeIdemRepo {
	return &fakeIdemRepo{keys: make(map[uuid.UUID]*queries.IdempotencyKeyView)}
}

func (f *fakeIdemRepo) TryInsert(_ context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.keys[key]; ok {
		return false, nil
	}
	f.keys[key] = &queries.IdempotencyKeyView{
		Key:         key,
		UserID:      userID,
		Endpoint:    endpoint,
		RequestHash: requestHash,
		Status:      "processing",
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now(),
	}
	return true, nil
}

func (f *fakeIdemRepo) Get(_ context.Context, key, _ uuid.UUID) (*queries.IdempotencyKeyView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	view, ok := f.keys[key]
	if !ok {
		return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	copied := *view
	return &copied, nil
}

func (f *fakeIdemRepo) UpdateStatusCompleted(_ context.Context, key, _ uuid.UUID, resultOrderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	view, ok := f.keys[key]
	if !ok {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	view.Status = "completed"
	view.ResultOrderID = &resultOrderID
	return nil
}

func (f *fakeIdemRepo) DeleteExpired(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for key, view := range f.keys {
		if view.ExpiresAt.Before(time.Now()) {
			delete(f.keys, key)
			removed++
		}
	}
	return removed, nil
}

type fakePaymentGateway struct {
	mu      sync.Mutex
	result  *commands.ChargeResult
	err     error
	charges []commands.ChargeRequest
}

func (f *fakePaymentGateway) Charge(_ context.Context, req commands.ChargeRequest) (*commands.ChargeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.charges = append(f.charges, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakePaymentGateway) chargeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.charges)
}

type fakeCartGateway struct {
	lines    []commands.CartLine
	fetchErr error
	fetched  bool
	cleared  bool
}

func (f *fakeCartGateway) Fetch(_ context.Context, _ uuid.UUID) ([]commands.CartLine, error) {
	f.fetched = true
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.lines, nil
}

func (f *fakeCartGateway) Clear(_ context.Context, _ uuid.UUID) error {
	f.cleared = true
	return nil
}

type checkoutFixture struct {
	svc       commands.CheckoutCommands
	inventory *fakeInventoryRepo
	orders    *fakeOrderRepo
	idem      *fakeIdemRepo
	payment   *fakePaymentGateway
	cart      *fakeCartGateway
}

func newCheckoutFixture() *checkoutFixture {
	invRepo := newFakeInventoryRepo()
	orderRepo := newFakeOrderRepo()
	idemRepo := newFakeIdemRepo()
	payment := &fakePaymentGateway{result: &commands.ChargeResult{TransactionID: "txn-1", Status: commands.ChargeSuccess}}
	cart := &fakeCartGateway{}
	m := metrics.NewNop()
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := commands.NewCheckoutCommands(
		commands.NewInventoryCommands(invRepo, m),
		orderRepo,
		idemRepo,
		&fakeOrderReader{repo: orderRepo},
		payment,
		cart,
		order.NewFactory(clk),
		clk,
		m,
	)

	return &checkoutFixture{
		svc:       svc,
		inventory: invRepo,
		orders:    orderRepo,
		idem:      idemRepo,
		payment:   payment,
		cart:      cart,
	}
}

func (f *checkoutFixture) stock(t *testing.T, productID uuid.UUID) (available, reserved int64) {
	t.Helper()
	rec, err := f.inventory.FindByProductID(context.Background(), productID)
	require.NoError(t, err)
	return rec.Available(), rec.Reserved()
}

func checkoutInput(userID uuid.UUID, items ...order.Line) commands.CheckoutInput {
	return commands.CheckoutInput{UserID: userID, Items: items, PaymentMethod: "card"}
}

func TestCheckoutSuccess(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()

	userID := uuid.New()
	productA, productB := uuid.New(), uuid.New()
	f.inventory.seed(productA, 10, 0)
	f.inventory.seed(productB, 5, 0)

	input := checkoutInput(userID,
		order.Line{ProductID: productA, Quantity: 2, UnitPriceCents: 1000},
		order.Line{ProductID: productB, Quantity: 1, UnitPriceCents: 2500},
	)

	result, err := f.svc.Checkout(ctx, input, uuid.New())
	require.NoError(t, err)
	require.NotNil(t, result.Order)

	assert.Equal(t, order.StatusCompleted.String(), result.Order.Status)
	assert.Equal(t, order.PaymentSuccess.String(), result.Order.PaymentStatus)
	require.NotNil(t, result.Order.TransactionID)
	assert.Equal(t, "txn-1", *result.Order.TransactionID)
	assert.Equal(t, int64(4500), result.Order.TotalAmountCents)
	assert.False(t, result.IsReplayed)
	assert.Empty(t, result.FailureReason)

	// Reservations were deducted, not returned
	availA, reservedA := f.stock(t, productA)
	assert.Equal(t, int64(8), availA)
	assert.Equal(t, int64(0), reservedA)
	availB, reservedB := f.stock(t, productB)
	assert.Equal(t, int64(4), availB)
	assert.Equal(t, int64(0), reservedB)

	// Explicit items skip the cart read, but the snapshot is still cleared
	// after every successful checkout
	assert.False(t, f.cart.fetched)
	assert.True(t, f.cart.cleared)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()

	userID := uuid.New()
	productA, productB := uuid.New(), uuid.New()
	f.inventory.seed(productA, 10, 0)
	f.inventory.seed(productB, 1, 0)

	input := checkoutInput(userID,
		order.Line{ProductID: productA, Quantity: 2, UnitPriceCents: 1000},
		order.Line{ProductID: productB, Quantity: 5, UnitPriceCents: 500},
	)

	result, err := f.svc.Checkout(ctx, input, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, order.StatusFailed.String(), result.Order.Status)
	assert.Equal(t, order.PaymentFailed.String(), result.Order.PaymentStatus)
	assert.Equal(t, commands.FailureInsufficientStock, result.FailureReason)

	// The first product's reservation was compensated
	availA, reservedA := f.stock(t, productA)
	assert.Equal(t, int64(10), availA)
	assert.Equal(t, int64(0), reservedA)

	// Payment was never attempted
	assert.Equal(t, 0, f.payment.chargeCount())
}

func TestCheckoutPaymentDenied(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	f.payment.result = &commands.ChargeResult{Status: commands.ChargeFailed}

	userID := uuid.New()
	productID := uuid.New()
	f.inventory.seed(productID, 10, 0)

	input := checkoutInput(userID, order.Line{ProductID: productID, Quantity: 3, UnitPriceCents: 100})

	result, err := f.svc.Checkout(ctx, input, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, order.StatusFailed.String(), result.Order.Status)
	assert.Equal(t, order.PaymentFailed.String(), result.Order.PaymentStatus)
	assert.Equal(t, commands.FailurePaymentDenied, result.FailureReason)
	assert.Nil(t, result.Order.TransactionID)

	// Denied is deterministic: reservations are released
	avail, reserved := f.stock(t, productID)
	assert.Equal(t, int64(10), avail)
	assert.Equal(t, int64(0), reserved)

	// The cart is only cleared on success
	assert.False(t, f.cart.cleared)
}

func TestCheckoutPaymentUnreachable(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	f.payment.err = errs.Mark(errors.New("connection refused"), errs.ErrPaymentUnreachable)

	userID := uuid.New()
	productID := uuid.New()
	f.inventory.seed(productID, 10, 0)

	input := checkoutInput(userID, order.Line{ProductID: productID, Quantity: 3, UnitPriceCents: 100})

	result, err := f.svc.Checkout(ctx, input, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, order.StatusIncomplete.String(), result.Order.Status)
	assert.Equal(t, order.PaymentPending.String(), result.Order.PaymentStatus)
	assert.Equal(t, commands.FailurePaymentUnreachable, result.FailureReason)

	// Outcome unknown: reservations stay held for reconciliation
	avail, reserved := f.stock(t, productID)
	assert.Equal(t, int64(7), avail)
	assert.Equal(t, int64(3), reserved)
}

func TestCheckoutIdempotency(t *testing.T) {
	ctx := context.Background()

	t.Run("same key replays the recorded order", func(t *testing.T) {
		f := newCheckoutFixture()
		userID := uuid.New()
		productID := uuid.New()
		f.inventory.seed(productID, 10, 0)
		key := uuid.New()

		input := checkoutInput(userID, order.Line{ProductID: productID, Quantity: 1, UnitPriceCents: 100})

		first, err := f.svc.Checkout(ctx, input, key)
		require.NoError(t, err)

		second, err := f.svc.Checkout(ctx, input, key)
		require.NoError(t, err)

		assert.True(t, second.IsReplayed)
		assert.Equal(t, first.Order.ID, second.Order.ID)
		assert.Equal(t, 1, f.orders.count())
		assert.Equal(t, 1, f.payment.chargeCount())

		// Stock moved exactly once
		avail, reserved := f.stock(t, productID)
		assert.Equal(t, int64(9), avail)
		assert.Equal(t, int64(0), reserved)
	})

	t.Run("key reuse with a different payload is rejected", func(t *testing.T) {
		f := newCheckoutFixture()
		userID := uuid.New()
		productID := uuid.New()
		f.inventory.seed(productID, 10, 0)
		key := uuid.New()

		_, err := f.svc.Checkout(ctx, checkoutInput(userID, order.Line{ProductID: productID, Quantity: 1, UnitPriceCents: 100}), key)
		require.NoError(t, err)

		_, err = f.svc.Checkout(ctx, checkoutInput(userID, order.Line{ProductID: productID, Quantity: 2, UnitPriceCents: 100}), key)
		assert.ErrorIs(t, err, errs.ErrDuplicateCheckout)
	})

	t.Run("concurrent attempt sees in-progress conflict", func(t *testing.T) {
		f := newCheckoutFixture()
		userID := uuid.New()
		productID := uuid.New()
		f.inventory.seed(productID, 10, 0)
		key := uuid.New()

		input := checkoutInput(userID, order.Line{ProductID: productID, Quantity: 1, UnitPriceCents: 100})

		// Claim the key as another in-flight request would
		claimed, err := f.idem.TryInsert(ctx, key, userID, "POST /api/checkout", "", time.Now().Add(time.Hour))
		require.NoError(t, err)
		require.True(t, claimed)
		f.idem.keys[key].RequestHash = hashOf(t, input)

		_, err = f.svc.Checkout(ctx, input, key)
		assert.ErrorIs(t, err, errs.ErrIdempotencyInProgress)
	})

	t.Run("missing key is rejected", func(t *testing.T) {
		f := newCheckoutFixture()
		_, err := f.svc.Checkout(ctx, checkoutInput(uuid.New()), uuid.Nil)
		assert.ErrorIs(t, err, errs.ErrIdempotencyKeyRequired)
	})
}

// hashOf recovers the request digest by running a throwaway checkout with the
// same payload and reading back what was stored.
func hashOf(t *testing.T, input commands.CheckoutInput) string {
	t.Helper()
	scratch := newCheckoutFixture()
	for _, item := range input.Items {
		scratch.inventory.seed(item.ProductID, 1000, 0)
	}
	key := uuid.New()
	_, err := scratch.svc.Checkout(context.Background(), input, key)
	require.NoError(t, err)
	return scratch.idem.keys[key].RequestHash
}

func TestCheckoutFromCart(t *testing.T) {
	ctx := context.Background()

	t.Run("empty items fall back to the cart snapshot", func(t *testing.T) {
		f := newCheckoutFixture()
		userID := uuid.New()
		productID := uuid.New()
		f.inventory.seed(productID, 10, 0)
		f.cart.lines = []commands.CartLine{{ProductID: productID, Quantity: 2, UnitPriceCents: 750}}

		result, err := f.svc.Checkout(ctx, checkoutInput(userID), uuid.New())
		require.NoError(t, err)

		assert.Equal(t, order.StatusCompleted.String(), result.Order.Status)
		assert.Equal(t, int64(1500), result.Order.TotalAmountCents)
		assert.True(t, f.cart.fetched)
		assert.True(t, f.cart.cleared)
	})

	t.Run("unreachable cart fails the request", func(t *testing.T) {
		f := newCheckoutFixture()
		f.cart.fetchErr = errors.New("cart down")

		_, err := f.svc.Checkout(ctx, checkoutInput(uuid.New()), uuid.New())
		assert.ErrorIs(t, err, errs.ErrCartUnavailable)
	})

	t.Run("empty cart is a validation error", func(t *testing.T) {
		f := newCheckoutFixture()
		f.cart.lines = nil

		_, err := f.svc.Checkout(ctx, checkoutInput(uuid.New()), uuid.New())
		assert.ErrorIs(t, err, errs.ErrDomainValidation)
	})
}

func TestCheckoutUnknownProduct(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()

	userID := uuid.New()
	known, unknown := uuid.New(), uuid.New()
	f.inventory.seed(known, 10, 0)

	input := checkoutInput(userID,
		order.Line{ProductID: known, Quantity: 1, UnitPriceCents: 100},
		order.Line{ProductID: unknown, Quantity: 1, UnitPriceCents: 100},
	)

	_, err := f.svc.Checkout(ctx, input, uuid.New())
	assert.ErrorIs(t, err, errs.ErrProductNotFound)

	// Compensation restored the known product's stock
	avail, reserved := f.stock(t, known)
	assert.Equal(t, int64(10), avail)
	assert.Equal(t, int64(0), reserved)

	// No pending order left behind
	for id := range f.orders.orders {
		stored, _ := f.orders.get(id)
		assert.True(t, stored.status.IsTerminal())
	}
}
