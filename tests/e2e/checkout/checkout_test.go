//go:build e2e

package checkout_test

import (
	"net/http"
	"testing"

	"order-checkout/internal/domain/order"
	"order-checkout/internal/handler/dto/response"
	"order-checkout/internal/pkg/jwt"
	"order-checkout/tests/common/httptest"
	"order-checkout/tests/e2e"
	"order-checkout/tests/e2e/common/helper"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	checkoutURL  = "/api/checkout"
	inventoryURL = "/api/inventory"
)

type CheckoutSuite struct {
	e2e.SharedSuite
}

func (s *CheckoutSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestCheckoutSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(CheckoutSuite))
}

func (s *CheckoutSuite) adminToken(t *testing.T) string {
	return helper.NewJWTTestHelper(s.Config.JWT).GenerateToken(t, uuid.New(), jwt.RoleAdmin)
}

func (s *CheckoutSuite) buyerToken(t *testing.T, userID uuid.UUID) string {
	return helper.NewJWTTestHelper(s.Config.JWT).GenerateToken(t, userID, jwt.RoleBuyer)
}

func (s *CheckoutSuite) provision(t *testing.T, productID uuid.UUID, stock int64) {
	body := map[string]any{"productId": productID, "initialStock": stock}
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, inventoryURL, body, s.adminToken(t))
	require.Equal(t, http.StatusCreated, w.Code, "failed to provision inventory: %s", w.Body.String())
}

func (s *CheckoutSuite) inventoryOf(t *testing.T, productID uuid.UUID) response.InventoryResponse {
	w := httptest.PerformRequest(t, s.Router, http.MethodGet, inventoryURL+"/"+productID.String(), nil, s.adminToken(t))
	require.Equal(t, http.StatusOK, w.Code)

	var resp response.InventoryResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &resp))
	return resp
}

func checkoutBody(productID uuid.UUID, quantity, unitPrice int64) map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"productId": productID, "quantity": quantity, "unitPriceCents": unitPrice},
		},
		"paymentMethod": "card",
	}
}

func idempotencyHeader() map[string]string {
	return map[string]string{"Idempotency-Key": uuid.New().String()}
}

// =============================================================================
// TestCheckout - end-to-end checkout pipeline against real Postgres
// =============================================================================

func (s *CheckoutSuite) TestCheckout() {
	s.Run("Normal case: successful checkout completes the order and deducts stock", func() {
		t := s.T()

		productID := uuid.New()
		s.provision(t, productID, 10)

		userID := uuid.New()
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, checkoutURL,
			checkoutBody(productID, 3, 1500), s.buyerToken(t, userID), idempotencyHeader())
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp response.CheckoutResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &resp))
		require.Equal(t, order.StatusCompleted.String(), resp.Order.Status)
		require.Equal(t, order.PaymentSuccess.String(), resp.Order.PaymentStatus)
		require.NotNil(t, resp.Order.TransactionID)
		require.Equal(t, int64(4500), resp.Order.TotalAmountCents)
		require.False(t, resp.IsReplayed)

		inv := s.inventoryOf(t, productID)
		require.Equal(t, int64(7), inv.AvailableStock)
		require.Equal(t, int64(0), inv.ReservedStock)

		// Explicit request items still clear the cart snapshot
		require.Equal(t, 1, s.Cart.Cleared())
	})

	s.Run("Normal case: replaying the same key returns the same order without recharging", func() {
		t := s.T()

		productID := uuid.New()
		s.provision(t, productID, 10)

		userID := uuid.New()
		token := s.buyerToken(t, userID)
		body := checkoutBody(productID, 2, 1000)
		headers := idempotencyHeader()

		first := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, checkoutURL, body, token, headers)
		require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
		var firstResp response.CheckoutResponse
		require.NoError(t, httptest.DecodeResponseBody(t, first.Body, &firstResp))

		second := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, checkoutURL, body, token, headers)
		require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
		var secondResp response.CheckoutResponse
		require.NoError(t, httptest.DecodeResponseBody(t, second.Body, &secondResp))

		require.Equal(t, firstResp.Order.ID, secondResp.Order.ID)
		require.True(t, secondResp.IsReplayed)
		require.Equal(t, int64(1), s.Payment.Charges(), "replay must not charge again")

		inv := s.inventoryOf(t, productID)
		require.Equal(t, int64(8), inv.AvailableStock, "stock must move only once")
	})

	s.Run("Error case: same key with a different payload is rejected", func() {
		t := s.T()

		productID := uuid.New()
		s.provision(t, productID, 10)

		userID := uuid.New()
		token := s.buyerToken(t, userID)
		headers := idempotencyHeader()

		first := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, checkoutURL,
			checkoutBody(productID, 2, 1000), token, headers)
		require.Equal(t, http.StatusCreated, first.Code)

		second := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, checkoutURL,
			checkoutBody(productID, 5, 1000), token, headers)
		require.Equal(t, http.StatusConflict, second.Code)
	})

	s.Run("Error case: insufficient stock fails the order and keeps the ledger intact", func() {
		t := s.T()

		productID := uuid.New()
		s.provision(t, productID, 2)

		userID := uuid.New()
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, checkoutURL,
			checkoutBody(productID, 5, 1000), s.buyerToken(t, userID), idempotencyHeader())
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp response.CheckoutResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &resp))
		require.Equal(t, order.StatusFailed.String(), resp.Order.Status)
		require.NotNil(t, resp.Order.FailureReason)
		require.Equal(t, "INSUFFICIENT_STOCK", *resp.Order.FailureReason)
		require.Equal(t, int64(0), s.Payment.Charges(), "no charge without reservations")

		inv := s.inventoryOf(t, productID)
		require.Equal(t, int64(2), inv.AvailableStock)
		require.Equal(t, int64(0), inv.ReservedStock)
	})

	s.Run("Error case: denied payment releases reservations", func() {
		t := s.T()

		s.Payment.SetMode(e2e.PaymentModeDenied)

		productID := uuid.New()
		s.provision(t, productID, 10)

		userID := uuid.New()
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, checkoutURL,
			checkoutBody(productID, 4, 1000), s.buyerToken(t, userID), idempotencyHeader())
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp response.CheckoutResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &resp))
		require.Equal(t, order.StatusFailed.String(), resp.Order.Status)
		require.Equal(t, order.PaymentFailed.String(), resp.Order.PaymentStatus)
		require.NotNil(t, resp.Order.FailureReason)
		require.Equal(t, "PAYMENT_DENIED", *resp.Order.FailureReason)

		inv := s.inventoryOf(t, productID)
		require.Equal(t, int64(10), inv.AvailableStock)
		require.Equal(t, int64(0), inv.ReservedStock)
	})

	s.Run("Error case: unreachable gateway leaves the order incomplete with reservations held", func() {
		t := s.T()

		s.Payment.SetMode(e2e.PaymentModeUnreachable)

		productID := uuid.New()
		s.provision(t, productID, 10)

		userID := uuid.New()
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, checkoutURL,
			checkoutBody(productID, 4, 1000), s.buyerToken(t, userID), idempotencyHeader())
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp response.CheckoutResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &resp))
		require.Equal(t, order.StatusIncomplete.String(), resp.Order.Status)
		require.NotNil(t, resp.Order.FailureReason)
		require.Equal(t, "PAYMENT_UNREACHABLE", *resp.Order.FailureReason)

		// Reservations stay put for later reconciliation
		inv := s.inventoryOf(t, productID)
		require.Equal(t, int64(6), inv.AvailableStock)
		require.Equal(t, int64(4), inv.ReservedStock)
	})

	s.Run("Normal case: empty items fall back to the cart service and clear it", func() {
		t := s.T()

		productID := uuid.New()
		s.provision(t, productID, 10)

		s.Cart.SetItems([]e2e.CartStubItem{
			{ProductID: productID, Quantity: 2, UnitPrice: 2500},
		})

		userID := uuid.New()
		body := map[string]any{"paymentMethod": "card"}
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, checkoutURL,
			body, s.buyerToken(t, userID), idempotencyHeader())
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp response.CheckoutResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &resp))
		require.Equal(t, order.StatusCompleted.String(), resp.Order.Status)
		require.Equal(t, int64(5000), resp.Order.TotalAmountCents)
		require.Equal(t, 1, s.Cart.Cleared(), "cart must be cleared after a completed order")
	})

	s.Run("Error case: cart outage returns 503 before any order is created", func() {
		t := s.T()

		s.Cart.SetDown(true)

		userID := uuid.New()
		body := map[string]any{"paymentMethod": "card"}
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, checkoutURL,
			body, s.buyerToken(t, userID), idempotencyHeader())
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	s.Run("Error case: missing idempotency key returns 400", func() {
		t := s.T()

		productID := uuid.New()
		s.provision(t, productID, 10)

		userID := uuid.New()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, checkoutURL,
			checkoutBody(productID, 1, 1000), s.buyerToken(t, userID))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	s.Run("Error case: unknown product returns 404", func() {
		t := s.T()

		userID := uuid.New()
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, checkoutURL,
			checkoutBody(uuid.New(), 1, 1000), s.buyerToken(t, userID), idempotencyHeader())
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	s.Run("Error case: expired token is rejected", func() {
		t := s.T()

		token := helper.NewJWTTestHelper(s.Config.JWT).CreateExpiredToken(t, uuid.New(), jwt.RoleBuyer)
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, checkoutURL,
			checkoutBody(uuid.New(), 1, 1000), token)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// =============================================================================
// TestOrderRead - order retrieval after checkout
// =============================================================================

func (s *CheckoutSuite) TestOrderRead() {
	s.Run("Normal case: owner can fetch and list the created order", func() {
		t := s.T()

		productID := uuid.New()
		s.provision(t, productID, 10)

		userID := uuid.New()
		token := s.buyerToken(t, userID)

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, checkoutURL,
			checkoutBody(productID, 1, 1000), token, idempotencyHeader())
		require.Equal(t, http.StatusCreated, w.Code)
		var created response.CheckoutResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &created))

		get := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/orders/"+created.Order.ID.String(), nil, token)
		require.Equal(t, http.StatusOK, get.Code)

		list := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/orders", nil, token)
		require.Equal(t, http.StatusOK, list.Code)
		var items []response.OrderListResponse
		require.NoError(t, httptest.DecodeResponseBody(t, list.Body, &items))
		require.Len(t, items, 1)
		require.Equal(t, created.Order.ID, items[0].ID)
	})

	s.Run("Error case: another user's order is not visible", func() {
		t := s.T()

		productID := uuid.New()
		s.provision(t, productID, 10)

		owner := uuid.New()
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, checkoutURL,
			checkoutBody(productID, 1, 1000), s.buyerToken(t, owner), idempotencyHeader())
		require.Equal(t, http.StatusCreated, w.Code)
		var created response.CheckoutResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &created))

		other := s.buyerToken(t, uuid.New())
		get := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/orders/"+created.Order.ID.String(), nil, other)
		require.Equal(t, http.StatusNotFound, get.Code)
	})
}
