package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"order-checkout/internal/pkg/config"
	"order-checkout/internal/pkg/errs"
	"order-checkout/internal/usecase/commands"

	"github.com/google/uuid"
)

// CartClient reads and clears the customer's cart snapshot in the cart
// service (GET /cart, DELETE /cart/clear).
type CartClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCartClient(cfg config.CartConfig) *CartClient {
	return &CartClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type cartResponseBody struct {
	UserID uuid.UUID `json:"userId"`
	Items  []struct {
		ProductID uuid.UUID `json:"productId"`
		Quantity  int64     `json:"quantity"`
		UnitPrice int64     `json:"unitPrice"`
	} `json:"items"`
}

func (c *CartClient) Fetch(ctx context.Context, userID uuid.UUID) ([]commands.CartLine, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cart?userId="+userID.String(), nil)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build cart request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "cart service request failed"), errs.ErrCartUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.Mark(
			errs.Newf("cart service returned status %d", resp.StatusCode),
			errs.ErrCartUnavailable,
		)
	}

	var body cartResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to decode cart response"), errs.ErrCartUnavailable)
	}

	lines := make([]commands.CartLine, len(body.Items))
	for i, item := range body.Items {
		lines[i] = commands.CartLine{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPrice,
		}
	}
	return lines, nil
}

func (c *CartClient) Clear(ctx context.Context, userID uuid.UUID) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/cart/clear?userId="+userID.String(), nil)
	if err != nil {
		return errs.Wrap(err, "failed to build cart clear request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return errs.Mark(errs.Wrap(err, "cart clear request failed"), errs.ErrCartUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errs.Mark(
			errs.Newf("cart service returned status %d", resp.StatusCode),
			errs.ErrCartUnavailable,
		)
	}
	return nil
}
