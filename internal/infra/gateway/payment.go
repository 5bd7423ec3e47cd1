package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"order-checkout/internal/pkg/config"
	"order-checkout/internal/pkg/errs"
	"order-checkout/internal/usecase/commands"

	"github.com/google/uuid"
)

// PaymentClient calls the external payment gateway (POST /payments/process).
// Any transport failure, timeout, or non-200 answer is reported as
// unreachable: the charge may or may not have happened, and the caller must
// not treat that as a denial.
type PaymentClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPaymentClient(cfg config.PaymentConfig) *PaymentClient {
	return &PaymentClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chargeRequestBody struct {
	OrderID       uuid.UUID `json:"orderId"`
	UserID        uuid.UUID `json:"userId"`
	Amount        int64     `json:"amount"`
	PaymentMethod string    `json:"paymentMethod"`
}

type chargeResponseBody struct {
	TransactionID string `json:"transactionId"`
	PaymentStatus string `json:"paymentStatus"`
}

func (c *PaymentClient) Charge(ctx context.Context, req commands.ChargeRequest) (*commands.ChargeResult, error) {
	body, err := json.Marshal(chargeRequestBody{
		OrderID:       req.OrderID,
		UserID:        req.UserID,
		Amount:        req.AmountCents,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode charge request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments/process", bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(err, "failed to build charge request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "payment gateway request failed"), errs.ErrPaymentUnreachable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.Mark(
			errs.Newf("payment gateway returned status %d", resp.StatusCode),
			errs.ErrPaymentUnreachable,
		)
	}

	var respBody chargeResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to decode charge response"), errs.ErrPaymentUnreachable)
	}

	result := &commands.ChargeResult{TransactionID: respBody.TransactionID}
	switch respBody.PaymentStatus {
	case "SUCCESS":
		result.Status = commands.ChargeSuccess
	case "FAILED":
		result.Status = commands.ChargeFailed
	default:
		// An unknown status gives no certainty either way
		return nil, errs.Mark(
			errs.Newf("payment gateway returned unknown status %q", respBody.PaymentStatus),
			errs.ErrPaymentUnreachable,
		)
	}

	return result, nil
}
