package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tripflow/booking/internal/domain"
	"go.uber.org/zap"
)

// PaymentClient charges always carry an idempotency key derived from the
// booking id; refunds are keyed by the original transaction id.
type PaymentClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewPaymentClient(baseURL string, timeout time.Duration, log *zap.Logger) *PaymentClient {
	return &PaymentClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// ChargeKey is the deterministic idempotency key for a booking's charge.
func ChargeKey(bookingID string) string {
	return "charge:" + bookingID
}

type ChargeRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	BookingID      string `json:"booking_id"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
	Method         string `json:"method"`
}

type ChargeResult struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

func (c *PaymentClient) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = ChargeKey(req.BookingID)
	}
	headers := map[string]string{"Idempotency-Key": req.IdempotencyKey}

	var result ChargeResult
	status, err := postJSON(ctx, c.http, c.baseURL+"/v1/charges", headers, req, &result)
	if err != nil {
		c.log.Warn("charge call failed", zap.String("booking_id", req.BookingID), zap.Error(err))
		return nil, fmt.Errorf("payment charge: %w: %w", domain.ErrDependencyUnavailable, err)
	}

	switch {
	case status < 300:
		return &result, nil
	case status == http.StatusPaymentRequired || status == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("payment declined for booking %s: %w", req.BookingID, domain.ErrDependencyRejected)
	default:
		return nil, fmt.Errorf("payment charge returned status %d: %w", status, domain.ErrDependencyUnavailable)
	}
}

type refundRequest struct {
	TransactionID string `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents"`
}

func (c *PaymentClient) Refund(ctx context.Context, transactionID string, amountCents int64) error {
	status, err := postJSON(ctx, c.http, c.baseURL+"/v1/refunds", nil, refundRequest{
		TransactionID: transactionID,
		AmountCents:   amountCents,
	}, nil)
	if err != nil {
		c.log.Warn("refund call failed", zap.String("transaction_id", transactionID), zap.Error(err))
		return fmt.Errorf("payment refund: %w: %w", domain.ErrDependencyUnavailable, err)
	}

	switch {
	case status < 300:
		return nil
	case status == http.StatusUnprocessableEntity:
		return fmt.Errorf("refund rejected for transaction %s: %w", transactionID, domain.ErrDependencyRejected)
	default:
		return fmt.Errorf("payment refund returned status %d: %w", status, domain.ErrDependencyUnavailable)
	}
}
