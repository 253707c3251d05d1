package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tripflow/booking/internal/domain"
	"go.uber.org/zap"
)

type PricingClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewPricingClient(baseURL string, timeout time.Duration, log *zap.Logger) *PricingClient {
	return &PricingClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type PriceRequest struct {
	ItineraryID    string   `json:"itinerary_id"`
	PassengerCount int      `json:"passenger_count"`
	Class          string   `json:"class"`
	AddOns         []string `json:"add_ons"`
}

type PriceBreakdown struct {
	BaseCents   int64 `json:"base_cents"`
	TaxesCents  int64 `json:"taxes_cents"`
	FeesCents   int64 `json:"fees_cents"`
	AddOnsCents int64 `json:"add_ons_cents"`
	TotalCents  int64 `json:"total_cents"`
}

type PriceQuote struct {
	TotalCents int64          `json:"total_cents"`
	Currency   string         `json:"currency"`
	Breakdown  PriceBreakdown `json:"breakdown"`
}

func (c *PricingClient) Quote(ctx context.Context, req PriceRequest) (*PriceQuote, error) {
	var quote PriceQuote
	status, err := postJSON(ctx, c.http, c.baseURL+"/v1/price", nil, req, &quote)
	if err != nil {
		c.log.Warn("pricing call failed", zap.String("itinerary_id", req.ItineraryID), zap.Error(err))
		return nil, fmt.Errorf("pricing: %w: %w", domain.ErrDependencyUnavailable, err)
	}

	switch {
	case status < 300:
		return &quote, nil
	case status == http.StatusNotFound || status == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("pricing refused itinerary %s (status %d): %w", req.ItineraryID, status, domain.ErrDependencyRejected)
	default:
		return nil, fmt.Errorf("pricing returned status %d: %w", status, domain.ErrDependencyUnavailable)
	}
}
