package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripflow/booking/internal/domain"
	"go.uber.org/zap"
)

func TestPricingClient_Quote_Success(t *testing.T) {
	var gotReq PriceRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/price", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(PriceQuote{
			TotalCents: 31050,
			Currency:   "USD",
			Breakdown:  PriceBreakdown{BaseCents: 24000, TaxesCents: 3600, FeesCents: 3450, TotalCents: 31050},
		})
	}))
	defer srv.Close()

	c := NewPricingClient(srv.URL, 5*time.Second, zap.NewNop())
	quote, err := c.Quote(context.Background(), PriceRequest{
		ItineraryID:    "it-1",
		PassengerCount: 2,
		Class:          "economy",
		AddOns:         []string{"baggage"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(31050), quote.TotalCents)
	assert.Equal(t, "USD", quote.Currency)
	assert.Equal(t, "it-1", gotReq.ItineraryID)
	assert.Equal(t, 2, gotReq.PassengerCount)
}

func TestPricingClient_Quote_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewPricingClient(srv.URL, 5*time.Second, zap.NewNop())
	quote, err := c.Quote(context.Background(), PriceRequest{ItineraryID: "it-1", PassengerCount: 1})

	assert.Nil(t, quote)
	assert.ErrorIs(t, err, domain.ErrDependencyRejected)
	assert.NotErrorIs(t, err, domain.ErrDependencyUnavailable)
}

func TestPricingClient_Quote_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewPricingClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := c.Quote(context.Background(), PriceRequest{ItineraryID: "it-1", PassengerCount: 1})

	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
}

func TestPricingClient_Quote_TimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewPricingClient(srv.URL, 20*time.Millisecond, zap.NewNop())
	_, err := c.Quote(context.Background(), PriceRequest{ItineraryID: "it-1", PassengerCount: 1})

	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
}

func TestAvailabilityClient_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/availability", r.URL.Path)
		assert.Equal(t, "it-1", r.URL.Query().Get("itinerary_id"))
		assert.Equal(t, "economy", r.URL.Query().Get("class"))
		assert.Equal(t, "2", r.URL.Query().Get("count"))
		json.NewEncoder(w).Encode(map[string]bool{"available": true})
	}))
	defer srv.Close()

	c := NewAvailabilityClient(srv.URL, 5*time.Second, zap.NewNop())
	available, err := c.Check(context.Background(), "it-1", domain.CabinClassEconomy, 2)

	require.NoError(t, err)
	assert.True(t, available)
}

func TestAvailabilityClient_Check_NotAvailableIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"available": false})
	}))
	defer srv.Close()

	c := NewAvailabilityClient(srv.URL, 5*time.Second, zap.NewNop())
	available, err := c.Check(context.Background(), "it-1", domain.CabinClassEconomy, 1)

	require.NoError(t, err)
	assert.False(t, available)
}

func TestAvailabilityClient_Check_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewAvailabilityClient(srv.URL, time.Second, zap.NewNop())
	_, err := c.Check(context.Background(), "it-1", domain.CabinClassEconomy, 1)

	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
}

func TestPaymentClient_Charge_SendsIdempotencyKey(t *testing.T) {
	var gotHeader string
	var gotReq ChargeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/charges", r.URL.Path)
		gotHeader = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(ChargeResult{Status: "SUCCEEDED", TransactionID: "TXN123"})
	}))
	defer srv.Close()

	c := NewPaymentClient(srv.URL, 5*time.Second, zap.NewNop())
	result, err := c.Charge(context.Background(), ChargeRequest{
		BookingID:   "bk-1",
		AmountCents: 31050,
		Currency:    "USD",
		Method:      "card",
	})

	require.NoError(t, err)
	assert.Equal(t, "TXN123", result.TransactionID)
	assert.Equal(t, "charge:bk-1", gotHeader)
	assert.Equal(t, "charge:bk-1", gotReq.IdempotencyKey)
}

func TestPaymentClient_Charge_Declined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := NewPaymentClient(srv.URL, 5*time.Second, zap.NewNop())
	result, err := c.Charge(context.Background(), ChargeRequest{BookingID: "bk-1", AmountCents: 100})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrDependencyRejected)
}

func TestPaymentClient_Charge_TimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewPaymentClient(srv.URL, 20*time.Millisecond, zap.NewNop())
	_, err := c.Charge(context.Background(), ChargeRequest{BookingID: "bk-1", AmountCents: 100})

	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
}

func TestPaymentClient_Refund(t *testing.T) {
	var gotTxn string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		var req struct {
			TransactionID string `json:"transaction_id"`
			AmountCents   int64  `json:"amount_cents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotTxn = req.TransactionID
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewPaymentClient(srv.URL, 5*time.Second, zap.NewNop())
	err := c.Refund(context.Background(), "TXN123", 31050)

	require.NoError(t, err)
	assert.Equal(t, "TXN123", gotTxn)
}

func TestPaymentClient_Refund_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewPaymentClient(srv.URL, 5*time.Second, zap.NewNop())
	err := c.Refund(context.Background(), "TXN123", 100)

	assert.ErrorIs(t, err, domain.ErrDependencyRejected)
}

func TestChargeKey_Deterministic(t *testing.T) {
	assert.Equal(t, ChargeKey("bk-1"), ChargeKey("bk-1"))
	assert.Equal(t, "charge:bk-1", ChargeKey("bk-1"))
	assert.NotEqual(t, ChargeKey("bk-1"), ChargeKey("bk-2"))
}
