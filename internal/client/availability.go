package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tripflow/booking/internal/domain"
	"go.uber.org/zap"
)

// AvailabilityClient gives an advisory answer; the hard capacity hold
// happens against the itinerary row.
type AvailabilityClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewAvailabilityClient(baseURL string, timeout time.Duration, log *zap.Logger) *AvailabilityClient {
	return &AvailabilityClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

func (c *AvailabilityClient) Check(ctx context.Context, itineraryID string, class domain.CabinClass, count int) (bool, error) {
	q := url.Values{}
	q.Set("itinerary_id", itineraryID)
	q.Set("class", string(class))
	q.Set("count", strconv.Itoa(count))

	var out availabilityResponse
	status, err := getJSON(ctx, c.http, c.baseURL+"/v1/availability?"+q.Encode(), &out)
	if err != nil {
		c.log.Warn("availability call failed", zap.String("itinerary_id", itineraryID), zap.Error(err))
		return false, fmt.Errorf("availability: %w: %w", domain.ErrDependencyUnavailable, err)
	}
	if status >= 300 {
		return false, fmt.Errorf("availability returned status %d: %w", status, domain.ErrDependencyUnavailable)
	}
	return out.Available, nil
}
