package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tripflow/booking/config"
	"github.com/tripflow/booking/internal/domain"
)

// RedisCache holds the itinerary catalog. Bookings are never cached: their
// status is guarded by conditional updates on the store and must always be
// read from it.
type RedisCache struct {
	client       *redis.Client
	itineraryTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, itineraryTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:       redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		itineraryTTL: itineraryTTL,
	}
}

func (c *RedisCache) GetItineraries(ctx context.Context) ([]domain.Itinerary, error) {
	data, err := c.client.Get(ctx, itinerariesKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var itineraries []domain.Itinerary
	if err := json.Unmarshal(data, &itineraries); err != nil {
		return nil, err
	}
	return itineraries, nil
}

func (c *RedisCache) SetItineraries(ctx context.Context, itineraries []domain.Itinerary) error {
	payload, err := json.Marshal(itineraries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, itinerariesKey(), payload, c.itineraryTTL).Err()
}

func (c *RedisCache) GetItinerary(ctx context.Context, id string) (*domain.Itinerary, error) {
	data, err := c.client.Get(ctx, itineraryKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var it domain.Itinerary
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (c *RedisCache) SetItinerary(ctx context.Context, it *domain.Itinerary) error {
	payload, err := json.Marshal(it)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, itineraryKey(it.ID), payload, c.itineraryTTL).Err()
}

// MarkEventSeen records an event dedupe key with a TTL and reports whether
// this is its first sighting. Keys live in redis so dedupe survives worker
// restarts and rebalances.
func (c *RedisCache) MarkEventSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, eventSeenKey(key), 1, ttl).Result()
}

func itinerariesKey() string {
	return "cache:itineraries"
}

func eventSeenKey(key string) string {
	return "events:seen:" + key
}

func itineraryKey(id string) string {
	return "cache:itinerary:" + id
}
