package notify

import (
	"context"
	"time"

	"github.com/tripflow/booking/internal/events"
	"go.uber.org/zap"
)

// Deduper remembers event dedupe keys across worker restarts.
type Deduper interface {
	MarkEventSeen(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// seenTTL outlives any redelivery window the broker can produce.
const seenTTL = 24 * time.Hour

// Notifier consumes booking lifecycle events and emits user notifications.
// Delivery from the bus is at least once, so events are deduplicated on
// their dedupe key before notifying.
type Notifier struct {
	dedupe Deduper
	log    *zap.Logger
}

func NewNotifier(dedupe Deduper, log *zap.Logger) *Notifier {
	return &Notifier{dedupe: dedupe, log: log}
}

func (n *Notifier) Handle(ctx context.Context, event events.Event) error {
	if n.alreadySeen(ctx, event.DedupeKey) {
		n.log.Debug("skipping duplicate event", zap.String("dedupe_key", event.DedupeKey))
		return nil
	}

	n.log.Info("booking notification",
		zap.String("event_type", event.Type),
		zap.String("booking_id", event.BookingID),
		zap.String("dedupe_key", event.DedupeKey))
	return nil
}

// alreadySeen is best effort: when the dedupe store is unreachable the event
// is delivered anyway. A duplicate notification beats a dropped one.
func (n *Notifier) alreadySeen(ctx context.Context, key string) bool {
	if key == "" || n.dedupe == nil {
		return false
	}
	first, err := n.dedupe.MarkEventSeen(ctx, key, seenTTL)
	if err != nil {
		n.log.Warn("event dedupe check failed", zap.String("dedupe_key", key), zap.Error(err))
		return false
	}
	return !first
}
