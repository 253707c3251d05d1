package worker

import (
	"context"
	"time"

	"github.com/tripflow/booking/internal/domain"
	"go.uber.org/zap"
)

type Sweeper interface {
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
}

// Reaper retires abandoned pending bookings on a fixed interval. It races
// live confirms on the same rows; the conditional update in the sweep makes
// whoever commits first win, so a lost row is silently skipped.
type Reaper struct {
	sweeper  Sweeper
	interval time.Duration
	log      *zap.Logger
}

func NewReaper(sweeper Sweeper, interval time.Duration, log *zap.Logger) *Reaper {
	return &Reaper{sweeper: sweeper, interval: interval, log: log}
}

// Run blocks until ctx is canceled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	expired, err := r.sweeper.ExpirePendingBookings(ctx)
	if err != nil {
		r.log.Error("expiration sweep failed", zap.Error(err))
		return
	}
	if len(expired) > 0 {
		r.log.Info("expired abandoned bookings", zap.Int("count", len(expired)))
	}
}
