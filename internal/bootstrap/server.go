package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tripflow/booking/api"
	"github.com/tripflow/booking/config"
	"github.com/tripflow/booking/internal/service/booking"
	"github.com/tripflow/booking/internal/service/itineraries"
	"go.uber.org/zap"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, bookingSvc booking.BookingUseCase, itinerarySvc itineraries.ItineraryUseCase, log *zap.Logger) error {
	router := NewRouter(bookingSvc, itinerarySvc)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	log.Info("http server started", zap.String("address", cfg.HTTP.Address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(bookingSvc booking.BookingUseCase, itinerarySvc itineraries.ItineraryUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.NewBookingHandler(bookingSvc).Register(router.Group("/bookings"))
	api.NewItineraryHandler(itinerarySvc).Register(router.Group("/itineraries"))
	return router
}
