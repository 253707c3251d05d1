package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripflow/booking/config"
	"github.com/tripflow/booking/internal/bootstrap"
	"github.com/tripflow/booking/internal/cache"
	"github.com/tripflow/booking/internal/client"
	"github.com/tripflow/booking/internal/events"
	"github.com/tripflow/booking/internal/repository"
	"github.com/tripflow/booking/internal/service/booking"
	"github.com/tripflow/booking/internal/service/itineraries"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.ItineraryCacheTTL)*time.Second)
	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.BookingEventsTopic, logger)
	defer publisher.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	itineraryRepo := repository.NewItineraryRepository(pool)

	availabilityClient := client.NewAvailabilityClient(cfg.Clients.AvailabilityURL, cfg.Clients.AvailabilityTimeout(), logger)
	pricingClient := client.NewPricingClient(cfg.Clients.PricingURL, cfg.Clients.PricingTimeout(), logger)
	paymentClient := client.NewPaymentClient(cfg.Clients.PaymentURL, cfg.Clients.PaymentTimeout(), logger)

	itineraryService := itineraries.NewService(itineraryRepo, redisCache, logger)
	bookingService := booking.NewService(
		bookingRepo,
		itineraryRepo,
		availabilityClient,
		pricingClient,
		paymentClient,
		publisher,
		logger,
		cfg.Booking.ExpirationTTL(),
		booking.WithStrictCapacity(cfg.Booking.StrictCapacity),
	)

	if err := bootstrap.Run(ctx, cfg, bookingService, itineraryService, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
