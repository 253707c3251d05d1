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
	"github.com/tripflow/booking/internal/cache"
	"github.com/tripflow/booking/internal/client"
	"github.com/tripflow/booking/internal/events"
	"github.com/tripflow/booking/internal/notify"
	"github.com/tripflow/booking/internal/repository"
	"github.com/tripflow/booking/internal/service/booking"
	"github.com/tripflow/booking/internal/worker"
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

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.BookingEventsTopic, logger)
	defer publisher.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	itineraryRepo := repository.NewItineraryRepository(pool)
	paymentClient := client.NewPaymentClient(cfg.Clients.PaymentURL, cfg.Clients.PaymentTimeout(), logger)

	// The reaper only expires and releases capacity; availability and
	// pricing never run here.
	bookingService := booking.NewService(
		bookingRepo,
		itineraryRepo,
		nil,
		nil,
		paymentClient,
		publisher,
		logger,
		cfg.Booking.ExpirationTTL(),
		booking.WithStrictCapacity(cfg.Booking.StrictCapacity),
	)

	consumer := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic, logger)
	defer consumer.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.ItineraryCacheTTL)*time.Second)
	notifier := notify.NewNotifier(redisCache, logger)
	go func() {
		if err := consumer.Consume(ctx, notifier.Handle); err != nil {
			logger.Warn("consumer stopped", zap.Error(err))
		}
	}()

	reaper := worker.NewReaper(bookingService, cfg.Worker.SweepInterval(), logger)
	reaper.Run(ctx)
}
