package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tripflow/booking/internal/client"
	"github.com/tripflow/booking/internal/domain"
	"github.com/tripflow/booking/internal/events"
	"github.com/tripflow/booking/internal/repository"
	"go.uber.org/zap"
)

// BookingUseCase drives the booking saga: availability, pricing, the pending
// hold, payment collection and the confirm/cancel/expire transitions. There
// is no per-booking lock; every transition is a conditional update on the
// store and the loser of a race observes domain.ErrInvalidTransition.
type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, id, method string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id, reason string) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
}

type AvailabilityClient interface {
	Check(ctx context.Context, itineraryID string, class domain.CabinClass, count int) (bool, error)
}

type PricingClient interface {
	Quote(ctx context.Context, req client.PriceRequest) (*client.PriceQuote, error)
}

type PaymentClient interface {
	Charge(ctx context.Context, req client.ChargeRequest) (*client.ChargeResult, error)
	Refund(ctx context.Context, transactionID string, amountCents int64) error
}

type Publisher interface {
	Publish(ctx context.Context, eventType, bookingID string, version int, payload any) (string, error)
}

// Event versions count transitions per booking, so a dedupe key never
// repeats: creation is 1, the transition out of PENDING is 2, a compensating
// cancellation of a confirmed booking is 3.
const (
	versionCreated      = 1
	versionFromPending  = 2
	versionCompensation = 3
)

type Service struct {
	bookings       repository.BookingRepository
	itineraries    repository.ItineraryRepository
	availability   AvailabilityClient
	pricing        PricingClient
	payments       PaymentClient
	publisher      Publisher
	log            *zap.Logger
	expiration     time.Duration
	strictCapacity bool
}

type ServiceOption func(*Service)

// WithStrictCapacity toggles the hard capacity hold taken before pricing.
func WithStrictCapacity(strict bool) ServiceOption {
	return func(s *Service) {
		s.strictCapacity = strict
	}
}

func NewService(
	bookings repository.BookingRepository,
	itineraries repository.ItineraryRepository,
	availability AvailabilityClient,
	pricing PricingClient,
	payments PaymentClient,
	publisher Publisher,
	log *zap.Logger,
	expiration time.Duration,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		bookings:       bookings,
		itineraries:    itineraries,
		availability:   availability,
		pricing:        pricing,
		payments:       payments,
		publisher:      publisher,
		log:            log,
		expiration:     expiration,
		strictCapacity: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type PassengerInput struct {
	FirstName      string
	LastName       string
	Title          string
	DateOfBirth    time.Time
	PassportNumber string
	Email          string
	Phone          string
}

type CreateBookingInput struct {
	ItineraryID string
	UserID      string
	Class       domain.CabinClass
	AddOns      []string
	Passengers  []PassengerInput
}

func (in CreateBookingInput) validate() error {
	if in.ItineraryID == "" {
		return fmt.Errorf("itinerary_id is required: %w", domain.ErrValidation)
	}
	if in.UserID == "" {
		return fmt.Errorf("user_id is required: %w", domain.ErrValidation)
	}
	if len(in.Passengers) == 0 {
		return fmt.Errorf("at least one passenger is required: %w", domain.ErrValidation)
	}
	if !domain.ValidCabinClass(in.Class) {
		return fmt.Errorf("unknown cabin class %q: %w", in.Class, domain.ErrValidation)
	}
	for _, p := range in.Passengers {
		if p.FirstName == "" || p.LastName == "" {
			return fmt.Errorf("passenger name is required: %w", domain.ErrValidation)
		}
	}
	return nil
}

// CreateBooking runs the forward saga up to the PENDING hold. Committed
// steps accumulate undo actions; a later failure unwinds them in reverse.
func (s *Service) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	itinerary, err := s.itineraries.GetByID(ctx, input.ItineraryID)
	if err != nil {
		return nil, err
	}

	seats := len(input.Passengers)
	available, err := s.availability.Check(ctx, itinerary.ID, input.Class, seats)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, fmt.Errorf("itinerary %s has no capacity for %d %s seats: %w", itinerary.ID, seats, input.Class, domain.ErrResourceUnavailable)
	}

	comp := newSaga(s.log)

	if s.strictCapacity {
		if err := s.itineraries.HoldSeats(ctx, itinerary.ID, input.Class, seats); err != nil {
			return nil, err
		}
		comp.push("release seats", func(ctx context.Context) error {
			return s.itineraries.ReleaseSeats(ctx, itinerary.ID, input.Class, seats)
		})
	}

	quote, err := s.pricing.Quote(ctx, client.PriceRequest{
		ItineraryID:    itinerary.ID,
		PassengerCount: seats,
		Class:          string(input.Class),
		AddOns:         input.AddOns,
	})
	if err != nil {
		comp.unwind(ctx)
		return nil, err
	}

	now := time.Now().UTC()
	booking := &domain.Booking{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		ItineraryID: itinerary.ID,
		Class:       input.Class,
		SeatCount:   seats,
		Status:      domain.BookingStatusPending,
		TotalCents:  quote.TotalCents,
		Currency:    quote.Currency,
		ExpiresAt:   now.Add(s.expiration),
		Passengers:  make([]domain.Passenger, 0, seats),
	}
	for _, p := range input.Passengers {
		booking.Passengers = append(booking.Passengers, domain.Passenger{
			ID:             uuid.NewString(),
			BookingID:      booking.ID,
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			Title:          p.Title,
			DateOfBirth:    p.DateOfBirth,
			PassportNumber: p.PassportNumber,
			Email:          p.Email,
			Phone:          p.Phone,
		})
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		comp.unwind(ctx)
		return nil, err
	}

	s.publish(ctx, events.TypeBookingCreated, booking, versionCreated)
	return booking, nil
}

// ConfirmBooking collects payment and flips PENDING to CONFIRMED. A caller
// retry after a charge timeout reuses the same idempotency key.
func (s *Service) ConfirmBooking(ctx context.Context, id, method string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, fmt.Errorf("booking %s is %s: %w", id, current.Status, domain.ErrInvalidTransition)
	}
	if method == "" {
		method = "card"
	}

	charge, err := s.payments.Charge(ctx, client.ChargeRequest{
		IdempotencyKey: client.ChargeKey(id),
		BookingID:      id,
		AmountCents:    current.TotalCents,
		Currency:       current.Currency,
		Method:         method,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDependencyRejected) {
			s.cancelAfterPaymentRejection(ctx, current, err)
			return nil, err
		}
		return nil, err
	}

	comp := newSaga(s.log)
	comp.push("refund charge", func(ctx context.Context) error {
		return s.payments.Refund(ctx, charge.TransactionID, current.TotalCents)
	})

	updated, err := s.bookings.ConfirmPending(ctx, id, charge.TransactionID)
	if err != nil {
		// The reaper (or a concurrent cancel) won the conditional update.
		comp.unwind(ctx)
		return nil, err
	}

	s.publish(ctx, events.TypeBookingConfirmed, updated, versionFromPending)
	return updated, nil
}

// cancelAfterPaymentRejection may lose the conditional update to the reaper;
// the booking is retired either way.
func (s *Service) cancelAfterPaymentRejection(ctx context.Context, b *domain.Booking, cause error) {
	cancelled, err := s.bookings.CancelFrom(ctx, b.ID, domain.BookingStatusPending, "payment declined")
	if err != nil {
		s.log.Warn("cancel after payment rejection lost the race",
			zap.String("booking_id", b.ID), zap.Error(err))
		return
	}
	s.releaseCapacity(ctx, cancelled)
	s.publish(ctx, events.TypeBookingCancelled, cancelled, versionFromPending)
	s.log.Info("booking cancelled after payment rejection",
		zap.String("booking_id", b.ID), zap.Error(cause))
}

// CancelBooking cancels from PENDING or CONFIRMED. Cancelling a confirmed
// booking issues the compensating refund before the status flips; a refund
// failure is returned and the booking stays CONFIRMED so the caller retries.
// Already retired bookings are a no-op success.
func (s *Service) CancelBooking(ctx context.Context, id, reason string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch current.Status {
	case domain.BookingStatusCancelled, domain.BookingStatusExpired:
		return current, nil

	case domain.BookingStatusPending:
		cancelled, err := s.bookings.CancelFrom(ctx, id, domain.BookingStatusPending, reason)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidTransition) {
				return s.resolveLostCancel(ctx, id, err)
			}
			return nil, err
		}
		s.releaseCapacity(ctx, cancelled)
		s.publish(ctx, events.TypeBookingCancelled, cancelled, versionFromPending)
		return cancelled, nil

	case domain.BookingStatusConfirmed:
		if err := s.payments.Refund(ctx, current.PaymentRef, current.TotalCents); err != nil {
			return nil, fmt.Errorf("refund before cancellation of booking %s: %w", id, err)
		}
		cancelled, err := s.bookings.CancelFrom(ctx, id, domain.BookingStatusConfirmed, reason)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidTransition) {
				return s.resolveLostCancel(ctx, id, err)
			}
			return nil, err
		}
		s.releaseCapacity(ctx, cancelled)
		s.publish(ctx, events.TypeBookingCancelled, cancelled, versionCompensation)
		return cancelled, nil
	}

	return nil, fmt.Errorf("booking %s is %s: %w", id, current.Status, domain.ErrInvalidTransition)
}

// resolveLostCancel re-reads after a lost conditional update. A concurrent
// expiry retired the booking already, which a cancel treats as success.
func (s *Service) resolveLostCancel(ctx context.Context, id string, cause error) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return current, nil
	}
	return nil, cause
}

func (s *Service) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *Service) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// ExpirePendingBookings retires pending bookings whose TTL elapsed. The
// sweep is one conditional update, so a booking confirmed concurrently is
// skipped without error.
func (s *Service) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpirePendingBefore(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	for i := range expired {
		b := &expired[i]
		s.releaseCapacity(ctx, b)
		s.publish(ctx, events.TypeBookingExpired, b, versionFromPending)
	}
	return expired, nil
}

func (s *Service) releaseCapacity(ctx context.Context, b *domain.Booking) {
	if !s.strictCapacity {
		return
	}
	if err := s.itineraries.ReleaseSeats(ctx, b.ItineraryID, b.Class, b.SeatCount); err != nil {
		s.log.Error("release capacity failed",
			zap.String("booking_id", b.ID),
			zap.String("itinerary_id", b.ItineraryID),
			zap.Error(err))
	}
}

// publish is best effort: a degraded bus never fails the booking workflow.
func (s *Service) publish(ctx context.Context, eventType string, b *domain.Booking, version int) {
	if s.publisher == nil {
		return
	}
	payload := events.BookingPayload{
		BookingID:    b.ID,
		UserID:       b.UserID,
		ItineraryID:  b.ItineraryID,
		Status:       string(b.Status),
		TotalCents:   b.TotalCents,
		Currency:     b.Currency,
		CancelReason: b.CancelReason,
	}
	if _, err := s.publisher.Publish(ctx, eventType, b.ID, version, payload); err != nil {
		s.log.Warn("event publish failed",
			zap.String("event_type", eventType),
			zap.String("booking_id", b.ID),
			zap.Error(err))
	}
}

var _ BookingUseCase = (*Service)(nil)
