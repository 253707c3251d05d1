package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripflow/booking/internal/domain"
)

// BookingRepository persists bookings together with their passengers. All
// status changes are conditional updates keyed on the expected current
// status; a change that matches zero rows reports domain.ErrInvalidTransition
// so the caller can tell it lost the race.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ConfirmPending(ctx context.Context, id, paymentRef string) (*domain.Booking, error)
	CancelFrom(ctx context.Context, id string, from domain.BookingStatus, reason string) (*domain.Booking, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, itinerary_id, class, seat_count, status, total_cents, currency, cancel_reason, payment_ref, expires_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.ItineraryID, &b.Class, &b.SeatCount, &b.Status, &b.TotalCents, &b.Currency, &b.CancelReason, &b.PaymentRef, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, user_id, itinerary_id, class, seat_count, status, total_cents, currency, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		booking.ID, booking.UserID, booking.ItineraryID, booking.Class, booking.SeatCount, booking.Status, booking.TotalCents, booking.Currency, booking.ExpiresAt).
		Scan(&booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	for i := range booking.Passengers {
		p := &booking.Passengers[i]
		p.BookingID = booking.ID
		if _, err := tx.Exec(ctx, `INSERT INTO passengers (id, booking_id, first_name, last_name, title, date_of_birth, passport_number, email, phone)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ID, p.BookingID, p.FirstName, p.LastName, p.Title, p.DateOfBirth, p.PassportNumber, p.Email, p.Phone); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}

	passengers, err := r.passengers(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Passengers = passengers
	return b, nil
}

func (r *PGBookingRepository) passengers(ctx context.Context, bookingID string) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, first_name, last_name, title, date_of_birth, passport_number, email, phone
		FROM passengers WHERE booking_id=$1 ORDER BY created_at, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passengers []domain.Passenger
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.FirstName, &p.LastName, &p.Title, &p.DateOfBirth, &p.PassportNumber, &p.Email, &p.Phone); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) ConfirmPending(ctx context.Context, id, paymentRef string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, payment_ref=$2, updated_at=now()
		WHERE id=$3 AND status=$4
		RETURNING `+bookingColumns,
		domain.BookingStatusConfirmed, paymentRef, id, domain.BookingStatusPending)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("confirm booking %s: %w", id, domain.ErrInvalidTransition)
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) CancelFrom(ctx context.Context, id string, from domain.BookingStatus, reason string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, cancel_reason=$2, updated_at=now()
		WHERE id=$3 AND status=$4
		RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, reason, id, from)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cancel booking %s from %s: %w", id, from, domain.ErrInvalidTransition)
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE status=$2 AND expires_at <= $3
		RETURNING `+bookingColumns,
		domain.BookingStatusExpired, domain.BookingStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *b)
	}
	return expired, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
