package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripflow/booking/internal/domain"
)

type ItineraryRepository interface {
	List(ctx context.Context) ([]domain.Itinerary, error)
	GetByID(ctx context.Context, id string) (*domain.Itinerary, error)
	// HoldSeats conditionally decrements the seat counter for the cabin
	// class. Reports domain.ErrResourceUnavailable when fewer than count
	// seats remain.
	HoldSeats(ctx context.Context, id string, class domain.CabinClass, count int) error
	ReleaseSeats(ctx context.Context, id string, class domain.CabinClass, count int) error
}

type PGItineraryRepository struct {
	db *pgxpool.Pool
}

func NewItineraryRepository(db *pgxpool.Pool) ItineraryRepository {
	return &PGItineraryRepository{db: db}
}

const itineraryColumns = `id, flight_number, origin, destination, departure_time, arrival_time, base_cents, seats_economy, seats_business, created_at, updated_at`

func scanItinerary(row pgx.Row) (*domain.Itinerary, error) {
	var it domain.Itinerary
	if err := row.Scan(&it.ID, &it.FlightNumber, &it.Origin, &it.Destination, &it.DepartureTime, &it.ArrivalTime, &it.BaseCents, &it.SeatsEconomy, &it.SeatsBusiness, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *PGItineraryRepository) List(ctx context.Context) ([]domain.Itinerary, error) {
	rows, err := r.db.Query(ctx, `SELECT `+itineraryColumns+` FROM itineraries ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	itineraries := make([]domain.Itinerary, 0)
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		itineraries = append(itineraries, *it)
	}
	return itineraries, rows.Err()
}

func (r *PGItineraryRepository) GetByID(ctx context.Context, id string) (*domain.Itinerary, error) {
	row := r.db.QueryRow(ctx, `SELECT `+itineraryColumns+` FROM itineraries WHERE id=$1`, id)
	it, err := scanItinerary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("itinerary %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return it, nil
}

// seatColumn maps a cabin class onto the seat pool it draws from. Premium
// shares the economy cabin, first shares business.
func seatColumn(class domain.CabinClass) string {
	switch class {
	case domain.CabinClassBusiness, domain.CabinClassFirst:
		return "seats_business"
	default:
		return "seats_economy"
	}
}

func (r *PGItineraryRepository) HoldSeats(ctx context.Context, id string, class domain.CabinClass, count int) error {
	col := seatColumn(class)
	res, err := r.db.Exec(ctx, `UPDATE itineraries SET `+col+` = `+col+` - $1, updated_at = now()
		WHERE id=$2 AND `+col+` >= $1`, count, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("hold %d %s seats on itinerary %s: %w", count, class, id, domain.ErrResourceUnavailable)
	}
	return nil
}

func (r *PGItineraryRepository) ReleaseSeats(ctx context.Context, id string, class domain.CabinClass, count int) error {
	col := seatColumn(class)
	res, err := r.db.Exec(ctx, `UPDATE itineraries SET `+col+` = `+col+` + $1, updated_at = now()
		WHERE id=$2`, count, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("release seats on itinerary %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

var _ ItineraryRepository = (*PGItineraryRepository)(nil)
