package domain

import "time"

type Itinerary struct {
	ID            string
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	BaseCents     int64
	SeatsEconomy  int
	SeatsBusiness int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
