package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

// Terminal reports whether no forward transition remains. CONFIRMED is not
// terminal: a compensating cancellation may still follow.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusExpired
}

type CabinClass string

const (
	CabinClassEconomy  CabinClass = "economy"
	CabinClassPremium  CabinClass = "premium"
	CabinClassBusiness CabinClass = "business"
	CabinClassFirst    CabinClass = "first"
)

func ValidCabinClass(c CabinClass) bool {
	switch c {
	case CabinClassEconomy, CabinClassPremium, CabinClassBusiness, CabinClassFirst:
		return true
	}
	return false
}

type Booking struct {
	ID           string
	UserID       string
	ItineraryID  string
	Class        CabinClass
	// SeatCount mirrors len(Passengers) so capacity can be released on
	// expiry without loading the passenger rows.
	SeatCount    int
	Status       BookingStatus
	TotalCents   int64
	Currency     string
	CancelReason string
	// PaymentRef holds the charge transaction id once the booking is
	// confirmed. Refunds are keyed by it.
	PaymentRef string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Passengers []Passenger
}

type Passenger struct {
	ID             string
	BookingID      string
	FirstName      string
	LastName       string
	Title          string
	DateOfBirth    time.Time
	PassportNumber string
	Email          string
	Phone          string
}
