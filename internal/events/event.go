package events

import (
	"fmt"
	"time"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingExpired   = "booking.expired"
)

// Event is the immutable record published to the booking-events topic.
// Delivery is at least once; consumers deduplicate on DedupeKey.
type Event struct {
	Type      string    `json:"event_type"`
	BookingID string    `json:"booking_id"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	DedupeKey string    `json:"dedupe_key"`
}

// DedupeKey identifies one logical transition. version increases with every
// transition of the booking, so a redelivered message maps onto the same key.
func DedupeKey(bookingID, eventType string, version int) string {
	return fmt.Sprintf("%s:%s:%d", bookingID, eventType, version)
}

// BookingPayload is the event payload shared by all booking lifecycle events.
type BookingPayload struct {
	BookingID    string `json:"booking_id"`
	UserID       string `json:"user_id"`
	ItineraryID  string `json:"itinerary_id"`
	Status       string `json:"status"`
	TotalCents   int64  `json:"total_cents"`
	Currency     string `json:"currency"`
	CancelReason string `json:"cancel_reason,omitempty"`
}
