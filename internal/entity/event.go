package entity

import "time"

type BookingEventType string

const (
	BookingCreated BookingEventType = "booking.created"
	BookingRevoked BookingEventType = "booking.revoked"
	BookingUpdated BookingEventType = "booking.updated"
)

// BookingEvent is emitted after a booking mutation commits.
type BookingEvent struct {
	EventID        string           `json:"eventId"`
	Type           BookingEventType `json:"type"`
	BookedTicketID int64            `json:"bookedTicketId"`
	TotalPrice     int              `json:"totalPrice"`
	Lines          []LineRequest    `json:"lines"`
	OccurredAt     time.Time        `json:"occurredAt"`
}
