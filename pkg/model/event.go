package model

import "time"

type EventKind string

const (
	EventBooked      EventKind = "booked"
	EventCancelled   EventKind = "cancelled"
	EventRescheduled EventKind = "rescheduled"
	EventUpdated     EventKind = "updated"
)

func (k EventKind) Valid() bool {
	switch k {
	case EventBooked, EventCancelled, EventRescheduled, EventUpdated:
		return true
	}
	return false
}

type NotificationPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Service string `json:"service,omitempty"`
	Price   string `json:"price,omitempty"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// BookingEvent is the message carried from the reservation core to the notifier.
type BookingEvent struct {
	Kind       EventKind           `json:"kind"`
	BookingID  string              `json:"booking_id"`
	Payload    NotificationPayload `json:"payload"`
	OccurredAt time.Time           `json:"occurred_at"`
}

func NewNotificationPayload(b *Booking) NotificationPayload {
	return NotificationPayload{
		Name:    b.Name,
		Email:   b.Email,
		Phone:   b.Phone,
		Service: b.Service,
		Price:   b.Price,
		Date:    b.Date,
		Time:    b.Time,
	}
}
