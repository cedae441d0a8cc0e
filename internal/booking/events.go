package booking

import (
	"context"
	"time"
)

const (
	EventCreated  = "booking.created"
	EventApproved = "booking.approved"
	EventRejected = "booking.rejected"
)

// EventPublisher emits booking lifecycle events keyed by booking id.
type EventPublisher interface {
	Publish(ctx context.Context, key, eventType string, payload any) error
}

// Event is the payload attached to every booking lifecycle event.
type Event struct {
	BookingID  string    `json:"booking_id"`
	ItemID     string    `json:"item_id"`
	OwnerID    string    `json:"owner_id"`
	BookerID   string    `json:"booker_id"`
	Status     Status    `json:"status"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newEvent(b *Booking, at time.Time) Event {
	return Event{
		BookingID:  b.ID,
		ItemID:     b.ItemID,
		OwnerID:    b.OwnerID,
		BookerID:   b.BookerID,
		Status:     b.Status,
		Start:      b.Start,
		End:        b.End,
		OccurredAt: at,
	}
}
