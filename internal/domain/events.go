package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventHoldCreated      = "hold.created"
	EventHoldReleased     = "hold.released"
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingExpired   = "booking.expired"
)

// LifecycleEvent announces a hold or booking state change to downstream
// consumers (notifications, analytics). Publishing is best effort and never
// blocks the state change itself.
type LifecycleEvent struct {
	Type          string      `json:"type"`
	OccurredAt    time.Time   `json:"occurred_at"`
	UserID        uuid.UUID   `json:"user_id"`
	ShowingID     uuid.UUID   `json:"showing_id"`
	SeatIDs       []uuid.UUID `json:"seat_ids,omitempty"`
	ReservationID *uuid.UUID  `json:"reservation_id,omitempty"`
	BookingID     *uuid.UUID  `json:"booking_id,omitempty"`
	Reference     string      `json:"reference,omitempty"`
	TotalAmount   string      `json:"total_amount,omitempty"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event LifecycleEvent) error
}
