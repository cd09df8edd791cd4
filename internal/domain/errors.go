package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrSeatUnavailable   = errors.New("seat is no longer available")
	ErrBookingExpired    = errors.New("booking has expired")
	ErrInvalidTransition = errors.New("invalid booking state transition")
)

// SeatUnavailableError reports which seats lost the race so clients can
// refresh their seat map and retry with different seats.
type SeatUnavailableError struct {
	ShowingID uuid.UUID
	SeatIDs   []uuid.UUID
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats %v are no longer available for showing %s", e.SeatIDs, e.ShowingID)
}

func (e *SeatUnavailableError) Unwrap() error {
	return ErrSeatUnavailable
}

// BookingExpiredError reports a PENDING booking that aged past its expiry
// before it could be confirmed.
type BookingExpiredError struct {
	BookingID uuid.UUID
	ExpiredAt time.Time
}

func (e *BookingExpiredError) Error() string {
	return fmt.Sprintf("booking %s expired at %s", e.BookingID, e.ExpiredAt.Format(time.RFC3339))
}

func (e *BookingExpiredError) Unwrap() error {
	return ErrBookingExpired
}

// InvalidTransitionError reports an illegal state machine move, naming the
// current and attempted statuses.
type InvalidTransitionError struct {
	Current   BookingStatus
	Attempted BookingStatus
	Reason    string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot transition booking from %s to %s: %s", e.Current, e.Attempted, e.Reason)
	}

	return fmt.Sprintf("cannot transition booking from %s to %s", e.Current, e.Attempted)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
