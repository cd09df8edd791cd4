package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HoldTTL is how long a seat hold shields its seat before expiring.
const HoldTTL = 15 * time.Minute

// SeatReservation is a time-boxed, non-committed claim on one seat for one
// showing. At most one live reservation exists per (showing, seat) pair; the
// row is superseded in place once it expires.
type SeatReservation struct {
	ID           uuid.UUID
	ShowingID    uuid.UUID
	SeatID       uuid.UUID
	UserID       uuid.UUID
	SessionToken string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Live reports whether the hold still shields its seat at the given instant.
func (r SeatReservation) Live(now time.Time) bool {
	return r.ExpiresAt.After(now)
}

type CreateHoldParams struct {
	ShowingID    uuid.UUID
	SeatID       uuid.UUID
	UserID       uuid.UUID
	SessionToken string
	ExpiresAt    time.Time
}

type ReservationRepository interface {
	// CreateHold atomically claims (showing, seat) for the user. A live claim
	// owned by someone else, or a live PENDING/CONFIRMED booked seat, makes it
	// fail with a SeatUnavailableError and no state change. Re-holding one's
	// own seat refreshes the expiry.
	CreateHold(ctx context.Context, params CreateHoldParams, now time.Time) (*SeatReservation, error)

	// ExtendHold pushes the expiry of a live hold owned by the user to the
	// given instant. Expired or foreign holds report ErrRecordNotFound.
	ExtendHold(ctx context.Context, holdID, userID uuid.UUID, expiresAt time.Time, now time.Time) (*SeatReservation, error)

	// ReleaseHold deletes the user's hold. Releasing a hold that no longer
	// exists is not an error.
	ReleaseHold(ctx context.Context, holdID, userID uuid.UUID) (*SeatReservation, error)

	// GetLiveHoldsByUser returns the user's unexpired holds ordered by expiry.
	GetLiveHoldsByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]SeatReservation, error)

	// DeleteExpired removes every hold whose expiry has passed and returns the
	// distinct showings they belonged to.
	DeleteExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}
