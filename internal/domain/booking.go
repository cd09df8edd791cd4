package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PendingBookingTTL is how long a PENDING booking may wait for confirmation.
const PendingBookingTTL = 15 * time.Minute

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled, BookingStatusExpired},
	BookingStatusConfirmed: {BookingStatusCancelled},
}

// CanTransitionTo reports whether the state machine allows moving from s to
// next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

type Booking struct {
	ID               uuid.UUID
	Reference        string
	UserID           uuid.UUID
	ShowingID        uuid.UUID
	Status           BookingStatus
	TotalAmount      decimal.Decimal
	PaymentMethod    string
	PaymentReference string
	Notes            string
	ExpiresAt        time.Time
	ConfirmedAt      *time.Time
	CancelledAt      *time.Time
	CreatedAt        time.Time
	Version          int

	Seats   []BookedSeat
	History []BookingHistoryEntry
}

// StatusAt applies lazy expiry: a PENDING booking past its expiry reads as
// EXPIRED even before the sweep persists the transition.
func (b Booking) StatusAt(now time.Time) BookingStatus {
	if b.Status == BookingStatusPending && !b.ExpiresAt.After(now) {
		return BookingStatusExpired
	}

	return b.Status
}

// BookedSeat records one seat of a booking with its price frozen at booking
// creation. Cancellation keeps the rows for audit; only deleting the booking
// removes them.
type BookedSeat struct {
	ID         uuid.UUID
	BookingID  uuid.UUID
	SeatID     uuid.UUID
	RowLabel   string
	SeatNumber int
	PricePaid  decimal.Decimal
}

type BookingSummary struct {
	ID          uuid.UUID
	Reference   string
	ShowingID   uuid.UUID
	Status      BookingStatus
	TotalAmount decimal.Decimal
	SeatCount   int
	ShowingTime time.Time
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// StatusAt is the summary counterpart of Booking.StatusAt.
func (s BookingSummary) StatusAt(now time.Time) BookingStatus {
	if s.Status == BookingStatusPending && !s.ExpiresAt.After(now) {
		return BookingStatusExpired
	}

	return s.Status
}

// NewBookingReference derives a 32 character reference from a fresh UUID.
// References are what support staff and ticket scanners key on.
func NewBookingReference() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
}

type CreateBookingParams struct {
	UserID    uuid.UUID
	ShowingID uuid.UUID
	SeatIDs   []uuid.UUID
	Notes     string
	Reference string
	ExpiresAt time.Time
}

type ConfirmBookingParams struct {
	BookingID        uuid.UUID
	UserID           uuid.UUID
	PaymentMethod    string
	PaymentReference string
}

type CancelBookingParams struct {
	BookingID uuid.UUID
	UserID    uuid.UUID
	Reason    string
}

// ExpiredBooking identifies a booking the sweep moved from PENDING to EXPIRED.
type ExpiredBooking struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ShowingID uuid.UUID
	SeatIDs   []uuid.UUID
}

type BookingRepository interface {
	// Create books all requested seats for the showing as one atomic unit. Any
	// seat with a live foreign claim or booking fails the whole call with a
	// SeatUnavailableError; no partial seats survive.
	Create(ctx context.Context, params CreateBookingParams, now time.Time) (*Booking, error)

	// GetByIDAndUser loads a booking with its seats and history. Unknown ids
	// and bookings owned by other users both report ErrRecordNotFound.
	GetByIDAndUser(ctx context.Context, bookingID, userID uuid.UUID) (*Booking, error)

	// GetSummariesByUser lists the user's bookings, newest first.
	GetSummariesByUser(ctx context.Context, userID uuid.UUID, pagination Pagination) ([]BookingSummary, *Metadata, error)

	// Confirm moves a live PENDING booking to CONFIRMED. A PENDING booking past
	// its expiry is persisted as EXPIRED and reported via BookingExpiredError;
	// any other status reports InvalidTransitionError.
	Confirm(ctx context.Context, params ConfirmBookingParams, now time.Time) (*Booking, error)

	// Cancel moves a CONFIRMED booking to CANCELLED, provided the showing has
	// not started yet.
	Cancel(ctx context.Context, params CancelBookingParams, now time.Time) (*Booking, error)

	// ExpirePending transitions every PENDING booking past its expiry to
	// EXPIRED and appends the audit entries.
	ExpirePending(ctx context.Context, now time.Time) ([]ExpiredBooking, error)
}
