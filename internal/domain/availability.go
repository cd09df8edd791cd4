package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SeatAvailability is one catalog seat enriched with its purchasability for a
// specific showing at a specific instant.
type SeatAvailability struct {
	Seat
	Price     decimal.Decimal
	Available bool
}

// ShowingSeatMap is the full availability picture for one showing, computed
// in a single database snapshot so no seat can flip state between reads.
type ShowingSeatMap struct {
	Showing Showing
	Seats   []SeatAvailability
}

// AvailableSeatIDs returns the ids of the purchasable seats, in seat map
// order.
func (m *ShowingSeatMap) AvailableSeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m.Seats))

	for _, seat := range m.Seats {
		if seat.Available {
			ids = append(ids, seat.ID)
		}
	}

	return ids
}

type AvailabilityRepository interface {
	// GetSeatMap resolves every seat of the showing's screen against live
	// holds, live bookings and physical seat status as of now. Unknown
	// showings report ErrRecordNotFound.
	GetSeatMap(ctx context.Context, showingID uuid.UUID, now time.Time) (*ShowingSeatMap, error)

	// IsSeatAvailable is the single-seat variant of the same predicate, used
	// for point checks before a hold or purchase.
	IsSeatAvailable(ctx context.Context, showingID, seatID uuid.UUID, now time.Time) (bool, error)
}
