package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Showing is a scheduled screening on a specific screen. Screen and time
// window come from the catalog; BasePrice is the per-seat floor that seat
// tiers add their ExtraPrice on top of.
type Showing struct {
	ID         uuid.UUID
	ScreenID   uuid.UUID
	ScreenName string
	StartsAt   time.Time
	EndsAt     time.Time
	BasePrice  decimal.Decimal
}

// SeatPrice is the frozen price of one seat for one showing.
func (s Showing) SeatPrice(seat Seat) decimal.Decimal {
	return s.BasePrice.Add(seat.ExtraPrice)
}
