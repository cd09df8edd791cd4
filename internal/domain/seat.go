package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SeatType string

const (
	SeatTypeStandard   SeatType = "STANDARD"
	SeatTypeVIP        SeatType = "VIP"
	SeatTypeCouple     SeatType = "COUPLE"
	SeatTypeAccessible SeatType = "ACCESSIBLE"
)

// SeatStatus is the physical state of a seat, owned by the catalog. Anything
// other than AVAILABLE keeps the seat out of every availability result
// regardless of holds or bookings.
type SeatStatus string

const (
	SeatStatusAvailable   SeatStatus = "AVAILABLE"
	SeatStatusOccupied    SeatStatus = "OCCUPIED"
	SeatStatusMaintenance SeatStatus = "MAINTENANCE"
	SeatStatusBlocked     SeatStatus = "BLOCKED"
)

type Seat struct {
	ID           uuid.UUID
	ScreenID     uuid.UUID
	RowLabel     string
	SeatNumber   int
	Type         SeatType
	Status       SeatStatus
	ExtraPrice   decimal.Decimal
	IsAccessible bool
	IsCouple     bool
	PosX         int
	PosY         int
	CreatedAt    time.Time
}
