// Package api defines the request and response contracts of the reservation
// HTTP surface.
package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string        `json:"message"`
	Details   *ErrorDetails `json:"details,omitempty"`
	RequestId string        `json:"requestId"`
	Timestamp time.Time     `json:"timestamp"`
}

// ErrorDetails carries the machine-readable part of a conflict response:
// which seats lost the race, which booking expired, or which transition was
// rejected.
type ErrorDetails struct {
	ShowingId       *uuid.UUID  `json:"showingId,omitempty"`
	SeatIds         []uuid.UUID `json:"seatIds,omitempty"`
	BookingId       *uuid.UUID  `json:"bookingId,omitempty"`
	ExpiredAt       *time.Time  `json:"expiredAt,omitempty"`
	CurrentStatus   string      `json:"currentStatus,omitempty"`
	AttemptedStatus string      `json:"attemptedStatus,omitempty"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
}

type SystemInfo struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

type HealthcheckResponse struct {
	Status       string            `json:"status"`
	SystemInfo   SystemInfo        `json:"systemInfo"`
	Dependencies map[string]string `json:"dependencies"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type CreateHoldRequest struct {
	SeatId uuid.UUID `json:"seatId" validate:"required"`

	// SessionToken lets a client group the holds of one checkout flow; it is
	// stored with the hold and echoed back on listings.
	SessionToken string `json:"sessionToken" validate:"omitempty,max=64"`
}

type ExtendHoldRequest struct {
	Minutes int `json:"minutes" validate:"omitempty,min=1,max=60"`
}

type HoldResponse struct {
	Id           uuid.UUID `json:"id"`
	ShowingId    uuid.UUID `json:"showingId"`
	SeatId       uuid.UUID `json:"seatId"`
	SessionToken string    `json:"sessionToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type UserHoldsResponse struct {
	Holds []HoldResponse `json:"holds"`
}

type CreateBookingRequest struct {
	ShowingId uuid.UUID   `json:"showingId" validate:"required"`
	SeatIds   []uuid.UUID `json:"seatIds" validate:"required,min=1,max=10,unique"`
	Notes     string      `json:"notes" validate:"omitempty,max=500"`
}

type ConfirmBookingRequest struct {
	PaymentMethod    string `json:"paymentMethod" validate:"required,oneof=CREDIT_CARD DEBIT_CARD PAYPAL CASH"`
	PaymentReference string `json:"paymentReference" validate:"required,min=3,max=100"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type BookedSeat struct {
	SeatId     uuid.UUID       `json:"seatId"`
	Row        string          `json:"row"`
	SeatNumber int             `json:"seatNumber"`
	PricePaid  decimal.Decimal `json:"pricePaid"`
}

type BookingResponse struct {
	Id          uuid.UUID       `json:"id"`
	Reference   string          `json:"reference"`
	ShowingId   uuid.UUID       `json:"showingId"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Seats       []BookedSeat    `json:"seats"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	ConfirmedAt *time.Time      `json:"confirmedAt,omitempty"`
	CancelledAt *time.Time      `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type BookingHistoryEntry struct {
	Action    string            `json:"action"`
	ActorId   *uuid.UUID        `json:"actorId,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

type BookingDetailResponse struct {
	BookingResponse
	History []BookingHistoryEntry `json:"history"`
}

type BookingSummary struct {
	Id          uuid.UUID       `json:"id"`
	Reference   string          `json:"reference"`
	ShowingId   uuid.UUID       `json:"showingId"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	SeatCount   int             `json:"seatCount"`
	ShowingTime time.Time       `json:"showingTime"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type UserBookingsResponse struct {
	Bookings []BookingSummary `json:"bookings"`
	Metadata Metadata         `json:"metadata"`
}

type ListBookingsParams struct {
	Page     *int `validate:"omitempty,min=1"`
	PageSize *int `validate:"omitempty,min=1,max=50"`
}

type Seat struct {
	Id           uuid.UUID       `json:"id"`
	Row          string          `json:"row"`
	SeatNumber   int             `json:"seatNumber"`
	Type         string          `json:"type"`
	ExtraPrice   decimal.Decimal `json:"extraPrice"`
	Price        decimal.Decimal `json:"price"`
	Available    bool            `json:"available"`
	IsAccessible bool            `json:"isAccessible"`
	IsCouple     bool            `json:"isCouple"`
	PosX         int             `json:"posX"`
	PosY         int             `json:"posY"`
}

type SeatRow struct {
	Row   string `json:"row"`
	Seats []Seat `json:"seats"`
}

type SeatAvailabilityResponse struct {
	ShowingId uuid.UUID `json:"showingId"`
	SeatId    uuid.UUID `json:"seatId"`
	Available bool      `json:"available"`
}

type AvailabilityResponse struct {
	ShowingId        uuid.UUID       `json:"showingId"`
	ScreenId         uuid.UUID       `json:"screenId"`
	ScreenName       string          `json:"screenName"`
	StartsAt         time.Time       `json:"startsAt"`
	EndsAt           time.Time       `json:"endsAt"`
	BasePrice        decimal.Decimal `json:"basePrice"`
	AvailableSeatIds []uuid.UUID     `json:"availableSeatIds"`
	SeatRows         []SeatRow       `json:"seatRows"`
}
