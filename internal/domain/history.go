package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingHistoryAction enumerates the auditable booking lifecycle events.
type BookingHistoryAction string

const (
	HistoryActionCreated   BookingHistoryAction = "created"
	HistoryActionConfirmed BookingHistoryAction = "confirmed"
	HistoryActionCancelled BookingHistoryAction = "cancelled"
	HistoryActionExpired   BookingHistoryAction = "expired"
	HistoryActionRefunded  BookingHistoryAction = "refunded"
)

// BookingHistoryEntry is one row of the append-only audit trail. Entries are
// only ever inserted; there is no update or delete path.
type BookingHistoryEntry struct {
	ID        int64
	BookingID uuid.UUID
	Action    BookingHistoryAction
	ActorID   *uuid.UUID
	Metadata  map[string]string
	CreatedAt time.Time
}
