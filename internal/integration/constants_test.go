package integration_test

import (
	"github.com/google/uuid"
)

// Fixture ids, matching the rows inserted by the testdata scripts. The
// patterned values keep SQL and assertions greppable.
var (
	TestUserID  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	OtherUserID = uuid.MustParse("22222222-2222-2222-2222-222222222222")

	MainScreenID  = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	OtherScreenID = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")

	// Screen 1 layout: row A holds three standard seats, row B a VIP seat and
	// a seat closed for maintenance.
	SeatA1ID = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001")
	SeatA2ID = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
	SeatA3ID = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000003")
	SeatB1ID = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000004")
	SeatB2ID = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000005")

	// The only seat of screen 2, for cross-screen booking attempts.
	SeatC1ID = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000006")

	// EveningShowingID starts two hours after testStart; MatineeShowingID
	// started an hour before it.
	EveningShowingID = uuid.MustParse("cccccccc-0000-0000-0000-000000000001")
	MatineeShowingID = uuid.MustParse("cccccccc-0000-0000-0000-000000000002")

	// Holds seeded by holds_up.sql: two live holds of the test user, a live
	// hold of the other user on A2, and an expired hold of the other user on
	// A3.
	UserHoldA1ID    = uuid.MustParse("dddddddd-0000-0000-0000-000000000001")
	UserHoldB1ID    = uuid.MustParse("dddddddd-0000-0000-0000-000000000002")
	OtherHoldA2ID   = uuid.MustParse("dddddddd-0000-0000-0000-000000000003")
	ExpiredHoldA3ID = uuid.MustParse("dddddddd-0000-0000-0000-000000000004")

	// Bookings seeded by bookings_up.sql.
	ConfirmedBookingID = uuid.MustParse("eeeeeeee-0000-0000-0000-000000000001")
	PendingBookingID   = uuid.MustParse("eeeeeeee-0000-0000-0000-000000000002")
	LapsedBookingID    = uuid.MustParse("eeeeeeee-0000-0000-0000-000000000003")
	MatineeBookingID   = uuid.MustParse("eeeeeeee-0000-0000-0000-000000000004")
)

const (
	ConfirmedBookingRef = "AAAABBBBCCCCDDDDEEEEFFFF00000001"
	PendingBookingRef   = "AAAABBBBCCCCDDDDEEEEFFFF00000002"
	LapsedBookingRef    = "AAAABBBBCCCCDDDDEEEEFFFF00000003"
	MatineeBookingRef   = "AAAABBBBCCCCDDDDEEEEFFFF00000004"
)
