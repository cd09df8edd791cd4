package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cinetick/seat-reservation-core/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

func (p *PostgresBookingRepository) Create(
	ctx context.Context,
	params domain.CreateBookingParams,
	now time.Time) (*domain.Booking, error) {

	booking := domain.Booking{
		Reference: params.Reference,
		UserID:    params.UserID,
		ShowingID: params.ShowingID,
		Status:    domain.BookingStatusPending,
		Notes:     params.Notes,
		ExpiresAt: params.ExpiresAt,
	}

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		showing, err := getShowing(ctx, tx, params.ShowingID)
		if err != nil {
			return err
		}

		seats, err := getScreenSeats(ctx, tx, showing.ScreenID, params.SeatIDs)
		if err != nil {
			return err
		}

		blocked := make([]uuid.UUID, 0)

		for _, seat := range seats {
			if seat.Status != domain.SeatStatusAvailable {
				blocked = append(blocked, seat.ID)
			}
		}

		if len(blocked) > 0 {
			return &domain.SeatUnavailableError{ShowingID: params.ShowingID, SeatIDs: blocked}
		}

		// Claim every seat through the same CAS the hold path uses. Seats
		// arrive sorted by id, so two concurrent bookings touching the same
		// seats lock them in the same order and cannot deadlock. Claims are
		// consumed at the end of the transaction once the durable booking
		// rows exist.
		lost := make([]uuid.UUID, 0)

		for _, seat := range seats {
			var claimID uuid.UUID
			var claimCreated, claimExpires time.Time

			err := tx.QueryRow(
				ctx,
				claimSeatQuery,
				params.ShowingID,
				seat.ID,
				params.UserID,
				"",
				params.ExpiresAt,
				now).Scan(&claimID, &claimCreated, &claimExpires)

			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					lost = append(lost, seat.ID)
					continue
				}

				if isForeignKeyViolation(err) {
					return domain.ErrRecordNotFound
				}

				return err
			}
		}

		if len(lost) > 0 {
			return &domain.SeatUnavailableError{ShowingID: params.ShowingID, SeatIDs: lost}
		}

		booked, err := liveBookedSeats(ctx, tx, params.ShowingID, params.SeatIDs, now)
		if err != nil {
			return err
		}

		if len(booked) > 0 {
			return &domain.SeatUnavailableError{ShowingID: params.ShowingID, SeatIDs: booked}
		}

		booking.TotalAmount = decimal.Zero

		bookedSeats := make([]domain.BookedSeat, 0, len(seats))

		for _, seat := range seats {
			price := showing.SeatPrice(seat.Seat)
			booking.TotalAmount = booking.TotalAmount.Add(price)

			bookedSeats = append(bookedSeats, domain.BookedSeat{
				SeatID:     seat.ID,
				RowLabel:   seat.RowLabel,
				SeatNumber: seat.SeatNumber,
				PricePaid:  price,
			})
		}

		query := `
			INSERT INTO bookings (reference, user_id, showing_id, status, total_amount, notes, expires_at)
			VALUES ($1, $2, $3, 'PENDING', $4, $5, $6)
			RETURNING id, created_at, version
		`

		err = tx.QueryRow(
			ctx,
			query,
			booking.Reference,
			booking.UserID,
			booking.ShowingID,
			decimalToNumeric(booking.TotalAmount),
			booking.Notes,
			booking.ExpiresAt).Scan(&booking.ID, &booking.CreatedAt, &booking.Version)

		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(bookedSeats))
		for _, seat := range bookedSeats {
			rows = append(rows, []any{
				booking.ID,
				seat.SeatID,
				decimalToNumeric(seat.PricePaid),
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"booked_seats"},
			[]string{"booking_id", "seat_id", "price_paid"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return err
		}

		for i := range bookedSeats {
			bookedSeats[i].BookingID = booking.ID
		}
		booking.Seats = bookedSeats

		entry, err := appendHistory(ctx, tx, booking.ID, domain.HistoryActionCreated, &params.UserID, map[string]string{
			"seat_count":   strconv.Itoa(len(bookedSeats)),
			"total_amount": booking.TotalAmount.String(),
		})
		if err != nil {
			return err
		}

		booking.History = []domain.BookingHistoryEntry{*entry}

		// The booking rows now shield the seats, so the claim rows have done
		// their job.
		release := `
			DELETE FROM seat_reservations
			WHERE showing_id = $1 AND seat_id = ANY($2::uuid[])
		`

		_, err = tx.Exec(ctx, release, params.ShowingID, uuidStrings(params.SeatIDs))

		return err
	})

	if err != nil {
		return nil, err
	}

	return &booking, nil
}

func getShowing(ctx context.Context, tx pgx.Tx, showingID uuid.UUID) (*domain.Showing, error) {
	query := `
		SELECT sh.id, sh.screen_id, sc.name, sh.starts_at, sh.ends_at, sh.base_price
		FROM showings sh
		JOIN screens sc ON sc.id = sh.screen_id
		WHERE sh.id = $1
	`

	var showing domain.Showing
	var basePrice pgtype.Numeric

	err := tx.QueryRow(ctx, query, showingID).Scan(
		&showing.ID,
		&showing.ScreenID,
		&showing.ScreenName,
		&showing.StartsAt,
		&showing.EndsAt,
		&basePrice,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	showing.BasePrice = numericToDecimal(basePrice)

	return &showing, nil
}

type screenSeat struct {
	domain.Seat
}

// getScreenSeats loads the requested seats of the screen in id order. A
// missing seat means the caller referenced a seat that does not belong to
// this showing's screen.
func getScreenSeats(
	ctx context.Context,
	tx pgx.Tx,
	screenID uuid.UUID,
	seatIDs []uuid.UUID) ([]screenSeat, error) {

	query := `
		SELECT id, screen_id, row_label, seat_number, seat_type, status, extra_price
		FROM seats
		WHERE screen_id = $1 AND id = ANY($2::uuid[])
		ORDER BY id
	`

	rows, err := tx.Query(ctx, query, screenID, uuidStrings(seatIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]screenSeat, 0, len(seatIDs))

	for rows.Next() {
		var seat screenSeat
		var extraPrice pgtype.Numeric

		err = rows.Scan(
			&seat.ID,
			&seat.ScreenID,
			&seat.RowLabel,
			&seat.SeatNumber,
			&seat.Type,
			&seat.Status,
			&extraPrice,
		)

		if err != nil {
			return nil, err
		}

		seat.ExtraPrice = numericToDecimal(extraPrice)
		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(seats) != len(seatIDs) {
		return nil, domain.ErrRecordNotFound
	}

	return seats, nil
}

func appendHistory(
	ctx context.Context,
	tx pgx.Tx,
	bookingID uuid.UUID,
	action domain.BookingHistoryAction,
	actorID *uuid.UUID,
	metadata map[string]string) (*domain.BookingHistoryEntry, error) {

	query := `
		INSERT INTO booking_history (booking_id, action, actor_id, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	if metadata == nil {
		metadata = map[string]string{}
	}

	entry := domain.BookingHistoryEntry{
		BookingID: bookingID,
		Action:    action,
		ActorID:   actorID,
		Metadata:  metadata,
	}

	err := tx.QueryRow(ctx, query, bookingID, string(action), actorID, metadata).
		Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (p *PostgresBookingRepository) GetByIDAndUser(
	ctx context.Context,
	bookingID, userID uuid.UUID) (*domain.Booking, error) {

	query := `
		SELECT id, reference, user_id, showing_id, status, total_amount,
			payment_method, payment_reference, notes, expires_at,
			confirmed_at, cancelled_at, created_at, version
		FROM bookings
		WHERE id = $1 AND user_id = $2
	`

	booking, err := scanBooking(p.db.QueryRow(ctx, query, bookingID, userID))
	if err != nil {
		return nil, err
	}

	booking.Seats, err = getBookedSeats(ctx, p.db, booking.ID)
	if err != nil {
		return nil, err
	}

	booking.History, err = getBookingHistory(ctx, p.db, booking.ID)
	if err != nil {
		return nil, err
	}

	return booking, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var booking domain.Booking
	var totalAmount pgtype.Numeric

	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.UserID,
		&booking.ShowingID,
		&booking.Status,
		&totalAmount,
		&booking.PaymentMethod,
		&booking.PaymentReference,
		&booking.Notes,
		&booking.ExpiresAt,
		&booking.ConfirmedAt,
		&booking.CancelledAt,
		&booking.CreatedAt,
		&booking.Version,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	booking.TotalAmount = numericToDecimal(totalAmount)

	return &booking, nil
}

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getBookedSeats(ctx context.Context, q pgxQuerier, bookingID uuid.UUID) ([]domain.BookedSeat, error) {
	query := `
		SELECT bs.id, bs.booking_id, bs.seat_id, s.row_label, s.seat_number, bs.price_paid
		FROM booked_seats bs
		JOIN seats s ON s.id = bs.seat_id
		WHERE bs.booking_id = $1
		ORDER BY s.row_label, s.seat_number
	`

	rows, err := q.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.BookedSeat, 0)

	for rows.Next() {
		var seat domain.BookedSeat
		var pricePaid pgtype.Numeric

		err = rows.Scan(
			&seat.ID,
			&seat.BookingID,
			&seat.SeatID,
			&seat.RowLabel,
			&seat.SeatNumber,
			&pricePaid,
		)

		if err != nil {
			return nil, err
		}

		seat.PricePaid = numericToDecimal(pricePaid)
		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func getBookingHistory(ctx context.Context, q pgxQuerier, bookingID uuid.UUID) ([]domain.BookingHistoryEntry, error) {
	query := `
		SELECT id, booking_id, action, actor_id, metadata, created_at
		FROM booking_history
		WHERE booking_id = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]domain.BookingHistoryEntry, 0)

	for rows.Next() {
		var entry domain.BookingHistoryEntry

		err = rows.Scan(
			&entry.ID,
			&entry.BookingID,
			&entry.Action,
			&entry.ActorID,
			&entry.Metadata,
			&entry.CreatedAt,
		)

		if err != nil {
			return nil, err
		}

		history = append(history, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}

func (p *PostgresBookingRepository) GetSummariesByUser(
	ctx context.Context,
	userID uuid.UUID,
	pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			b.id,
			b.reference,
			b.showing_id,
			b.status,
			b.total_amount,
			(SELECT COUNT(*) FROM booked_seats bs WHERE bs.booking_id = b.id),
			sh.starts_at,
			b.expires_at,
			b.created_at
		FROM bookings b
		JOIN showings sh ON sh.id = b.showing_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	summaries := make([]domain.BookingSummary, 0)
	totalRecords := 0

	for rows.Next() {
		var summary domain.BookingSummary
		var totalAmount pgtype.Numeric

		err = rows.Scan(
			&totalRecords,
			&summary.ID,
			&summary.Reference,
			&summary.ShowingID,
			&summary.Status,
			&totalAmount,
			&summary.SeatCount,
			&summary.ShowingTime,
			&summary.ExpiresAt,
			&summary.CreatedAt,
		)

		if err != nil {
			return nil, nil, err
		}

		summary.TotalAmount = numericToDecimal(totalAmount)
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return summaries, metadata, nil
}

func (p *PostgresBookingRepository) Confirm(
	ctx context.Context,
	params domain.ConfirmBookingParams,
	now time.Time) (*domain.Booking, error) {

	var booking *domain.Booking
	var stateErr error

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		b, err := getBookingForUpdate(ctx, tx, params.BookingID, params.UserID)
		if err != nil {
			return err
		}

		if b.Status == domain.BookingStatusPending && !b.ExpiresAt.After(now) {
			// Lazy expiry: the confirm attempt is what noticed the aged-out
			// booking, so persist the EXPIRED transition before failing. The
			// error is returned outside the closure so the write commits.
			if err := expireBooking(ctx, tx, b); err != nil {
				return err
			}

			stateErr = &domain.BookingExpiredError{BookingID: b.ID, ExpiredAt: b.ExpiresAt}

			return nil
		}

		if !b.Status.CanTransitionTo(domain.BookingStatusConfirmed) {
			stateErr = &domain.InvalidTransitionError{
				Current:   b.Status,
				Attempted: domain.BookingStatusConfirmed,
			}

			return nil
		}

		query := `
			UPDATE bookings
			SET status = 'CONFIRMED', confirmed_at = $1, payment_method = $2,
				payment_reference = $3, updated_at = now(), version = version + 1
			WHERE id = $4
			RETURNING version
		`

		err = tx.QueryRow(
			ctx,
			query,
			now,
			params.PaymentMethod,
			params.PaymentReference,
			b.ID).Scan(&b.Version)

		if err != nil {
			return err
		}

		b.Status = domain.BookingStatusConfirmed
		b.ConfirmedAt = &now
		b.PaymentMethod = params.PaymentMethod
		b.PaymentReference = params.PaymentReference

		_, err = appendHistory(ctx, tx, b.ID, domain.HistoryActionConfirmed, &params.UserID, map[string]string{
			"payment_method":    params.PaymentMethod,
			"payment_reference": params.PaymentReference,
		})
		if err != nil {
			return err
		}

		if err := loadBookingDetails(ctx, tx, b); err != nil {
			return err
		}

		booking = b

		return nil
	})

	if err != nil {
		return nil, err
	}

	if stateErr != nil {
		return nil, stateErr
	}

	return booking, nil
}

func (p *PostgresBookingRepository) Cancel(
	ctx context.Context,
	params domain.CancelBookingParams,
	now time.Time) (*domain.Booking, error) {

	var booking *domain.Booking
	var stateErr error

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		b, err := getBookingForUpdate(ctx, tx, params.BookingID, params.UserID)
		if err != nil {
			return err
		}

		if b.Status == domain.BookingStatusPending && !b.ExpiresAt.After(now) {
			if err := expireBooking(ctx, tx, b); err != nil {
				return err
			}

			stateErr = &domain.InvalidTransitionError{
				Current:   domain.BookingStatusExpired,
				Attempted: domain.BookingStatusCancelled,
			}

			return nil
		}

		if b.Status != domain.BookingStatusConfirmed {
			stateErr = &domain.InvalidTransitionError{
				Current:   b.Status,
				Attempted: domain.BookingStatusCancelled,
				Reason:    "only confirmed bookings can be cancelled",
			}

			return nil
		}

		startsAt, err := getShowingStart(ctx, tx, b.ShowingID)
		if err != nil {
			return err
		}

		if !startsAt.After(now) {
			stateErr = &domain.InvalidTransitionError{
				Current:   b.Status,
				Attempted: domain.BookingStatusCancelled,
				Reason:    "showing has already started",
			}

			return nil
		}

		query := `
			UPDATE bookings
			SET status = 'CANCELLED', cancelled_at = $1, updated_at = now(), version = version + 1
			WHERE id = $2
			RETURNING version
		`

		if err := tx.QueryRow(ctx, query, now, b.ID).Scan(&b.Version); err != nil {
			return err
		}

		b.Status = domain.BookingStatusCancelled
		b.CancelledAt = &now

		_, err = appendHistory(ctx, tx, b.ID, domain.HistoryActionCancelled, &params.UserID, map[string]string{
			"reason": params.Reason,
		})
		if err != nil {
			return err
		}

		// The refund itself happens in the payment system; the ledger records
		// that one is owed against the original payment.
		_, err = appendHistory(ctx, tx, b.ID, domain.HistoryActionRefunded, nil, map[string]string{
			"payment_reference": b.PaymentReference,
			"amount":            b.TotalAmount.String(),
		})
		if err != nil {
			return err
		}

		if err := loadBookingDetails(ctx, tx, b); err != nil {
			return err
		}

		booking = b

		return nil
	})

	if err != nil {
		return nil, err
	}

	if stateErr != nil {
		return nil, stateErr
	}

	return booking, nil
}

func getBookingForUpdate(
	ctx context.Context,
	tx pgx.Tx,
	bookingID, userID uuid.UUID) (*domain.Booking, error) {

	query := `
		SELECT id, reference, user_id, showing_id, status, total_amount,
			payment_method, payment_reference, notes, expires_at,
			confirmed_at, cancelled_at, created_at, version
		FROM bookings
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`

	return scanBooking(tx.QueryRow(ctx, query, bookingID, userID))
}

func getShowingStart(ctx context.Context, tx pgx.Tx, showingID uuid.UUID) (time.Time, error) {
	var startsAt time.Time

	err := tx.QueryRow(ctx, `SELECT starts_at FROM showings WHERE id = $1`, showingID).Scan(&startsAt)
	if err != nil {
		return time.Time{}, err
	}

	return startsAt, nil
}

func expireBooking(ctx context.Context, tx pgx.Tx, b *domain.Booking) error {
	query := `
		UPDATE bookings
		SET status = 'EXPIRED', updated_at = now(), version = version + 1
		WHERE id = $1
		RETURNING version
	`

	if err := tx.QueryRow(ctx, query, b.ID).Scan(&b.Version); err != nil {
		return err
	}

	b.Status = domain.BookingStatusExpired

	_, err := appendHistory(ctx, tx, b.ID, domain.HistoryActionExpired, nil, nil)

	return err
}

func loadBookingDetails(ctx context.Context, tx pgx.Tx, b *domain.Booking) error {
	seats, err := getBookedSeats(ctx, tx, b.ID)
	if err != nil {
		return err
	}

	history, err := getBookingHistory(ctx, tx, b.ID)
	if err != nil {
		return err
	}

	b.Seats = seats
	b.History = history

	return nil
}

func (p *PostgresBookingRepository) ExpirePending(
	ctx context.Context,
	now time.Time) ([]domain.ExpiredBooking, error) {

	expired := make([]domain.ExpiredBooking, 0)

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE bookings
			SET status = 'EXPIRED', updated_at = now(), version = version + 1
			WHERE status = 'PENDING' AND expires_at <= $1
			RETURNING id, user_id, showing_id
		`

		rows, err := tx.Query(ctx, query, now)
		if err != nil {
			return err
		}

		index := make(map[uuid.UUID]int)

		for rows.Next() {
			var b domain.ExpiredBooking

			if err := rows.Scan(&b.ID, &b.UserID, &b.ShowingID); err != nil {
				rows.Close()
				return err
			}

			index[b.ID] = len(expired)
			expired = append(expired, b)
		}

		rows.Close()

		if err := rows.Err(); err != nil {
			return err
		}

		if len(expired) == 0 {
			return nil
		}

		bookingIDs := make([]uuid.UUID, 0, len(expired))
		for _, b := range expired {
			bookingIDs = append(bookingIDs, b.ID)
		}

		seatsQuery := `
			SELECT booking_id, seat_id
			FROM booked_seats
			WHERE booking_id = ANY($1::uuid[])
		`

		seatRows, err := tx.Query(ctx, seatsQuery, uuidStrings(bookingIDs))
		if err != nil {
			return err
		}
		defer seatRows.Close()

		for seatRows.Next() {
			var bookingID, seatID uuid.UUID

			if err := seatRows.Scan(&bookingID, &seatID); err != nil {
				return err
			}

			if i, ok := index[bookingID]; ok {
				expired[i].SeatIDs = append(expired[i].SeatIDs, seatID)
			}
		}

		if err := seatRows.Err(); err != nil {
			return err
		}

		historyRows := make([][]any, 0, len(expired))
		for _, b := range expired {
			historyRows = append(historyRows, []any{
				b.ID,
				string(domain.HistoryActionExpired),
				nil,
				[]byte(`{}`),
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"booking_history"},
			[]string{"booking_id", "action", "actor_id", "metadata"},
			pgx.CopyFromRows(historyRows),
		)

		return err
	})

	if err != nil {
		return nil, err
	}

	return expired, nil
}
