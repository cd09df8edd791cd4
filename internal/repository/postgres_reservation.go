package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cinetick/seat-reservation-core/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresReservationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReservationRepository(db *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{
		db: db,
	}
}

// claimSeatQuery is the compare-and-set at the core of the reservation
// system. The unique constraint on (showing_id, seat_id) serializes
// concurrent claimers; the DO UPDATE predicate admits the new claim only when
// the existing row is expired or owned by the same user. Losers affect zero
// rows and get no RETURNING result.
const claimSeatQuery = `
	INSERT INTO seat_reservations (showing_id, seat_id, user_id, session_token, expires_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT ON CONSTRAINT seat_reservations_showing_seat_key DO UPDATE
	SET user_id = EXCLUDED.user_id,
		session_token = EXCLUDED.session_token,
		created_at = now(),
		expires_at = EXCLUDED.expires_at
	WHERE seat_reservations.expires_at <= $6
		OR seat_reservations.user_id = EXCLUDED.user_id
	RETURNING id, created_at, expires_at
`

// liveBookedSeatsQuery finds seats of the showing already committed to a live
// booking. An expired PENDING booking no longer blocks its seats, even before
// the sweep has persisted the transition.
const liveBookedSeatsQuery = `
	SELECT bs.seat_id
	FROM booked_seats bs
	JOIN bookings b ON b.id = bs.booking_id
	WHERE b.showing_id = $1
		AND bs.seat_id = ANY($2::uuid[])
		AND (b.status = 'CONFIRMED' OR (b.status = 'PENDING' AND b.expires_at > $3))
`

func (p *PostgresReservationRepository) CreateHold(
	ctx context.Context,
	params domain.CreateHoldParams,
	now time.Time) (*domain.SeatReservation, error) {

	hold := domain.SeatReservation{
		ShowingID:    params.ShowingID,
		SeatID:       params.SeatID,
		UserID:       params.UserID,
		SessionToken: params.SessionToken,
	}

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			SELECT s.status
			FROM seats s
			JOIN showings sh ON sh.screen_id = s.screen_id
			WHERE sh.id = $1 AND s.id = $2
		`

		var status domain.SeatStatus

		err := tx.QueryRow(ctx, query, params.ShowingID, params.SeatID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		if status != domain.SeatStatusAvailable {
			return &domain.SeatUnavailableError{
				ShowingID: params.ShowingID,
				SeatIDs:   []uuid.UUID{params.SeatID},
			}
		}

		err = tx.QueryRow(
			ctx,
			claimSeatQuery,
			params.ShowingID,
			params.SeatID,
			params.UserID,
			params.SessionToken,
			params.ExpiresAt,
			now).Scan(&hold.ID, &hold.CreatedAt, &hold.ExpiresAt)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &domain.SeatUnavailableError{
					ShowingID: params.ShowingID,
					SeatIDs:   []uuid.UUID{params.SeatID},
				}
			}

			if isForeignKeyViolation(err) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		// The claim row protects against concurrent holds, but a committed
		// booking also blocks the seat. Checking here, while the claim row is
		// locked, closes the gap; a conflict rolls the claim back with the tx.
		booked, err := liveBookedSeats(ctx, tx, params.ShowingID, []uuid.UUID{params.SeatID}, now)
		if err != nil {
			return err
		}

		if len(booked) > 0 {
			return &domain.SeatUnavailableError{
				ShowingID: params.ShowingID,
				SeatIDs:   booked,
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &hold, nil
}

func liveBookedSeats(
	ctx context.Context,
	tx pgx.Tx,
	showingID uuid.UUID,
	seatIDs []uuid.UUID,
	now time.Time) ([]uuid.UUID, error) {

	rows, err := tx.Query(ctx, liveBookedSeatsQuery, showingID, uuidStrings(seatIDs), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	booked := make([]uuid.UUID, 0)

	for rows.Next() {
		var seatID uuid.UUID

		if err := rows.Scan(&seatID); err != nil {
			return nil, err
		}

		booked = append(booked, seatID)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return booked, nil
}

func (p *PostgresReservationRepository) ExtendHold(
	ctx context.Context,
	holdID, userID uuid.UUID,
	expiresAt time.Time,
	now time.Time) (*domain.SeatReservation, error) {

	query := `
		UPDATE seat_reservations
		SET expires_at = $1
		WHERE id = $2 AND user_id = $3 AND expires_at > $4
		RETURNING id, showing_id, seat_id, user_id, session_token, created_at, expires_at
	`

	var hold domain.SeatReservation

	err := p.db.QueryRow(ctx, query, expiresAt, holdID, userID, now).Scan(
		&hold.ID,
		&hold.ShowingID,
		&hold.SeatID,
		&hold.UserID,
		&hold.SessionToken,
		&hold.CreatedAt,
		&hold.ExpiresAt,
	)

	if err != nil {
		// An expired hold cannot be revived, so it reads the same as a
		// missing one.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &hold, nil
}

func (p *PostgresReservationRepository) ReleaseHold(
	ctx context.Context,
	holdID, userID uuid.UUID) (*domain.SeatReservation, error) {

	query := `
		DELETE FROM seat_reservations
		WHERE id = $1 AND user_id = $2
		RETURNING id, showing_id, seat_id, user_id, session_token, created_at, expires_at
	`

	var hold domain.SeatReservation

	err := p.db.QueryRow(ctx, query, holdID, userID).Scan(
		&hold.ID,
		&hold.ShowingID,
		&hold.SeatID,
		&hold.UserID,
		&hold.SessionToken,
		&hold.CreatedAt,
		&hold.ExpiresAt,
	)

	if err != nil {
		// Releasing an already-gone hold is not an error.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &hold, nil
}

func (p *PostgresReservationRepository) GetLiveHoldsByUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time) ([]domain.SeatReservation, error) {

	query := `
		SELECT id, showing_id, seat_id, user_id, session_token, created_at, expires_at
		FROM seat_reservations
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY expires_at
	`

	rows, err := p.db.Query(ctx, query, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holds := make([]domain.SeatReservation, 0)

	for rows.Next() {
		var hold domain.SeatReservation

		err = rows.Scan(
			&hold.ID,
			&hold.ShowingID,
			&hold.SeatID,
			&hold.UserID,
			&hold.SessionToken,
			&hold.CreatedAt,
			&hold.ExpiresAt,
		)

		if err != nil {
			return nil, err
		}

		holds = append(holds, hold)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return holds, nil
}

func (p *PostgresReservationRepository) DeleteExpired(
	ctx context.Context,
	now time.Time) ([]uuid.UUID, error) {

	query := `
		WITH deleted AS (
			DELETE FROM seat_reservations
			WHERE expires_at <= $1
			RETURNING showing_id
		)
		SELECT DISTINCT showing_id FROM deleted
	`

	rows, err := p.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	showingIDs := make([]uuid.UUID, 0)

	for rows.Next() {
		var showingID uuid.UUID

		if err := rows.Scan(&showingID); err != nil {
			return nil, err
		}

		showingIDs = append(showingIDs, showingID)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return showingIDs, nil
}
