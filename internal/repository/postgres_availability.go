package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cinetick/seat-reservation-core/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresAvailabilityRepository struct {
	db *pgxpool.Pool
}

func NewPostgresAvailabilityRepository(db *pgxpool.Pool) *PostgresAvailabilityRepository {
	return &PostgresAvailabilityRepository{
		db: db,
	}
}

// seatTakenPredicate marks a seat as taken when a live hold or a live booking
// covers it. Expired rows are invisible to the predicate, which is what makes
// read-side expiry lazy: nothing needs to delete a hold before its seat shows
// up as available again.
const seatTakenPredicate = `
	EXISTS (
		SELECT 1 FROM seat_reservations sr
		WHERE sr.showing_id = $1 AND sr.seat_id = s.id AND sr.expires_at > $2
	)
	OR EXISTS (
		SELECT 1 FROM booked_seats bs
		JOIN bookings b ON b.id = bs.booking_id
		WHERE b.showing_id = $1 AND bs.seat_id = s.id
			AND (b.status = 'CONFIRMED' OR (b.status = 'PENDING' AND b.expires_at > $2))
	)
`

func (p *PostgresAvailabilityRepository) GetSeatMap(
	ctx context.Context,
	showingID uuid.UUID,
	now time.Time) (*domain.ShowingSeatMap, error) {

	showing, err := p.getShowing(ctx, showingID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT s.id, s.screen_id, s.row_label, s.seat_number, s.seat_type, s.status,
			s.extra_price, s.is_accessible, s.is_couple, s.pos_x, s.pos_y,
			NOT (` + seatTakenPredicate + `) AND s.status = 'AVAILABLE' AS available
		FROM seats s
		WHERE s.screen_id = $3
		ORDER BY s.row_label, s.seat_number
	`

	rows, err := p.db.Query(ctx, query, showingID, now, showing.ScreenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seatMap := domain.ShowingSeatMap{
		Showing: *showing,
		Seats:   make([]domain.SeatAvailability, 0),
	}

	for rows.Next() {
		var sa domain.SeatAvailability
		var extraPrice pgtype.Numeric

		err = rows.Scan(
			&sa.ID,
			&sa.ScreenID,
			&sa.RowLabel,
			&sa.SeatNumber,
			&sa.Type,
			&sa.Status,
			&extraPrice,
			&sa.IsAccessible,
			&sa.IsCouple,
			&sa.PosX,
			&sa.PosY,
			&sa.Available,
		)

		if err != nil {
			return nil, err
		}

		sa.ExtraPrice = numericToDecimal(extraPrice)
		sa.Price = showing.SeatPrice(sa.Seat)
		seatMap.Seats = append(seatMap.Seats, sa)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return &seatMap, nil
}

func (p *PostgresAvailabilityRepository) IsSeatAvailable(
	ctx context.Context,
	showingID, seatID uuid.UUID,
	now time.Time) (bool, error) {

	query := `
		SELECT NOT (` + seatTakenPredicate + `) AND s.status = 'AVAILABLE'
		FROM seats s
		JOIN showings sh ON sh.screen_id = s.screen_id
		WHERE sh.id = $1 AND s.id = $3
	`

	var available bool

	err := p.db.QueryRow(ctx, query, showingID, now, seatID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrRecordNotFound
		}

		return false, err
	}

	return available, nil
}

func (p *PostgresAvailabilityRepository) getShowing(
	ctx context.Context,
	showingID uuid.UUID) (*domain.Showing, error) {

	query := `
		SELECT sh.id, sh.screen_id, sc.name, sh.starts_at, sh.ends_at, sh.base_price
		FROM showings sh
		JOIN screens sc ON sc.id = sh.screen_id
		WHERE sh.id = $1
	`

	var showing domain.Showing
	var basePrice pgtype.Numeric

	err := p.db.QueryRow(ctx, query, showingID).Scan(
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
