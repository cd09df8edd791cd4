package app

import (
	"context"
	"time"

	"github.com/cinetick/seat-reservation-core/internal/domain"
	"github.com/google/uuid"
)

const (
	sweepLockKey = "sweep:leader"
	sweepLockTTL = 30 * time.Second
)

// runSweeper periodically persists the expiry of holds and PENDING bookings.
// Reads are already correct without it through lazy expiry; the sweep keeps
// the tables tidy and emits the booking.expired events.
func (app *Application) runSweeper(ctx context.Context) {
	if app.config.Sweeper.Interval <= 0 {
		app.logger.Info("expiry sweep disabled")
		return
	}

	ticker := time.NewTicker(app.config.Sweeper.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.SweepExpired(ctx)
		}
	}
}

// SweepExpired runs a single sweep pass. A short-lived Redis lock elects one
// instance per pass; the sweep itself is idempotent, so losing the lock to a
// Redis hiccup only costs duplicate work.
func (app *Application) SweepExpired(ctx context.Context) {
	acquired, err := app.redis.SetNX(ctx, sweepLockKey, uuid.New().String(), sweepLockTTL).Result()
	if err != nil {
		app.logger.Error("failed to acquire sweep lock, sweeping anyway", "error", err)
	} else if !acquired {
		return
	}

	now := app.clock.Now()

	staleShowings := make(map[uuid.UUID]bool)

	showingIDs, err := app.reservationRepo.DeleteExpired(ctx, now)
	if err != nil {
		app.logger.Error("failed to delete expired holds", "error", err)
	}

	for _, id := range showingIDs {
		staleShowings[id] = true
	}

	expired, err := app.bookingRepo.ExpirePending(ctx, now)
	if err != nil {
		app.logger.Error("failed to expire pending bookings", "error", err)
	}

	app.metrics.bookingsExpired.Add(ctx, int64(len(expired)))

	for _, booking := range expired {
		staleShowings[booking.ShowingID] = true

		app.publishEvent(ctx, domain.LifecycleEvent{
			Type:       domain.EventBookingExpired,
			OccurredAt: now,
			UserID:     booking.UserID,
			ShowingID:  booking.ShowingID,
			SeatIDs:    booking.SeatIDs,
			BookingID:  &booking.ID,
		})
	}

	if len(staleShowings) == 0 {
		return
	}

	stale := make([]uuid.UUID, 0, len(staleShowings))
	for id := range staleShowings {
		stale = append(stale, id)
	}

	app.invalidateAvailability(ctx, stale...)

	app.logger.Info("expiry sweep completed",
		"expired_bookings", len(expired),
		"stale_showings", len(stale),
	)
}
