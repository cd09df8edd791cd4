package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cinetick/seat-reservation-core/api"
	"github.com/cinetick/seat-reservation-core/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// availabilityCacheTTL bounds how stale a cached seat map may get. The cache
// only ever under-reports availability between invalidations, so a short TTL
// is enough to keep the map honest.
const availabilityCacheTTL = 30 * time.Second

func availabilityCacheKey(showingID uuid.UUID) string {
	return fmt.Sprintf("availability:%s", showingID)
}

func (app *Application) showingAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	showingID, err := app.readUUIDParam(r, "showingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if resp, ok := app.cachedAvailability(r.Context(), showingID); ok {
		err = app.writeJSON(w, http.StatusOK, resp, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	seatMap, err := app.availabilityRepo.GetSeatMap(r.Context(), showingID, app.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := toAvailabilityResponse(seatMap)
	app.cacheAvailability(r.Context(), showingID, resp)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) seatAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	showingID, err := app.readUUIDParam(r, "showingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	seatID, err := app.readUUIDParam(r, "seatID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	available, err := app.availabilityRepo.IsSeatAvailable(r.Context(), showingID, seatID, app.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := api.SeatAvailabilityResponse{
		ShowingId: showingID,
		SeatId:    seatID,
		Available: available,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// cachedAvailability reads the seat map response from Redis. Cache failures
// count as misses so the database stays the authority.
func (app *Application) cachedAvailability(ctx context.Context, showingID uuid.UUID) (*api.AvailabilityResponse, bool) {
	payload, err := app.redis.Get(ctx, availabilityCacheKey(showingID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			app.logger.Error("failed to read availability cache", "error", err)
		}

		return nil, false
	}

	var resp api.AvailabilityResponse

	err = json.Unmarshal(payload, &resp)
	if err != nil {
		app.logger.Error("failed to decode cached availability", "error", err)
		return nil, false
	}

	return &resp, true
}

func (app *Application) cacheAvailability(ctx context.Context, showingID uuid.UUID, resp api.AvailabilityResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		app.logger.Error("failed to encode availability for caching", "error", err)
		return
	}

	err = app.redis.Set(ctx, availabilityCacheKey(showingID), payload, availabilityCacheTTL).Err()
	if err != nil {
		app.logger.Error("failed to cache availability", "error", err)
	}
}

// invalidateAvailability drops the cached seat maps of the given showings
// after a mutation changed what is available.
func (app *Application) invalidateAvailability(ctx context.Context, showingIDs ...uuid.UUID) {
	if len(showingIDs) == 0 {
		return
	}

	keys := make([]string, len(showingIDs))
	for i, id := range showingIDs {
		keys[i] = availabilityCacheKey(id)
	}

	err := app.redis.Del(ctx, keys...).Err()
	if err != nil {
		app.logger.Error("failed to invalidate availability cache", "error", err)
	}
}

func toAvailabilityResponse(seatMap *domain.ShowingSeatMap) api.AvailabilityResponse {
	return api.AvailabilityResponse{
		ShowingId:        seatMap.Showing.ID,
		ScreenId:         seatMap.Showing.ScreenID,
		ScreenName:       seatMap.Showing.ScreenName,
		StartsAt:         seatMap.Showing.StartsAt,
		EndsAt:           seatMap.Showing.EndsAt,
		BasePrice:        seatMap.Showing.BasePrice,
		AvailableSeatIds: seatMap.AvailableSeatIDs(),
		SeatRows:         toSeatRows(seatMap.Seats),
	}
}

func toSeatRows(seats []domain.SeatAvailability) []api.SeatRow {
	// Seats are pre-sorted by row,seat number (ascending).
	// This allows us to process them in a single pass without additional sorting or mapping.

	if len(seats) == 0 {
		return nil
	}

	var seatRows []api.SeatRow
	currentRow := api.SeatRow{Row: seats[0].RowLabel}

	for _, v := range seats {
		if v.RowLabel != currentRow.Row {
			seatRows = append(seatRows, currentRow)
			currentRow = api.SeatRow{Row: v.RowLabel}
		}

		currentRow.Seats = append(currentRow.Seats, api.Seat{
			Id:           v.ID,
			Row:          v.RowLabel,
			SeatNumber:   v.SeatNumber,
			Type:         string(v.Type),
			ExtraPrice:   v.ExtraPrice,
			Price:        v.Price,
			Available:    v.Available,
			IsAccessible: v.IsAccessible,
			IsCouple:     v.IsCouple,
			PosX:         v.PosX,
			PosY:         v.PosY,
		})
	}

	seatRows = append(seatRows, currentRow)

	return seatRows
}
