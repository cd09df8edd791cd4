package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinetick/seat-reservation-core/api"
	"github.com/cinetick/seat-reservation-core/internal/domain"
	"github.com/google/uuid"
)

func (app *Application) createHoldHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showingID, err := app.readUUIDParam(r, "showingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.CreateHoldRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userID := app.contextGetUserID(r)
	now := app.clock.Now()

	hold, err := app.reservationRepo.CreateHold(r.Context(), domain.CreateHoldParams{
		ShowingID:    showingID,
		SeatID:       input.SeatId,
		UserID:       userID,
		SessionToken: input.SessionToken,
		ExpiresAt:    now.Add(domain.HoldTTL),
	}, now)

	if err != nil {
		var seatErr *domain.SeatUnavailableError

		switch {
		case errors.As(err, &seatErr):
			logger.Warn("hold rejected: seat is taken", "seat_id", input.SeatId)
			app.metrics.seatConflicts.Add(r.Context(), 1)
			app.seatUnavailableResponse(w, r, seatErr)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.metrics.holdsCreated.Add(r.Context(), 1)
	app.invalidateAvailability(r.Context(), showingID)

	app.publishEvent(r.Context(), domain.LifecycleEvent{
		Type:          domain.EventHoldCreated,
		OccurredAt:    now,
		UserID:        userID,
		ShowingID:     showingID,
		SeatIDs:       []uuid.UUID{input.SeatId},
		ReservationID: &hold.ID,
	})

	resp := toHoldResponse(hold)

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) extendHoldHandler(w http.ResponseWriter, r *http.Request) {
	holdID, err := app.readUUIDParam(r, "holdID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.ExtendHoldRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	extension := domain.HoldTTL
	if input.Minutes > 0 {
		extension = time.Duration(input.Minutes) * time.Minute
	}

	userID := app.contextGetUserID(r)
	now := app.clock.Now()

	hold, err := app.reservationRepo.ExtendHold(r.Context(), holdID, userID, now.Add(extension), now)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := toHoldResponse(hold)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) releaseHoldHandler(w http.ResponseWriter, r *http.Request) {
	holdID, err := app.readUUIDParam(r, "holdID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userID := app.contextGetUserID(r)
	now := app.clock.Now()

	hold, err := app.reservationRepo.ReleaseHold(r.Context(), holdID, userID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// Releasing an unknown or already-released hold is a success: the end
	// state the caller asked for is the state we are in. An expired hold is
	// deleted quietly too; its seat already read as free.
	if hold != nil && hold.Live(now) {
		app.invalidateAvailability(r.Context(), hold.ShowingID)

		app.publishEvent(r.Context(), domain.LifecycleEvent{
			Type:          domain.EventHoldReleased,
			OccurredAt:    now,
			UserID:        userID,
			ShowingID:     hold.ShowingID,
			SeatIDs:       []uuid.UUID{hold.SeatID},
			ReservationID: &hold.ID,
		})
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) listHoldsHandler(w http.ResponseWriter, r *http.Request) {
	userID := app.contextGetUserID(r)

	holds, err := app.reservationRepo.GetLiveHoldsByUser(r.Context(), userID, app.clock.Now())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserHoldsResponse{
		Holds: make([]api.HoldResponse, 0, len(holds)),
	}

	for i := range holds {
		resp.Holds = append(resp.Holds, toHoldResponse(&holds[i]))
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toHoldResponse(hold *domain.SeatReservation) api.HoldResponse {
	return api.HoldResponse{
		Id:           hold.ID,
		ShowingId:    hold.ShowingID,
		SeatId:       hold.SeatID,
		SessionToken: hold.SessionToken,
		ExpiresAt:    hold.ExpiresAt,
	}
}
