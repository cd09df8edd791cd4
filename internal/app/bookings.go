package app

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cinetick/seat-reservation-core/api"
	"github.com/cinetick/seat-reservation-core/internal/domain"
	"github.com/google/uuid"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

func (app *Application) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateBookingRequest

	err := app.readJSON(w, r, &input)
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

	booking, err := app.bookingRepo.Create(r.Context(), domain.CreateBookingParams{
		UserID:    userID,
		ShowingID: input.ShowingId,
		SeatIDs:   input.SeatIds,
		Notes:     input.Notes,
		Reference: domain.NewBookingReference(),
		ExpiresAt: now.Add(domain.PendingBookingTTL),
	}, now)

	if err != nil {
		var seatErr *domain.SeatUnavailableError

		switch {
		case errors.As(err, &seatErr):
			logger.Warn("booking rejected: seats are taken", "seat_ids", seatErr.SeatIDs)
			app.metrics.seatConflicts.Add(r.Context(), 1)
			app.seatUnavailableResponse(w, r, seatErr)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.metrics.bookingsCreated.Add(r.Context(), 1)
	app.invalidateAvailability(r.Context(), input.ShowingId)

	app.publishEvent(r.Context(), domain.LifecycleEvent{
		Type:        domain.EventBookingCreated,
		OccurredAt:  now,
		UserID:      userID,
		ShowingID:   input.ShowingId,
		SeatIDs:     input.SeatIds,
		BookingID:   &booking.ID,
		Reference:   booking.Reference,
		TotalAmount: booking.TotalAmount.String(),
	})

	resp := toBookingResponse(booking, now)

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) listBookingsHandler(w http.ResponseWriter, r *http.Request) {
	params := api.ListBookingsParams{}

	if page := r.URL.Query().Get("page"); page != "" {
		pageNum, err := strconv.Atoi(page)
		if err != nil {
			app.badRequestResponse(w, r, errors.New("invalid page parameter"))
			return
		}

		params.Page = &pageNum
	}

	if pageSize := r.URL.Query().Get("pageSize"); pageSize != "" {
		pageSizeNum, err := strconv.Atoi(pageSize)
		if err != nil {
			app.badRequestResponse(w, r, errors.New("invalid pageSize parameter"))
			return
		}

		params.PageSize = &pageSizeNum
	}

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userID := app.contextGetUserID(r)
	now := app.clock.Now()

	summaries, metadata, err := app.bookingRepo.GetSummariesByUser(r.Context(), userID, toPagination(params))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserBookingsResponse{
		Bookings: toBookingSummaries(summaries, now),
		Metadata: *toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) showBookingHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := app.readUUIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userID := app.contextGetUserID(r)

	booking, err := app.bookingRepo.GetByIDAndUser(r.Context(), bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := toBookingDetailResponse(booking, app.clock.Now())

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) confirmBookingHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	bookingID, err := app.readUUIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.ConfirmBookingRequest

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

	booking, err := app.bookingRepo.Confirm(r.Context(), domain.ConfirmBookingParams{
		BookingID:        bookingID,
		UserID:           userID,
		PaymentMethod:    input.PaymentMethod,
		PaymentReference: input.PaymentReference,
	}, now)

	if err != nil {
		var expiredErr *domain.BookingExpiredError
		var transitionErr *domain.InvalidTransitionError

		switch {
		case errors.As(err, &expiredErr):
			logger.Warn("confirmation attempt on expired booking", "booking_id", bookingID)
			app.bookingExpiredResponse(w, r, expiredErr)
		case errors.As(err, &transitionErr):
			app.invalidTransitionResponse(w, r, transitionErr)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.metrics.bookingsConfirmed.Add(r.Context(), 1)

	app.publishEvent(r.Context(), domain.LifecycleEvent{
		Type:        domain.EventBookingConfirmed,
		OccurredAt:  now,
		UserID:      userID,
		ShowingID:   booking.ShowingID,
		SeatIDs:     bookedSeatIDs(booking.Seats),
		BookingID:   &booking.ID,
		Reference:   booking.Reference,
		TotalAmount: booking.TotalAmount.String(),
	})

	resp := toBookingDetailResponse(booking, now)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) cancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	bookingID, err := app.readUUIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.CancelBookingRequest

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

	booking, err := app.bookingRepo.Cancel(r.Context(), domain.CancelBookingParams{
		BookingID: bookingID,
		UserID:    userID,
		Reason:    input.Reason,
	}, now)

	if err != nil {
		var transitionErr *domain.InvalidTransitionError

		switch {
		case errors.As(err, &transitionErr):
			logger.Warn("cancellation rejected", "booking_id", bookingID, "reason", transitionErr.Error())
			app.invalidTransitionResponse(w, r, transitionErr)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.metrics.bookingsCancelled.Add(r.Context(), 1)

	// Cancelling frees the seats, so the cached seat map is stale.
	app.invalidateAvailability(r.Context(), booking.ShowingID)

	app.publishEvent(r.Context(), domain.LifecycleEvent{
		Type:        domain.EventBookingCancelled,
		OccurredAt:  now,
		UserID:      userID,
		ShowingID:   booking.ShowingID,
		SeatIDs:     bookedSeatIDs(booking.Seats),
		BookingID:   &booking.ID,
		Reference:   booking.Reference,
		TotalAmount: booking.TotalAmount.String(),
	})

	resp := toBookingDetailResponse(booking, now)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toPagination(params api.ListBookingsParams) domain.Pagination {
	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}

	return pagination
}

func toBookingResponse(booking *domain.Booking, now time.Time) api.BookingResponse {
	return api.BookingResponse{
		Id:          booking.ID,
		Reference:   booking.Reference,
		ShowingId:   booking.ShowingID,
		Status:      string(booking.StatusAt(now)),
		TotalAmount: booking.TotalAmount,
		Seats:       toBookedSeats(booking.Seats),
		ExpiresAt:   booking.ExpiresAt,
		ConfirmedAt: booking.ConfirmedAt,
		CancelledAt: booking.CancelledAt,
		CreatedAt:   booking.CreatedAt,
	}
}

func toBookingDetailResponse(booking *domain.Booking, now time.Time) api.BookingDetailResponse {
	return api.BookingDetailResponse{
		BookingResponse: toBookingResponse(booking, now),
		History:         toBookingHistory(booking.History),
	}
}

func toBookedSeats(seats []domain.BookedSeat) []api.BookedSeat {
	bookedSeats := make([]api.BookedSeat, len(seats))

	for i, v := range seats {
		bookedSeats[i] = api.BookedSeat{
			SeatId:     v.SeatID,
			Row:        v.RowLabel,
			SeatNumber: v.SeatNumber,
			PricePaid:  v.PricePaid,
		}
	}

	return bookedSeats
}

func toBookingHistory(entries []domain.BookingHistoryEntry) []api.BookingHistoryEntry {
	history := make([]api.BookingHistoryEntry, len(entries))

	for i, v := range entries {
		history[i] = api.BookingHistoryEntry{
			Action:    string(v.Action),
			ActorId:   v.ActorID,
			Metadata:  v.Metadata,
			CreatedAt: v.CreatedAt,
		}
	}

	return history
}

func toBookingSummaries(summaries []domain.BookingSummary, now time.Time) []api.BookingSummary {
	bookingSummaries := make([]api.BookingSummary, len(summaries))

	for i, v := range summaries {
		bookingSummaries[i] = api.BookingSummary{
			Id:          v.ID,
			Reference:   v.Reference,
			ShowingId:   v.ShowingID,
			Status:      string(v.StatusAt(now)),
			TotalAmount: v.TotalAmount,
			SeatCount:   v.SeatCount,
			ShowingTime: v.ShowingTime,
			CreatedAt:   v.CreatedAt,
		}
	}

	return bookingSummaries
}

func toApiMetadata(metadata *domain.Metadata) *api.Metadata {
	return &api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}

func bookedSeatIDs(seats []domain.BookedSeat) []uuid.UUID {
	ids := make([]uuid.UUID, len(seats))

	for i, v := range seats {
		ids[i] = v.SeatID
	}

	return ids
}
