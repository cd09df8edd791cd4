package app

import (
	"net/http"
	"time"

	"github.com/cinetick/seat-reservation-core/api"
	"github.com/cinetick/seat-reservation-core/internal/domain"
	appvalidator "github.com/cinetick/seat-reservation-core/internal/validator"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	ErrInternalServer     = "The server encountered a problem and could not process your request"
	ErrNotFound           = "The requested resource not found"
	ErrUnauthorizedAccess = "You must be authenticated to access this resource"
	ErrSeatUnavailable    = "One or more of the selected seats are no longer available"
	ErrBookingExpired     = "The booking has expired and can no longer be confirmed"
	ErrValidationFailed   = "Validation failed"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.errorResponseWithDetails(w, r, status, message, nil)
}

func (app *Application) errorResponseWithDetails(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	details *api.ErrorDetails) {

	resp := api.ErrorResponse{
		Message:   message,
		Details:   details,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, ErrUnauthorizedAccess)
}

// failedValidationResponse converts validator errors into a 422 response that
// names each offending field.
func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		app.serverErrorResponse(w, r, err)
		return
	}

	errs := make([]api.ValidationError, 0, len(validationErrors))

	for _, fieldErr := range validationErrors {
		errs = append(errs, api.ValidationError{
			Field: fieldErr.Field(),
			Issue: appvalidator.ValidationMessage(fieldErr),
		})
	}

	resp := api.ValidationErrorResponse{
		Message:          ErrValidationFailed,
		ValidationErrors: errs,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
	}

	writeErr := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if writeErr != nil {
		app.logError(r, writeErr)
		w.WriteHeader(500)
	}
}

func (app *Application) seatUnavailableResponse(w http.ResponseWriter, r *http.Request, err *domain.SeatUnavailableError) {
	details := &api.ErrorDetails{
		ShowingId: &err.ShowingID,
		SeatIds:   err.SeatIDs,
	}

	app.errorResponseWithDetails(w, r, http.StatusConflict, ErrSeatUnavailable, details)
}

func (app *Application) bookingExpiredResponse(w http.ResponseWriter, r *http.Request, err *domain.BookingExpiredError) {
	details := &api.ErrorDetails{
		BookingId: &err.BookingID,
		ExpiredAt: &err.ExpiredAt,
	}

	app.errorResponseWithDetails(w, r, http.StatusConflict, ErrBookingExpired, details)
}

func (app *Application) invalidTransitionResponse(w http.ResponseWriter, r *http.Request, err *domain.InvalidTransitionError) {
	details := &api.ErrorDetails{
		CurrentStatus:   string(err.Current),
		AttemptedStatus: string(err.Attempted),
	}

	app.errorResponseWithDetails(w, r, http.StatusConflict, err.Error(), details)
}
