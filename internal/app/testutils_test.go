package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cinetick/seat-reservation-core/api"
	"github.com/cinetick/seat-reservation-core/internal/clock"
	"github.com/cinetick/seat-reservation-core/internal/events"
	"github.com/cinetick/seat-reservation-core/internal/mocks"
	"github.com/cinetick/seat-reservation-core/internal/validator"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testJWTSecret = "test-secret"

// testNow is the frozen instant every unit test starts from.
var testNow = time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)

func newTestApplication(opts ...func(*Application)) *Application {
	redisClient, _ := redismock.NewClientMock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := &Application{
		config:           Config{Env: "test", JWTSecret: testJWTSecret},
		validator:        validator.NewValidator(),
		logger:           logger,
		redis:            redisClient,
		clock:            clock.NewMock(testNow),
		publisher:        events.NewNopPublisher(),
		metrics:          newAppMetrics(logger),
		reservationRepo:  &mocks.MockReservationRepo{},
		bookingRepo:      &mocks.MockBookingRepo{},
		availabilityRepo: &mocks.MockAvailabilityRepo{},
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func setupTestAuth(t *testing.T, r *http.Request, userID uuid.UUID) *http.Request {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}

	r.Header.Set("Authorization", "Bearer "+signed)

	return r
}

// withURLParam injects a chi route parameter so handlers can be exercised
// without going through the full router.
func withURLParam(r *http.Request, name, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	rctx.URLParams.Add(name, value)

	return r
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(method, url, bytes.NewReader(jsonData))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
