package integration_test

import (
	"log/slog"
	"os"
	"time"

	"github.com/cinetick/seat-reservation-core/internal/app"
	"github.com/cinetick/seat-reservation-core/internal/clock"
	"github.com/cinetick/seat-reservation-core/internal/events"
	"github.com/cinetick/seat-reservation-core/internal/repository"
	appvalidator "github.com/cinetick/seat-reservation-core/internal/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// testStart is the frozen instant every integration test begins at. Fixture
// timestamps in testdata are chosen relative to it.
var testStart = time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)

// TestApp bundles the application with the handles tests need to drive it:
// the database pool for fixtures and assertions, the Redis client for cache
// checks, the mock clock for moving time, and the recording publisher for
// event assertions.
type TestApp struct {
	App       *app.Application
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Clock     *clock.Mock
	Publisher *events.RecordingPublisher
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()
	mockClock := clock.NewMock(testStart)
	publisher := events.NewRecordingPublisher()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	reservationRepo := repository.NewPostgresReservationRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)
	availabilityRepo := repository.NewPostgresAvailabilityRepository(db)

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mockClock,
		publisher,
		reservationRepo,
		bookingRepo,
		availabilityRepo,
	)

	return &TestApp{
		App:       application,
		DB:        db,
		Redis:     redisClient,
		Clock:     mockClock,
		Publisher: publisher,
	}, nil
}
