package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinetick/seat-reservation-core/internal/clock"
	"github.com/cinetick/seat-reservation-core/internal/domain"
	"github.com/cinetick/seat-reservation-core/internal/events"
	"github.com/cinetick/seat-reservation-core/internal/repository"
	appvalidator "github.com/cinetick/seat-reservation-core/internal/validator"
	"github.com/cinetick/seat-reservation-core/internal/vcs"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"golang.org/x/sync/errgroup"
)

const serviceName = "seat-reservation-api"

var (
	version = vcs.Version()
)

type Application struct {
	config    Config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate
	clock     clock.Clock
	publisher domain.EventPublisher
	metrics   appMetrics

	reservationRepo  domain.ReservationRepository
	bookingRepo      domain.BookingRepository
	availabilityRepo domain.AvailabilityRepository
}

type Config struct {
	Port             int
	Env              string
	DB               DBConfig
	Redis            RedisConfig
	AMQP             AMQPConfig
	Sweeper          SweeperConfig
	JWTSecret        string
	OtelCollectorUrl string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type AMQPConfig struct {
	URL   string
	Queue string
}

type SweeperConfig struct {
	Interval time.Duration
}

func Run() error {
	// Load .env file if exists. Flags still win over environment values.
	_ = godotenv.Load()

	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.AMQP.URL, "amqp-url", os.Getenv("AMQP_URL"), "RabbitMQ URL (empty disables event publishing)")
	flag.StringVar(&cfg.AMQP.Queue, "amqp-queue", "seat-events", "RabbitMQ queue for lifecycle events")

	flag.DurationVar(&cfg.Sweeper.Interval, "sweep-interval", time.Minute, "Expiry sweep interval (0 disables the sweep)")

	flag.StringVar(&cfg.JWTSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "JWT signing secret")

	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", os.Getenv("OTEL_COLLECTOR_URL"), "OpenTelemetry collector URL")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	validator := appvalidator.NewValidator()

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var publisher domain.EventPublisher

	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()

		publisher = amqpPublisher
	} else {
		logger.Info("AMQP URL not set, lifecycle events will not be published")
		publisher = events.NewNopPublisher()
	}

	reservationRepo := repository.NewPostgresReservationRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)
	availabilityRepo := repository.NewPostgresAvailabilityRepository(db)

	app := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		clock.New(),
		publisher,
		reservationRepo,
		bookingRepo,
		availabilityRepo,
	)

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	return app.serve()
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	clk clock.Clock,
	publisher domain.EventPublisher,
	reservationRepo domain.ReservationRepository,
	bookingRepo domain.BookingRepository,
	availabilityRepo domain.AvailabilityRepository) *Application {

	return &Application{
		config:           cfg,
		logger:           logger,
		db:               db,
		redis:            redisClient,
		validator:        validator,
		clock:            clk,
		publisher:        publisher,
		metrics:          newAppMetrics(logger),
		reservationRepo:  reservationRepo,
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
	}
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		app.runSweeper(ctx)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		app.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := g.Wait()
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)

	if app.config.OtelCollectorUrl != "" {
		r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	}

	r.Use(app.recoverPanic)
	r.Use(app.requestLogger)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthcheck", app.healthcheckHandler)

		r.Get("/showings/{showingID}/availability", app.showingAvailabilityHandler)
		r.Get("/showings/{showingID}/seats/{seatID}/availability", app.seatAvailabilityHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthentication)

			r.Post("/showings/{showingID}/holds", app.createHoldHandler)
			r.Get("/holds", app.listHoldsHandler)
			r.Patch("/holds/{holdID}", app.extendHoldHandler)
			r.Delete("/holds/{holdID}", app.releaseHoldHandler)

			r.Post("/bookings", app.createBookingHandler)
			r.Get("/bookings", app.listBookingsHandler)
			r.Get("/bookings/{bookingID}", app.showBookingHandler)
			r.Post("/bookings/{bookingID}/confirm", app.confirmBookingHandler)
			r.Post("/bookings/{bookingID}/cancel", app.cancelBookingHandler)
		})
	})

	return r
}
