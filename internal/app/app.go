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

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/catalog"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/mailer"
	"github.com/metinatakli/cinex-booking/internal/payment"
	"github.com/metinatakli/cinex-booking/internal/receipt"
	"github.com/metinatakli/cinex-booking/internal/repository"
	"github.com/metinatakli/cinex-booking/internal/ticket"
	appvalidator "github.com/metinatakli/cinex-booking/internal/validator"
	"github.com/metinatakli/cinex-booking/internal/vcs"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	version = vcs.Version()
)

type TicketLoader interface {
	Ticket(ctx context.Context, booking *domain.Booking) (domain.Ticket, error)
}

type Application struct {
	config         Config
	logger         *slog.Logger
	redis          redis.UniversalClient
	validator      *validator.Validate
	sessionManager *scs.SessionManager
	metrics        *metrics
	location       *time.Location
	now            func() time.Time

	userRepo     domain.UserRepository
	showtimeRepo domain.ShowtimeRepository
	bookingRepo  domain.BookingRepository

	gateway  domain.PaymentGateway
	catalog  domain.CatalogGateway
	receipts domain.ReceiptDispatcher
	tickets  TicketLoader
	renderer domain.TicketRenderer
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	redis redis.UniversalClient,
	validator *validator.Validate,
	sessionManager *scs.SessionManager,
	userRepo domain.UserRepository,
	showtimeRepo domain.ShowtimeRepository,
	bookingRepo domain.BookingRepository,
	gateway domain.PaymentGateway,
	catalog domain.CatalogGateway,
	receipts domain.ReceiptDispatcher,
	tickets TicketLoader,
	renderer domain.TicketRenderer) (*Application, error) {

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	metrics, err := newMetrics()
	if err != nil {
		return nil, err
	}

	return &Application{
		config:         cfg,
		logger:         logger,
		redis:          redis,
		validator:      validator,
		sessionManager: sessionManager,
		metrics:        metrics,
		location:       location,
		now:            time.Now,
		userRepo:       userRepo,
		showtimeRepo:   showtimeRepo,
		bookingRepo:    bookingRepo,
		gateway:        gateway,
		catalog:        catalog,
		receipts:       receipts,
		tickets:        tickets,
		renderer:       renderer,
	}, nil
}

func Run() error {
	if err := loadEnvFile(".env"); err != nil {
		return err
	}

	cfg, displayVersion, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	shutdownTelemetry, err := InitTelemetry(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(
			logger.Handler(),
			otelslog.NewHandler(serviceName),
		))
	}

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

	userRepo := repository.NewPostgresUserRepository(db)
	showtimeRepo := repository.NewPostgresShowtimeRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)

	gateway, err := newPaymentGateway(cfg)
	if err != nil {
		return err
	}

	catalogGateway := catalog.NewCachedGateway(
		catalog.NewClient(catalog.Config{
			TMDBURL:   cfg.Catalog.TMDBURL,
			TMDBKey:   cfg.Catalog.TMDBKey,
			PlacesURL: cfg.Catalog.PlacesURL,
			PlacesKey: cfg.Catalog.PlacesKey,
			Timeout:   cfg.Catalog.Timeout,
		}),
		redisClient,
		cfg.Catalog.CacheTTL,
		logger,
	)

	renderer := ticket.NewPDFRenderer(cfg.Gateway.Currency)

	receipts := receipt.NewService(
		bookingRepo,
		showtimeRepo,
		catalogGateway,
		renderer,
		mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher, closeDispatcher, err := newReceiptDispatcher(ctx, cfg, receipts, logger)
	if err != nil {
		return err
	}
	defer closeDispatcher()

	app, err := NewApp(
		cfg,
		logger,
		redisClient,
		appvalidator.NewValidator(),
		NewSessionManager(redisClient),
		userRepo,
		showtimeRepo,
		bookingRepo,
		gateway,
		catalogGateway,
		dispatcher,
		receipts,
		renderer,
	)
	if err != nil {
		return err
	}

	return app.run()
}

// newReceiptDispatcher publishes receipts to RabbitMQ when a broker is
// configured and runs the consumer alongside the API. Without a broker,
// receipts are sent from background goroutines.
func newReceiptDispatcher(
	ctx context.Context,
	cfg Config,
	sender receipt.Sender,
	logger *slog.Logger) (domain.ReceiptDispatcher, func(), error) {

	if cfg.RabbitMQ.URL == "" {
		async := receipt.NewAsyncDispatcher(sender, logger, 30*time.Second)
		return async, async.Wait, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	publisher, err := receipt.NewQueuePublisher(conn, cfg.RabbitMQ.Queue)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	go func() {
		err := receipt.Consume(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, sender,
			cfg.RabbitMQ.MaxRetries, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("receipt consumer stopped", "error", err)
		}
	}()

	return publisher, func() { conn.Close() }, nil
}

func newPaymentGateway(cfg Config) (domain.PaymentGateway, error) {
	switch cfg.Gateway.Provider {
	case "razorpay":
		return payment.NewRazorpayGateway(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret, cfg.Gateway.Timeout), nil
	case "stripe":
		return payment.NewStripeGateway(cfg.Gateway.KeySecret, cfg.Gateway.KeyID, cfg.Gateway.SigningSecret), nil
	case "fake":
		return payment.NewFakeGateway(cfg.Gateway.SigningSecret), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway %q", cfg.Gateway.Provider)
	}
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb)); err != nil {
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

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
