package integration_test

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/app"
	"github.com/metinatakli/cinex-booking/internal/catalog"
	"github.com/metinatakli/cinex-booking/internal/mailer"
	"github.com/metinatakli/cinex-booking/internal/payment"
	"github.com/metinatakli/cinex-booking/internal/receipt"
	"github.com/metinatakli/cinex-booking/internal/repository"
	"github.com/metinatakli/cinex-booking/internal/ticket"
	appvalidator "github.com/metinatakli/cinex-booking/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App      *app.Application
	Handler  http.Handler
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Mailer   *mailer.MockMailer
	Gateway  *payment.FakeGateway
	Receipts *receipt.AsyncDispatcher
	Catalog  *httptest.Server
}

func (a *TestApp) Close() {
	a.Receipts.Wait()
	a.Catalog.Close()
	a.Redis.Close()
	a.DB.Close()
}

// newCatalogServer answers TMDB and Places lookups for the test movie and
// theater only.
func newCatalogServer() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc(fmt.Sprintf("/tmdb/movie/%d", TestMovieId), func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":%d,"title":%q,"runtime":139,"original_language":"en"}`, TestMovieId, TestMovieTitle)
	})

	mux.HandleFunc("/places/details/json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("place_id") != TestTheaterId {
			w.Write([]byte(`{"status":"NOT_FOUND"}`))
			return
		}

		fmt.Fprintf(w, `{"status":"OK","result":{"name":%q,"formatted_address":"MG Road"}}`, TestTheaterName)
	})

	return httptest.NewServer(mux)
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	mailer := mailer.NewMockMailer()
	gateway := payment.NewFakeGateway(cfg.Gateway.SigningSecret)

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)

	userRepo := repository.NewPostgresUserRepository(db)
	showtimeRepo := repository.NewPostgresShowtimeRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)

	catalogServer := newCatalogServer()
	catalogGateway := catalog.NewCachedGateway(
		catalog.NewClient(catalog.Config{
			TMDBURL:   catalogServer.URL + "/tmdb",
			TMDBKey:   "tmdb-key",
			PlacesURL: catalogServer.URL + "/places",
			PlacesKey: "places-key",
			Timeout:   time.Second,
		}),
		redisClient,
		time.Minute,
		logger,
	)

	renderer := ticket.NewPDFRenderer(cfg.Gateway.Currency)
	receipts := receipt.NewService(bookingRepo, showtimeRepo, catalogGateway, renderer, mailer, logger)
	dispatcher := receipt.NewAsyncDispatcher(receipts, logger, 10*time.Second)

	application, err := app.NewApp(
		cfg,
		logger,
		redisClient,
		appvalidator.NewValidator(),
		sessionManager,
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
		catalogServer.Close()
		redisClient.Close()
		db.Close()
		return nil, err
	}

	return &TestApp{
		App:      application,
		Handler:  application.Routes(),
		DB:       db,
		Redis:    redisClient,
		Mailer:   mailer,
		Gateway:  gateway,
		Receipts: dispatcher,
		Catalog:  catalogServer,
	}, nil
}
