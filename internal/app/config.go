package app

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             int
	Env              string
	Timezone         string
	SuccessURL       string
	OtelCollectorUrl string

	DB struct {
		DSN          string
		MaxOpenConns int
		MaxIdleTime  time.Duration
	}

	Redis struct {
		URL          string
		MaxOpenConns int
		MaxIdleConns int
		MaxIdleTime  time.Duration
	}

	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		Sender   string
	}

	Gateway struct {
		Provider      string
		KeyID         string
		KeySecret     string
		SigningSecret string
		BaseURL       string
		Currency      string
		Timeout       time.Duration
	}

	Catalog struct {
		TMDBURL   string
		TMDBKey   string
		PlacesURL string
		PlacesKey string
		Timeout   time.Duration
		CacheTTL  time.Duration
	}

	RabbitMQ struct {
		URL        string
		Queue      string
		MaxRetries int
	}
}

// loadEnvFile reads KEY=value pairs from path into the process environment.
// Variables already set take precedence and a missing file is not an error.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

// parseConfig reads the configuration from command-line flags. Every flag
// defaults to an environment variable so that the service can be configured
// from a .env file as well.
func parseConfig(flags *flag.FlagSet, args []string) (Config, bool, error) {
	var cfg Config

	flags.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	flags.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")
	flags.StringVar(&cfg.Timezone, "timezone", envString("TIMEZONE", "Asia/Kolkata"), "Timezone showtimes are scheduled in")
	flags.StringVar(&cfg.SuccessURL, "success-url", envString("BOOKING_SUCCESS_URL", "http://localhost:5173/booking-success"), "Page the client is redirected to after payment")
	flags.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector endpoint")

	flags.StringVar(&cfg.DB.DSN, "db-dsn", envString("DB_DSN", ""), "PostgreSQL DSN")
	flags.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", envInt("DB_MAX_OPEN_CONNS", 25), "PostgreSQL max open connections")
	flags.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", envDuration("DB_MAX_IDLE_TIME", 15*time.Minute), "PostgreSQL max idle time for connections")

	flags.StringVar(&cfg.Redis.URL, "redis-url", envString("REDIS_URL", "localhost:6379"), "Redis URL")
	flags.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", envInt("REDIS_MAX_OPEN_CONNS", 25), "Redis max open connections")
	flags.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", envInt("REDIS_MAX_IDLE_CONNS", 10), "Redis max idle connections")
	flags.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", envDuration("REDIS_MAX_IDLE_TIME", 2*time.Minute), "Redis max idle time for connections")

	flags.StringVar(&cfg.SMTP.Host, "smtp-host", envString("SMTP_HOST", "sandbox.smtp.mailtrap.io"), "SMTP host")
	flags.IntVar(&cfg.SMTP.Port, "smtp-port", envInt("SMTP_PORT", 2525), "SMTP port")
	flags.StringVar(&cfg.SMTP.Username, "smtp-username", envString("SMTP_USERNAME", ""), "SMTP username")
	flags.StringVar(&cfg.SMTP.Password, "smtp-password", envString("SMTP_PASSWORD", ""), "SMTP password")
	flags.StringVar(&cfg.SMTP.Sender, "smtp-sender", envString("SMTP_SENDER", "CineX <no-reply@cinex.metinatakli.net>"), "SMTP sender")

	flags.StringVar(&cfg.Gateway.Provider, "gateway", envString("PAYMENT_GATEWAY", "razorpay"), "Payment gateway (razorpay|stripe|fake)")
	flags.StringVar(&cfg.Gateway.KeyID, "gateway-key-id", envString("PAYMENT_KEY_ID", ""), "Public key handed to checkout clients")
	flags.StringVar(&cfg.Gateway.KeySecret, "gateway-key-secret", envString("PAYMENT_KEY_SECRET", ""), "Gateway API secret")
	flags.StringVar(&cfg.Gateway.SigningSecret, "gateway-signing-secret", envString("PAYMENT_SIGNING_SECRET", ""), "Secret signing payment confirmations (stripe and fake gateways)")
	flags.StringVar(&cfg.Gateway.BaseURL, "gateway-url", envString("PAYMENT_GATEWAY_URL", ""), "Gateway API base URL")
	flags.StringVar(&cfg.Gateway.Currency, "currency", envString("PAYMENT_CURRENCY", "INR"), "Currency orders are created in")
	flags.DurationVar(&cfg.Gateway.Timeout, "gateway-timeout", envDuration("PAYMENT_GATEWAY_TIMEOUT", 10*time.Second), "Gateway request timeout")

	flags.StringVar(&cfg.Catalog.TMDBURL, "tmdb-url", envString("TMDB_URL", ""), "TMDB API base URL")
	flags.StringVar(&cfg.Catalog.TMDBKey, "tmdb-key", envString("TMDB_API_KEY", ""), "TMDB API key")
	flags.StringVar(&cfg.Catalog.PlacesURL, "places-url", envString("PLACES_URL", ""), "Google Places API base URL")
	flags.StringVar(&cfg.Catalog.PlacesKey, "places-key", envString("GOOGLE_PLACES_API_KEY", ""), "Google Places API key")
	flags.DurationVar(&cfg.Catalog.Timeout, "catalog-timeout", envDuration("CATALOG_TIMEOUT", 5*time.Second), "Catalog request timeout")
	flags.DurationVar(&cfg.Catalog.CacheTTL, "catalog-cache-ttl", envDuration("CATALOG_CACHE_TTL", 6*time.Hour), "How long catalog lookups are cached")

	flags.StringVar(&cfg.RabbitMQ.URL, "rabbitmq-url", envString("RABBITMQ_URL", ""), "RabbitMQ URL, receipts are sent in-process when empty")
	flags.StringVar(&cfg.RabbitMQ.Queue, "rabbitmq-queue", envString("RABBITMQ_QUEUE", "booking.receipts"), "Queue receipts are published to")
	flags.IntVar(&cfg.RabbitMQ.MaxRetries, "rabbitmq-max-retries", envInt("RABBITMQ_MAX_RETRIES", 3), "Delivery attempts of a receipt before it is dropped")

	displayVersion := flags.Bool("version", false, "Display version and exit")

	if err := flags.Parse(args); err != nil {
		return cfg, false, err
	}

	switch cfg.Gateway.Provider {
	case "razorpay", "stripe", "fake":
	default:
		return cfg, false, fmt.Errorf("unknown payment gateway %q", cfg.Gateway.Provider)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return cfg, false, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	return cfg, *displayVersion, nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}

	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}

	return fallback
}
