package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

const showtimeColumns = `
	id, movie_id, theater_id, show_date, show_time,
	silver_seats_available, gold_seats_available, platinum_seats_available,
	silver_price, gold_price, platinum_price`

type PostgresShowtimeRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowtimeRepository(db *pgxpool.Pool) *PostgresShowtimeRepository {
	return &PostgresShowtimeRepository{
		db: db,
	}
}

func (p *PostgresShowtimeRepository) GetById(ctx context.Context, id int64) (*domain.Showtime, error) {
	query := `SELECT ` + showtimeColumns + ` FROM showtimes WHERE id = $1`

	showtime, err := scanShowtime(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return showtime, nil
}

func (p *PostgresShowtimeRepository) GetByKey(ctx context.Context, key domain.ShowtimeKey) (*domain.Showtime, error) {
	showtime, err := getShowtimeByKey(ctx, p.db, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return showtime, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getShowtimeByKey(ctx context.Context, q querier, key domain.ShowtimeKey) (*domain.Showtime, error) {
	query := `
		SELECT ` + showtimeColumns + `
		FROM showtimes
		WHERE movie_id = $1 AND theater_id = $2 AND show_date = $3 AND show_time = $4
	`

	return scanShowtime(q.QueryRow(ctx, query, key.MovieID, key.TheaterID, key.Date, key.Time))
}

// findOrCreateShowtime inserts a default-priced showtime for key unless one
// already exists, then reads it back. An existing showtime is never re-priced.
func findOrCreateShowtime(ctx context.Context, tx pgx.Tx, key domain.ShowtimeKey) (*domain.Showtime, error) {
	showtime := domain.NewDefaultShowtime(key)

	query := `
		INSERT INTO showtimes (
			movie_id, theater_id, show_date, show_time,
			silver_seats_available, gold_seats_available, platinum_seats_available,
			silver_price, gold_price, platinum_price
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT ON CONSTRAINT showtimes_identity_key DO NOTHING
	`

	_, err := tx.Exec(
		ctx,
		query,
		showtime.MovieID,
		showtime.TheaterID,
		showtime.Date,
		showtime.Time,
		showtime.SilverSeatsAvailable,
		showtime.GoldSeatsAvailable,
		showtime.PlatinumSeatsAvailable,
		showtime.SilverPrice,
		showtime.GoldPrice,
		showtime.PlatinumPrice,
	)
	if err != nil {
		return nil, err
	}

	return getShowtimeByKey(ctx, tx, key)
}

func scanShowtime(row pgx.Row) (*domain.Showtime, error) {
	var showtime domain.Showtime

	err := row.Scan(
		&showtime.ID,
		&showtime.MovieID,
		&showtime.TheaterID,
		&showtime.Date,
		&showtime.Time,
		&showtime.SilverSeatsAvailable,
		&showtime.GoldSeatsAvailable,
		&showtime.PlatinumSeatsAvailable,
		&showtime.SilverPrice,
		&showtime.GoldPrice,
		&showtime.PlatinumPrice,
	)
	if err != nil {
		return nil, err
	}

	return &showtime, nil
}
