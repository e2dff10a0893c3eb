package domain

import "context"

// MovieDetails is the display data of a movie in the external catalog.
type MovieDetails struct {
	ID          int64
	Title       string
	Overview    string
	PosterPath  string
	ReleaseDate string
	Runtime     int
	Language    string
}

// TheaterDetails is the display data of a theater in the external places catalog.
type TheaterDetails struct {
	ID      string
	Name    string
	Address string
}

type CatalogGateway interface {
	GetMovie(ctx context.Context, movieID int64) (*MovieDetails, error)
	GetTheater(ctx context.Context, theaterID string) (*TheaterDetails, error)
}
