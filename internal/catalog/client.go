package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/retry"
)

const (
	DefaultTMDBURL   = "https://api.themoviedb.org/3"
	DefaultPlacesURL = "https://maps.googleapis.com/maps/api/place"
)

// Client reads movie details from TMDB and theater details from Google Places.
type Client struct {
	tmdbURL   string
	tmdbKey   string
	placesURL string
	placesKey string
	http      *http.Client
}

type Config struct {
	TMDBURL   string
	TMDBKey   string
	PlacesURL string
	PlacesKey string
	Timeout   time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		tmdbURL:   strings.TrimRight(defaultString(cfg.TMDBURL, DefaultTMDBURL), "/"),
		tmdbKey:   cfg.TMDBKey,
		placesURL: strings.TrimRight(defaultString(cfg.PlacesURL, DefaultPlacesURL), "/"),
		placesKey: cfg.PlacesKey,
		http:      &http.Client{Timeout: timeout},
	}
}

type tmdbMovie struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Overview         string `json:"overview"`
	PosterPath       string `json:"poster_path"`
	ReleaseDate      string `json:"release_date"`
	Runtime          int    `json:"runtime"`
	OriginalLanguage string `json:"original_language"`
}

func (c *Client) GetMovie(ctx context.Context, movieID int64) (*domain.MovieDetails, error) {
	query := url.Values{"api_key": {c.tmdbKey}}
	endpoint := c.tmdbURL + "/movie/" + strconv.FormatInt(movieID, 10) + "?" + query.Encode()

	var movie tmdbMovie
	if err := c.getJSON(ctx, endpoint, &movie); err != nil {
		return nil, fmt.Errorf("tmdb: movie %d: %w", movieID, err)
	}

	return &domain.MovieDetails{
		ID:          movie.ID,
		Title:       movie.Title,
		Overview:    movie.Overview,
		PosterPath:  movie.PosterPath,
		ReleaseDate: movie.ReleaseDate,
		Runtime:     movie.Runtime,
		Language:    movie.OriginalLanguage,
	}, nil
}

type placeDetails struct {
	Status string `json:"status"`
	Result struct {
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"result"`
}

func (c *Client) GetTheater(ctx context.Context, theaterID string) (*domain.TheaterDetails, error) {
	query := url.Values{
		"place_id": {theaterID},
		"fields":   {"name,formatted_address"},
		"key":      {c.placesKey},
	}
	endpoint := c.placesURL + "/details/json?" + query.Encode()

	var place placeDetails
	if err := c.getJSON(ctx, endpoint, &place); err != nil {
		return nil, fmt.Errorf("places: theater %s: %w", theaterID, err)
	}

	switch place.Status {
	case "OK":
	case "NOT_FOUND", "INVALID_REQUEST", "ZERO_RESULTS":
		return nil, domain.ErrRecordNotFound
	default:
		return nil, fmt.Errorf("places: theater %s: status %s", theaterID, place.Status)
	}

	return &domain.TheaterDetails{
		ID:      theaterID,
		Name:    place.Result.Name,
		Address: place.Result.FormattedAddress,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dst any) error {
	_, err := retry.OnNetworkError(ctx, func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return struct{}{}, domain.ErrRecordNotFound
		case resp.StatusCode >= 400:
			return struct{}{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		return struct{}{}, json.NewDecoder(resp.Body).Decode(dst)
	})

	return err
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}

	return v
}
