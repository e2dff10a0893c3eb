package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		TMDBURL:   srv.URL + "/tmdb",
		TMDBKey:   "tmdb-key",
		PlacesURL: srv.URL + "/places",
		PlacesKey: "places-key",
		Timeout:   time.Second,
	})
}

func TestGetMovie(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tmdb/movie/550", r.URL.Path)
		assert.Equal(t, "tmdb-key", r.URL.Query().Get("api_key"))

		w.Write([]byte(`{"id":550,"title":"Fight Club","runtime":139,"poster_path":"/p.jpg","original_language":"en"}`))
	})

	movie, err := c.GetMovie(context.Background(), 550)
	require.NoError(t, err)

	assert.Equal(t, "Fight Club", movie.Title)
	assert.Equal(t, 139, movie.Runtime)
	assert.Equal(t, "en", movie.Language)
}

func TestGetMovieNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetMovie(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestGetTheater(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places/details/json", r.URL.Path)
		assert.Equal(t, "ChIJ-1", r.URL.Query().Get("place_id"))

		w.Write([]byte(`{"status":"OK","result":{"name":"PVR Phoenix","formatted_address":"Lower Parel, Mumbai"}}`))
	})

	theater, err := c.GetTheater(context.Background(), "ChIJ-1")
	require.NoError(t, err)

	assert.Equal(t, &domain.TheaterDetails{ID: "ChIJ-1", Name: "PVR Phoenix", Address: "Lower Parel, Mumbai"}, theater)
}

func TestGetTheaterUnknownPlace(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"NOT_FOUND"}`))
	})

	_, err := c.GetTheater(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}
