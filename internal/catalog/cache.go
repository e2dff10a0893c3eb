package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultCacheTTL = 6 * time.Hour

// CachedGateway serves catalog lookups from Redis, falling through to the
// wrapped gateway on a miss. Cache failures never fail a lookup.
type CachedGateway struct {
	next   domain.CatalogGateway
	redis  redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedGateway(next domain.CatalogGateway, rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedGateway {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &CachedGateway{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func movieCacheKey(movieID int64) string {
	return "catalog:movie:" + strconv.FormatInt(movieID, 10)
}

func theaterCacheKey(theaterID string) string {
	return "catalog:theater:" + theaterID
}

func (c *CachedGateway) GetMovie(ctx context.Context, movieID int64) (*domain.MovieDetails, error) {
	return cached(ctx, c, movieCacheKey(movieID), func() (*domain.MovieDetails, error) {
		return c.next.GetMovie(ctx, movieID)
	})
}

func (c *CachedGateway) GetTheater(ctx context.Context, theaterID string) (*domain.TheaterDetails, error) {
	return cached(ctx, c, theaterCacheKey(theaterID), func() (*domain.TheaterDetails, error) {
		return c.next.GetTheater(ctx, theaterID)
	})
}

func cached[T any](ctx context.Context, c *CachedGateway, key string, load func() (*T, error)) (*T, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return &v, nil
		}

		c.logger.Warn("discarding malformed catalog cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("catalog cache read failed", "key", key, "error", err)
	}

	v, err := load()
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode catalog entry: %w", err)
	}

	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", "key", key, "error", err)
	}

	return v, nil
}
