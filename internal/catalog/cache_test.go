package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/mocks"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CachedGatewayTestSuite struct {
	suite.Suite
	redis   *mocks.MockRedisClient
	catalog *mocks.MockCatalogGateway
	gateway *CachedGateway
}

func (s *CachedGatewayTestSuite) SetupTest() {
	s.redis = new(mocks.MockRedisClient)
	s.catalog = new(mocks.MockCatalogGateway)
	s.gateway = NewCachedGateway(s.catalog, s.redis, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCachedGatewaySuite(t *testing.T) {
	suite.Run(t, new(CachedGatewayTestSuite))
}

func (s *CachedGatewayTestSuite) TestHit() {
	s.redis.On("Get", mock.Anything, "catalog:movie:550").
		Return(redis.NewStringResult(`{"ID":550,"Title":"Fight Club"}`, nil)).Once()

	movie, err := s.gateway.GetMovie(context.Background(), 550)

	s.Require().NoError(err)
	s.Equal("Fight Club", movie.Title)
	s.catalog.AssertNotCalled(s.T(), "GetMovie", mock.Anything, mock.Anything)
}

func (s *CachedGatewayTestSuite) TestMissLoadsAndStores() {
	theater := &domain.TheaterDetails{ID: "ChIJ-1", Name: "PVR Phoenix"}

	s.redis.On("Get", mock.Anything, "catalog:theater:ChIJ-1").
		Return(redis.NewStringResult("", redis.Nil)).Once()
	s.catalog.On("GetTheater", mock.Anything, "ChIJ-1").Return(theater, nil).Once()
	s.redis.On("Set", mock.Anything, "catalog:theater:ChIJ-1", mock.Anything, DefaultCacheTTL).
		Return(redis.NewStatusResult("OK", nil)).Once()

	got, err := s.gateway.GetTheater(context.Background(), "ChIJ-1")

	s.Require().NoError(err)
	s.Equal(theater, got)
	s.redis.AssertExpectations(s.T())
	s.catalog.AssertExpectations(s.T())
}

func (s *CachedGatewayTestSuite) TestRedisDownStillLoads() {
	s.redis.On("Get", mock.Anything, mock.Anything).
		Return(redis.NewStringResult("", errors.New("connection refused"))).Once()
	s.catalog.On("GetMovie", mock.Anything, int64(7)).Return(&domain.MovieDetails{ID: 7, Title: "Se7en"}, nil).Once()
	s.redis.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(redis.NewStatusResult("", errors.New("connection refused"))).Once()

	movie, err := s.gateway.GetMovie(context.Background(), 7)

	s.Require().NoError(err)
	s.Equal("Se7en", movie.Title)
}

func (s *CachedGatewayTestSuite) TestLoadErrorIsReturned() {
	s.redis.On("Get", mock.Anything, mock.Anything).Return(redis.NewStringResult("", redis.Nil)).Once()
	s.catalog.On("GetMovie", mock.Anything, int64(1)).Return(nil, domain.ErrRecordNotFound).Once()

	_, err := s.gateway.GetMovie(context.Background(), 1)

	s.ErrorIs(err, domain.ErrRecordNotFound)
	s.redis.AssertNotCalled(s.T(), "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
