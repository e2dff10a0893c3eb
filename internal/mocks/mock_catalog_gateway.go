package mocks

import (
	"context"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockCatalogGateway struct {
	mock.Mock
}

func (m *MockCatalogGateway) GetMovie(ctx context.Context, movieID int64) (*domain.MovieDetails, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MovieDetails), args.Error(1)
}

func (m *MockCatalogGateway) GetTheater(ctx context.Context, theaterID string) (*domain.TheaterDetails, error) {
	args := m.Called(ctx, theaterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TheaterDetails), args.Error(1)
}
