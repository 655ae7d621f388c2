package mocks

import (
	"context"

	"github.com/clint/tmdb/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockCatalogClient struct {
	mock.Mock
	domain.CatalogClient
}

func (m *MockCatalogClient) GetTopRated(ctx context.Context, apiKey string, page int) (*domain.MoviePage, error) {
	args := m.Called(ctx, apiKey, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MoviePage), args.Error(1)
}

func (m *MockCatalogClient) GetMovieDetails(ctx context.Context, apiKey string, movieID int) (*domain.MovieDetails, error) {
	args := m.Called(ctx, apiKey, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MovieDetails), args.Error(1)
}
