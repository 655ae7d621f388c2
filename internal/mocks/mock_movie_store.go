package mocks

import (
	"github.com/clint/tmdb/internal/domain"
)

// MockMovieStore overrides individual store operations on top of a real store
type MockMovieStore struct {
	domain.MovieStore
	GetFunc           func(id int) (domain.MovieRecord, error)
	UpdateDetailsFunc func(id int, update domain.DetailsUpdate) error
}

func (m *MockMovieStore) Get(id int) (domain.MovieRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return m.MovieStore.Get(id)
}

func (m *MockMovieStore) UpdateDetails(id int, update domain.DetailsUpdate) error {
	if m.UpdateDetailsFunc != nil {
		return m.UpdateDetailsFunc(id, update)
	}
	return m.MovieStore.UpdateDetails(id, update)
}
