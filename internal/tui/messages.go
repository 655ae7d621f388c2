package tui

import (
	"github.com/clint/tmdb/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ListOutcomeMsg carries a new state of the movie list
type ListOutcomeMsg struct {
	Outcome domain.Outcome[[]domain.MovieRecord]
}

// DetailOutcomeMsg carries a new state of the details screen.
// Screen identifies the details screen it belongs to.
type DetailOutcomeMsg struct {
	Screen  int
	Outcome domain.Outcome[domain.MovieRecord]
}

// SyncProgressMsg reports list refresh progress in pages
type SyncProgressMsg struct {
	Loaded int
	Total  int
}

// CacheClearedMsg signals that every cached record was removed
type CacheClearedMsg struct{}
