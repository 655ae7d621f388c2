package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/clint/tmdb/internal/domain"
)

// Command factories for async operations.
// The listen commands block on a channel and return one message; the
// Update loop re-issues them after every delivery. They return nil once
// done is closed.

// listenListCmd waits for the next list state
func listenListCmd(ch <-chan domain.Outcome[[]domain.MovieRecord], done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case out := <-ch:
			return ListOutcomeMsg{Outcome: out}
		case <-done:
			return nil
		}
	}
}

// listenDetailCmd waits for the next state of one details screen
func listenDetailCmd(screen int, ch <-chan domain.Outcome[domain.MovieRecord], done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case out := <-ch:
			return DetailOutcomeMsg{Screen: screen, Outcome: out}
		case <-done:
			return nil
		}
	}
}

// listenProgressCmd waits for the next refresh progress update
func listenProgressCmd(ch <-chan SyncProgressMsg, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-done:
			return nil
		}
	}
}

// ClearCacheCmd wipes every cached record
func ClearCacheCmd(clear func() error) tea.Cmd {
	return func() tea.Msg {
		if err := clear(); err != nil {
			return ErrMsg{Err: err, Context: "clearing cache"}
		}
		return CacheClearedMsg{}
	}
}
