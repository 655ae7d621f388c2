package domain

// ProgressFunc reports sync progress to the presentation layer.
// Called once per fetched page with page counts: (1, 5), (2, 5), ...
type ProgressFunc func(loaded, total int)

// SyncResult summarizes what happened during a list sync.
type SyncResult struct {
	Pages    int // Pages fetched
	Fetched  int // Summaries received
	Inserted int // New records written
}

// DetailState is a step of the cached details lookup
type DetailState int

const (
	StateCheckingCache DetailState = iota
	StateFetchingRemote
	StatePersisting
	StateReady
	StateFailed
)

// String returns a human-readable representation of the state
func (s DetailState) String() string {
	switch s {
	case StateCheckingCache:
		return "CheckingCache"
	case StateFetchingRemote:
		return "FetchingRemote"
	case StatePersisting:
		return "Persisting"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// DetailObserver receives state transitions of a details lookup.
type DetailObserver interface {
	OnDetailState(movieID int, state DetailState)
}

// NoOpObserver discards state transitions.
type NoOpObserver struct{}

func (NoOpObserver) OnDetailState(int, DetailState) {}
