package domain

import "context"

// MovieStore is the single-table local cache of movie records.
type MovieStore interface {
	// === Writes ===
	Insert(rec MovieRecord) (MovieRecord, error)      // ErrDuplicateID on collision
	UpdateDetails(id int, update DetailsUpdate) error // ErrNotFound if absent
	InvalidateAll() error                             // Wipes every record

	// === Reads ===
	Get(id int) (MovieRecord, error) // ErrNotFound if absent
	ListAll() ([]MovieRecord, error) // Identifier order
	ListByRating(order SortOrder) ([]MovieRecord, error)
	ListByReleaseDate(order SortOrder) ([]MovieRecord, error)

	// Watch emits the current records, then a new snapshot after every change.
	// The channel closes when ctx is done or the store is closed.
	Watch(ctx context.Context) <-chan []MovieRecord

	// === Lifecycle ===
	Close() error
}
