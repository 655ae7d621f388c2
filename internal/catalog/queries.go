package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/clint/tmdb/internal/domain"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Queries provides synchronous, cache-only reads.
type Queries struct {
	store domain.MovieStore
}

// NewQueries creates a new Queries instance.
func NewQueries(store domain.MovieStore) *Queries {
	return &Queries{store: store}
}

func (q *Queries) GetMovie(id int) (domain.MovieRecord, error) {
	return q.store.Get(id)
}

func (q *Queries) ListAll() ([]domain.MovieRecord, error) {
	return q.store.ListAll()
}

func (q *Queries) ListByRating(order domain.SortOrder) ([]domain.MovieRecord, error) {
	return q.store.ListByRating(order)
}

func (q *Queries) ListByReleaseDate(order domain.SortOrder) ([]domain.MovieRecord, error) {
	return q.store.ListByReleaseDate(order)
}

// List dispatches to the query for the given sort key
func (q *Queries) List(key domain.SortKey, order domain.SortOrder) ([]domain.MovieRecord, error) {
	switch key {
	case domain.SortRating:
		return q.ListByRating(order)
	case domain.SortReleaseDate:
		return q.ListByReleaseDate(order)
	default:
		return q.ListAll()
	}
}

// ObserveAll streams every record snapshot until ctx is done.
func (q *Queries) ObserveAll(ctx context.Context) <-chan []domain.MovieRecord {
	return q.store.Watch(ctx)
}

// Search fuzzy-matches titles of cached records, best match first.
// An empty query returns nothing.
func (q *Queries) Search(query string) ([]domain.MovieRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	recs, err := q.store.ListAll()
	if err != nil {
		return nil, err
	}

	titles := make([]string, len(recs))
	for i, r := range recs {
		titles[i] = r.Title
	}

	matches := fuzzy.RankFindFold(query, titles)

	// Sort by distance (lower is better), ties keep identifier order
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].OriginalIndex < matches[j].OriginalIndex
	})

	results := make([]domain.MovieRecord, 0, len(matches))
	for _, m := range matches {
		results = append(results, recs[m.OriginalIndex])
	}
	return results, nil
}
