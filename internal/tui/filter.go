package tui

import (
	"strings"

	"github.com/clint/tmdb/internal/domain"
	"github.com/sahilm/fuzzy"
)

// filterRow is one visible list row: an index into the unfiltered list
// plus the title positions that matched the filter
type filterRow struct {
	Index   int
	Matched []int
}

// applyFilter returns the rows matching query, best match first.
// An empty query keeps every row in list order.
func applyFilter(query string, recs []domain.MovieRecord) []filterRow {
	query = strings.TrimSpace(query)
	if query == "" {
		rows := make([]filterRow, len(recs))
		for i := range recs {
			rows[i] = filterRow{Index: i}
		}
		return rows
	}

	// fuzzy folds case itself; matched offsets index the original titles
	titles := make([]string, len(recs))
	for i, r := range recs {
		titles[i] = r.Title
	}

	matches := fuzzy.Find(query, titles)

	rows := make([]filterRow, len(matches))
	for i, m := range matches {
		rows[i] = filterRow{Index: m.Index, Matched: m.MatchedIndexes}
	}
	return rows
}
