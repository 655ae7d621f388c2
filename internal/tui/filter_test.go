package tui

import (
	"testing"

	"github.com/clint/tmdb/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFilter(t *testing.T) {
	recs := []domain.MovieRecord{
		{ID: 1, Title: "Spirited Away"},
		{ID: 2, Title: "The Dark Knight"},
		{ID: 3, Title: "Parasite"},
	}

	all := applyFilter("", recs)
	require.Len(t, all, 3)
	for i, row := range all {
		assert.Equal(t, i, row.Index)
		assert.Empty(t, row.Matched)
	}

	rows := applyFilter("DARK", recs)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, []int{4, 5, 6, 7}, rows[0].Matched)

	assert.Empty(t, applyFilter("zzz", recs))
}

func TestApplyFilterOffsetsIndexOriginalTitle(t *testing.T) {
	// "İ" is two bytes but lowercases to three
	recs := []domain.MovieRecord{{ID: 1, Title: "İstanbul"}}

	rows := applyFilter("STAN", recs)
	require.Len(t, rows, 1)
	assert.Equal(t, []int{2, 3, 4, 5}, rows[0].Matched)
	assert.Equal(t, "stan", recs[0].Title[2:6])
}

func TestHighlightKeepsText(t *testing.T) {
	assert.Equal(t, "Parasite", highlight("Parasite", nil))
	assert.Contains(t, highlight("Parasite", []int{0}), "arasite")
}
