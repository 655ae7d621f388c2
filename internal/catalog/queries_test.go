package catalog

import (
	"testing"

	"github.com/clint/tmdb/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(recs []domain.MovieRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	for _, rec := range []domain.MovieRecord{
		{ID: 1, Title: "The Godfather Part II"},
		{ID: 2, Title: "Goodfellas"},
		{ID: 3, Title: "The Godfather"},
		{ID: 4, Title: "Fight Club"},
	} {
		_, err := env.repo.InsertMovie(rec)
		require.NoError(t, err)
	}

	got, err := env.repo.Search("godfather")
	require.NoError(t, err)
	assert.Equal(t, []string{"The Godfather", "The Godfather Part II"}, titles(got))

	got, err = env.repo.Search("FIGHT")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fight Club"}, titles(got))

	got, err = env.repo.Search("   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListDispatchesOnSortKey(t *testing.T) {
	env := newTestEnv(t)
	for _, rec := range []domain.MovieRecord{
		{ID: 1, Rating: 7.0, ReleaseDate: "2010-01-01"},
		{ID: 2, Rating: 9.0, ReleaseDate: "1990-01-01"},
		{ID: 3, Rating: 8.0, ReleaseDate: "2000-01-01"},
	} {
		_, err := env.repo.InsertMovie(rec)
		require.NoError(t, err)
	}

	tests := []struct {
		key   domain.SortKey
		order domain.SortOrder
		want  []int
	}{
		{domain.SortNone, domain.Descending, []int{1, 2, 3}},
		{domain.SortRating, domain.Descending, []int{2, 3, 1}},
		{domain.SortRating, domain.Ascending, []int{1, 3, 2}},
		{domain.SortReleaseDate, domain.Ascending, []int{2, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.key.String()+" "+tt.order.String(), func(t *testing.T) {
			recs, err := env.repo.List(tt.key, tt.order)
			require.NoError(t, err)
			got := make([]int, len(recs))
			for i, r := range recs {
				got[i] = r.ID
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
