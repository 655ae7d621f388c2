package store

import (
	"context"
	"testing"
	"time"

	"github.com/clint/tmdb/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func newTestStore(t *testing.T) *MovieStore {
	t.Helper()
	s, err := NewMovieStore(t.TempDir(), "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *MovieStore, recs ...domain.MovieRecord) {
	t.Helper()
	for _, rec := range recs {
		_, err := s.Insert(rec)
		require.NoError(t, err)
	}
}

func TestInsertThenGet(t *testing.T) {
	s := newTestStore(t)

	rec := domain.MovieRecord{
		ID:          278,
		Title:       "The Shawshank Redemption",
		Director:    "Frank Darabont",
		Rating:      8.7,
		ReleaseDate: "1994-09-23",
		PosterPath:  "/q6y0Go1tsGEsmtFryDOJo3dEmqu.jpg",
		Overview:    "Two imprisoned men bond over a number of years.",
		Tagline:     "Fear can hold you prisoner. Hope can set you free.",
	}

	got, err := s.Insert(rec)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	stored, err := s.Get(278)
	require.NoError(t, err)
	assert.Equal(t, rec, stored)
}

func TestGetSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewMovieStore(dir, "https://api.themoviedb.org/3")
	require.NoError(t, err)
	seed(t, s, domain.MovieRecord{ID: 7, Title: "Persisted"})
	require.NoError(t, s.Close())

	s, err = NewMovieStore(dir, "https://API.themoviedb.org/3/")
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.Get(7)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", rec.Title)
}

func TestInsertDuplicateID(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, domain.MovieRecord{ID: 1, Title: "A"})

	_, err := s.Insert(domain.MovieRecord{ID: 1, Title: "B"})
	require.ErrorIs(t, err, domain.ErrDuplicateID)

	rec, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "A", rec.Title)
}

func TestInsertAssignsIdentifier(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, domain.MovieRecord{ID: 40, Title: "Explicit"})

	first, err := s.Insert(domain.MovieRecord{Title: "Auto 1"})
	require.NoError(t, err)
	second, err := s.Insert(domain.MovieRecord{Title: "Auto 2"})
	require.NoError(t, err)

	assert.Equal(t, 41, first.ID)
	assert.Equal(t, 42, second.ID)

	rec, err := s.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Auto 1", rec.Title)
}

func TestInsertRejectsNegativeID(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Insert(domain.MovieRecord{ID: -3})
	require.Error(t, err)
}

func TestGetAbsent(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(99)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateDetails(t *testing.T) {
	s := newTestStore(t)
	original := domain.MovieRecord{
		ID:          1,
		Title:       "A",
		Director:    "D",
		Rating:      7.5,
		ReleaseDate: "2001-01-01",
		PosterPath:  "/p.jpg",
		Overview:    "O",
		Tagline:     "T",
	}
	seed(t, s, original)

	// Warm the memory cache so the update must refresh it
	_, err := s.Get(1)
	require.NoError(t, err)

	update := domain.DetailsUpdate{
		Status:         "Released",
		BackdropPath:   "/b.jpg",
		DetailsFetched: true,
		Genres:         "Drama, Crime",
		RunTime:        120,
	}
	require.NoError(t, s.UpdateDetails(1, update))

	got, err := s.Get(1)
	require.NoError(t, err)

	want := original
	want.Status = "Released"
	want.BackdropPath = "/b.jpg"
	want.DetailsFetched = true
	want.Genres = "Drama, Crime"
	want.RunTime = 120
	assert.Equal(t, want, got)
}

func TestColdReadDoesNotOverwriteNewerWrite(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, domain.MovieRecord{ID: 1, Title: "A"})

	s.mu.Lock()
	stale := s.cache[1]
	delete(s.cache, 1)
	s.mu.Unlock()

	// The update lands between a cold read's disk load and its cache fill
	require.NoError(t, s.UpdateDetails(1, domain.DetailsUpdate{DetailsFetched: true, RunTime: 90}))
	s.fill(1, stale)

	rec, err := s.Get(1)
	require.NoError(t, err)
	assert.True(t, rec.DetailsFetched)
	assert.Equal(t, 90, rec.RunTime)
}

func TestUpdateDetailsAbsent(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateDetails(5, domain.DetailsUpdate{DetailsFetched: true})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Get(5)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func sortFixture() []domain.MovieRecord {
	return []domain.MovieRecord{
		{ID: 5, Title: "E", Rating: 8.1, ReleaseDate: "1999-03-31"},
		{ID: 2, Title: "B", Rating: 9.0, ReleaseDate: "1972-03-14"},
		{ID: 9, Title: "I", Rating: 8.1, ReleaseDate: "2010-07-16"},
		{ID: 1, Title: "A", Rating: 7.2, ReleaseDate: "1999-03-31"},
		{ID: 3, Title: "C", Rating: 8.1, ReleaseDate: ""},
	}
}

func ids(recs []domain.MovieRecord) []int {
	out := make([]int, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestListAllIdentifierOrder(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, sortFixture()...)

	recs, err := s.ListAll()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 5, 9}, ids(recs))
}

func TestListByRating(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, sortFixture()...)

	asc, err := s.ListByRating(domain.Ascending)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5, 9, 2}, ids(asc))
	for i := 1; i < len(asc); i++ {
		assert.LessOrEqual(t, asc[i-1].Rating, asc[i].Rating)
	}

	desc, err := s.ListByRating(domain.Descending)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 5, 9, 1}, ids(desc))
	for i := 1; i < len(desc); i++ {
		assert.GreaterOrEqual(t, desc[i-1].Rating, desc[i].Rating)
	}
}

func TestListByReleaseDate(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, sortFixture()...)

	asc, err := s.ListByReleaseDate(domain.Ascending)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1, 5, 9}, ids(asc))

	desc, err := s.ListByReleaseDate(domain.Descending)
	require.NoError(t, err)
	assert.Equal(t, []int{9, 1, 5, 2, 3}, ids(desc))
	for i := 1; i < len(desc); i++ {
		assert.GreaterOrEqual(t, desc[i-1].ReleaseDate, desc[i].ReleaseDate)
	}
}

func TestInvalidateAll(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, sortFixture()...)
	_, err := s.Get(2)
	require.NoError(t, err)

	require.NoError(t, s.InvalidateAll())

	recs, err := s.ListAll()
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = s.Get(2)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSchemaVersionMismatchDropsRecords(t *testing.T) {
	dir := t.TempDir()

	s, err := NewMovieStore(dir, "")
	require.NoError(t, err)
	seed(t, s, domain.MovieRecord{ID: 1, Title: "Old schema"})
	require.NoError(t, s.Close())

	// Simulate a database written by an older release
	db, err := bolt.Open(dir+"/tmdb.db", 0600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, []byte("1"))
	}))
	require.NoError(t, db.Close())

	s, err = NewMovieStore(dir, "")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(1)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func receive(t *testing.T, ch <-chan []domain.MovieRecord) []domain.MovieRecord {
	t.Helper()
	select {
	case recs, ok := <-ch:
		require.True(t, ok, "watch channel closed")
		return recs
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestWatchEmitsSnapshots(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, domain.MovieRecord{ID: 1, Title: "A"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Watch(ctx)
	assert.Equal(t, []int{1}, ids(receive(t, ch)))

	seed(t, s, domain.MovieRecord{ID: 2, Title: "B"})
	assert.Equal(t, []int{1, 2}, ids(receive(t, ch)))

	require.NoError(t, s.UpdateDetails(1, domain.DetailsUpdate{DetailsFetched: true}))
	recs := receive(t, ch)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].DetailsFetched)
}

func TestWatchKeepsLatestSnapshot(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Watch(ctx)
	seed(t, s,
		domain.MovieRecord{ID: 1},
		domain.MovieRecord{ID: 2},
		domain.MovieRecord{ID: 3},
	)

	// Unread snapshots are replaced, only the newest is pending
	assert.Equal(t, []int{1, 2, 3}, ids(receive(t, ch)))
}

func TestWatchClosesOnCancel(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Watch(ctx)
	receive(t, ch)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatchClosesOnStoreClose(t *testing.T) {
	s, err := NewMovieStore(t.TempDir(), "")
	require.NoError(t, err)

	ch := s.Watch(context.Background())
	receive(t, ch)

	require.NoError(t, s.Close())
	_, ok := <-ch
	assert.False(t, ok)

	after := s.Watch(context.Background())
	_, ok = <-after
	assert.False(t, ok)
}
