package viewmodel

import (
	"context"
	"testing"
	"time"

	"github.com/clint/tmdb/internal/catalog"
	"github.com/clint/tmdb/internal/domain"
	"github.com/clint/tmdb/internal/mocks"
	"github.com/clint/tmdb/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newListEnv(t *testing.T, recs ...domain.MovieRecord) (*ListViewModel, *mocks.MockCatalogClient, *catalog.Repository) {
	t.Helper()
	s, err := store.NewMovieStore(t.TempDir(), "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	for _, rec := range recs {
		_, err := s.Insert(rec)
		require.NoError(t, err)
	}

	client := new(mocks.MockCatalogClient)
	repo := catalog.NewRepository(client, s, nil)
	vm := NewListViewModel(context.Background(), repo, "key", nil)
	t.Cleanup(vm.Close)
	return vm, client, repo
}

func stateIDs(vm *ListViewModel) ([]int, domain.Status) {
	out, ok := vm.State()
	if !ok {
		return nil, domain.StatusLoading
	}
	var ids []int
	if out.Data != nil {
		for _, r := range *out.Data {
			ids = append(ids, r.ID)
		}
	}
	return ids, out.Status
}

func waitFor(t *testing.T, vm *ListViewModel, status domain.Status, ids []int) {
	t.Helper()
	require.Eventually(t, func() bool {
		got, st := stateIDs(vm)
		return st == status && assert.ObjectsAreEqual(ids, got)
	}, 2*time.Second, 5*time.Millisecond)
}

func fixture() []domain.MovieRecord {
	return []domain.MovieRecord{
		{ID: 1, Title: "A", Rating: 7.0, ReleaseDate: "2010-01-01"},
		{ID: 2, Title: "B", Rating: 9.0, ReleaseDate: "1990-01-01"},
		{ID: 3, Title: "C", Rating: 8.0, ReleaseDate: "2000-01-01"},
	}
}

func TestListStartFollowsStore(t *testing.T) {
	vm, _, repo := newListEnv(t, fixture()...)

	vm.Start()
	waitFor(t, vm, domain.StatusSuccess, []int{1, 2, 3})

	_, err := repo.InsertMovie(domain.MovieRecord{ID: 4, Title: "D"})
	require.NoError(t, err)
	waitFor(t, vm, domain.StatusSuccess, []int{1, 2, 3, 4})
}

func TestListSetSort(t *testing.T) {
	vm, _, _ := newListEnv(t, fixture()...)
	vm.Start()
	waitFor(t, vm, domain.StatusSuccess, []int{1, 2, 3})

	vm.SetSort(domain.SortRating, domain.Descending)
	waitFor(t, vm, domain.StatusSuccess, []int{2, 3, 1})

	vm.SetSort(domain.SortReleaseDate, domain.Ascending)
	waitFor(t, vm, domain.StatusSuccess, []int{2, 3, 1})

	vm.SetSort(domain.SortReleaseDate, domain.Descending)
	waitFor(t, vm, domain.StatusSuccess, []int{1, 3, 2})

	key, order := vm.Sort()
	assert.Equal(t, domain.SortReleaseDate, key)
	assert.Equal(t, domain.Descending, order)
}

func TestListRefresh(t *testing.T) {
	vm, client, _ := newListEnv(t)

	release := make(chan struct{})
	client.On("GetTopRated", mock.Anything, "key", 1).
		Run(func(mock.Arguments) { <-release }).
		Return(&domain.MoviePage{Page: 1, TotalPages: 1, Movies: []domain.MovieSummary{
			{ID: 10, Title: "X", Rating: 6.0},
			{ID: 11, Title: "Y", Rating: 9.5},
		}}, nil)

	vm.Start()
	waitFor(t, vm, domain.StatusSuccess, nil)

	vm.SetSort(domain.SortRating, domain.Descending)
	require.True(t, vm.Refresh(3, nil))
	assert.False(t, vm.Refresh(3, nil), "one refresh at a time")

	out, _ := vm.State()
	assert.True(t, out.IsLoading())

	close(release)
	waitFor(t, vm, domain.StatusSuccess, []int{11, 10})
}

func TestListRefreshFailureKeepsStaleList(t *testing.T) {
	vm, client, _ := newListEnv(t, fixture()...)
	client.On("GetTopRated", mock.Anything, "key", 1).Return(nil, domain.ErrOffline)

	vm.Start()
	waitFor(t, vm, domain.StatusSuccess, []int{1, 2, 3})

	var progress int
	require.True(t, vm.Refresh(2, func(int, int) { progress++ }))
	waitFor(t, vm, domain.StatusError, []int{1, 2, 3})

	out, _ := vm.State()
	assert.ErrorIs(t, out.Err, domain.ErrOffline)
	assert.Zero(t, progress)
}

func TestListClose(t *testing.T) {
	vm, _, repo := newListEnv(t, fixture()...)
	vm.Start()
	waitFor(t, vm, domain.StatusSuccess, []int{1, 2, 3})

	vm.Close()

	_, err := repo.InsertMovie(domain.MovieRecord{ID: 4})
	require.NoError(t, err)
	vm.SetSort(domain.SortRating, domain.Ascending)
	assert.False(t, vm.Refresh(1, nil))

	time.Sleep(20 * time.Millisecond)
	ids, st := stateIDs(vm)
	assert.Equal(t, domain.StatusSuccess, st)
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestDetailCloseCancelsRepositoryFetch(t *testing.T) {
	_, client, repo := newListEnv(t, domain.MovieRecord{ID: 1, Title: "A"})

	started := make(chan struct{})
	remoteCancelled := make(chan struct{})
	client.On("GetMovieDetails", mock.Anything, "key", 1).
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
			close(remoteCancelled)
		}).
		Return(&domain.MovieDetails{ID: 1, Status: "Released", RunTime: 100}, nil).Once()

	vm := NewDetailViewModel(context.Background(), repo, "key")
	vm.Load(1)
	<-started
	vm.Close()

	select {
	case <-remoteCancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("closing the screen did not cancel the remote request")
	}

	time.Sleep(50 * time.Millisecond)
	rec, err := repo.GetMovie(1)
	require.NoError(t, err)
	assert.False(t, rec.DetailsFetched)
}
