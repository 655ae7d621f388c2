package viewmodel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/clint/tmdb/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type detailSourceFunc func(ctx context.Context, movieID int, apiKey string) domain.Outcome[domain.MovieRecord]

func (f detailSourceFunc) GetMovieDetails(ctx context.Context, movieID int, apiKey string) domain.Outcome[domain.MovieRecord] {
	return f(ctx, movieID, apiKey)
}

type collector[T any] struct {
	mu  sync.Mutex
	got []domain.Outcome[T]
}

func (c *collector[T]) OnChange(out domain.Outcome[T]) {
	c.mu.Lock()
	c.got = append(c.got, out)
	c.mu.Unlock()
}

func (c *collector[T]) outcomes() []domain.Outcome[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Outcome[T](nil), c.got...)
}

func TestDetailLoad(t *testing.T) {
	src := detailSourceFunc(func(_ context.Context, movieID int, apiKey string) domain.Outcome[domain.MovieRecord] {
		assert.Equal(t, "key", apiKey)
		return domain.Success(domain.MovieRecord{ID: movieID, Title: "Heat", DetailsFetched: true})
	})

	vm := NewDetailViewModel(context.Background(), src, "key")
	defer vm.Close()

	c := &collector[domain.MovieRecord]{}
	vm.Observe(c)
	vm.Load(949)

	require.Eventually(t, func() bool { return len(c.outcomes()) == 2 }, 2*time.Second, 5*time.Millisecond)
	got := c.outcomes()
	assert.True(t, got[0].IsLoading())
	require.True(t, got[1].IsSuccess())
	assert.Equal(t, "Heat", got[1].Data.Title)
}

func TestDetailCloseCancelsInflight(t *testing.T) {
	started := make(chan struct{})
	var sawCancel bool
	src := detailSourceFunc(func(ctx context.Context, _ int, _ string) domain.Outcome[domain.MovieRecord] {
		close(started)
		<-ctx.Done()
		sawCancel = true
		return domain.Failure[domain.MovieRecord](ctx.Err(), nil)
	})

	vm := NewDetailViewModel(context.Background(), src, "key")
	c := &collector[domain.MovieRecord]{}
	vm.Observe(c)

	vm.Load(1)
	<-started
	vm.Close()

	assert.True(t, sawCancel)
	got := c.outcomes()
	require.Len(t, got, 1, "nothing is published after Close")
	assert.True(t, got[0].IsLoading())

	vm.Load(2)
	assert.Len(t, c.outcomes(), 1)
}

func TestDetailNewerLoadWins(t *testing.T) {
	release := make(chan struct{})
	src := detailSourceFunc(func(_ context.Context, movieID int, _ string) domain.Outcome[domain.MovieRecord] {
		if movieID == 1 {
			<-release
		}
		return domain.Success(domain.MovieRecord{ID: movieID})
	})

	vm := NewDetailViewModel(context.Background(), src, "key")
	defer vm.Close()

	vm.Load(1)
	vm.Load(2)

	require.Eventually(t, func() bool {
		out, _ := vm.State()
		return out.IsSuccess()
	}, 2*time.Second, 5*time.Millisecond)

	close(release)
	time.Sleep(20 * time.Millisecond)

	out, _ := vm.State()
	require.True(t, out.IsSuccess())
	assert.Equal(t, 2, out.Data.ID)
}

func TestDetailParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	src := detailSourceFunc(func(ctx context.Context, _ int, _ string) domain.Outcome[domain.MovieRecord] {
		<-ctx.Done()
		return domain.Failure[domain.MovieRecord](ctx.Err(), nil)
	})

	vm := NewDetailViewModel(parent, src, "key")
	defer vm.Close()

	vm.Load(1)
	cancel()

	require.Eventually(t, func() bool {
		out, _ := vm.State()
		return out.IsError()
	}, 2*time.Second, 5*time.Millisecond)
	out, _ := vm.State()
	assert.ErrorIs(t, out.Err, context.Canceled)
}
