package viewmodel

import (
	"context"
	"sync"

	"github.com/clint/tmdb/internal/domain"
)

// DetailSource resolves the full record of one movie.
// Implemented by catalog.Repository.
type DetailSource interface {
	GetMovieDetails(ctx context.Context, movieID int, apiKey string) domain.Outcome[domain.MovieRecord]
}

// DetailViewModel drives the details screen of a single movie.
// Work runs in the screen scope and stops at Close.
type DetailViewModel struct {
	source DetailSource
	apiKey string
	state  *Observable[domain.MovieRecord]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex // Protects closed and seq
	closed bool
	seq    int // Latest Load; older results are dropped
}

// NewDetailViewModel creates a view model scoped to parent.
func NewDetailViewModel(parent context.Context, source DetailSource, apiKey string) *DetailViewModel {
	ctx, cancel := context.WithCancel(parent)
	return &DetailViewModel{
		source: source,
		apiKey: apiKey,
		state:  NewObservable[domain.MovieRecord](),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Observe subscribes to the details state.
func (vm *DetailViewModel) Observe(obs Observer[domain.MovieRecord]) func() {
	return vm.state.Observe(obs)
}

// State returns the latest published Outcome.
func (vm *DetailViewModel) State() (domain.Outcome[domain.MovieRecord], bool) {
	return vm.state.Get()
}

// Load publishes Loading, then the outcome of the details lookup.
// A newer Load supersedes a pending one. No-op after Close.
func (vm *DetailViewModel) Load(movieID int) {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.seq++
	seq := vm.seq
	vm.wg.Add(1)
	vm.mu.Unlock()

	vm.publish(seq, domain.Loading[domain.MovieRecord]())

	go func() {
		defer vm.wg.Done()
		out := vm.source.GetMovieDetails(vm.ctx, movieID, vm.apiKey)
		vm.publish(seq, out)
	}()
}

func (vm *DetailViewModel) publish(seq int, out domain.Outcome[domain.MovieRecord]) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed || seq != vm.seq {
		return
	}
	vm.state.Set(out)
}

// Close cancels in-flight work and waits for it. Nothing is published afterwards.
func (vm *DetailViewModel) Close() {
	vm.mu.Lock()
	vm.closed = true
	vm.mu.Unlock()

	vm.cancel()
	vm.wg.Wait()
}
