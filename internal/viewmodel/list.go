package viewmodel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/clint/tmdb/internal/domain"
)

// ListSource provides the cached movie list and the list sync.
// Implemented by catalog.Repository.
type ListSource interface {
	List(key domain.SortKey, order domain.SortOrder) ([]domain.MovieRecord, error)
	ObserveAll(ctx context.Context) <-chan []domain.MovieRecord
	SyncTopRated(ctx context.Context, apiKey string, pages int, onProgress domain.ProgressFunc) (domain.SyncResult, error)
}

// ListViewModel drives the movie list screen: it republishes the cached
// records in the selected order whenever the store changes.
type ListViewModel struct {
	source ListSource
	apiKey string
	logger *slog.Logger
	state  *Observable[[]domain.MovieRecord]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex // Protects the fields below
	key        domain.SortKey
	order      domain.SortOrder
	closed     bool
	started    bool
	refreshing bool
	last       []domain.MovieRecord

	pubMu sync.Mutex // Serializes query+publish
}

// NewListViewModel creates a view model scoped to parent.
func NewListViewModel(parent context.Context, source ListSource, apiKey string, logger *slog.Logger) *ListViewModel {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(parent)
	return &ListViewModel{
		source: source,
		apiKey: apiKey,
		logger: logger,
		state:  NewObservable[[]domain.MovieRecord](),
		ctx:    ctx,
		cancel: cancel,
		order:  domain.Descending,
	}
}

// Observe subscribes to the list state.
func (vm *ListViewModel) Observe(obs Observer[[]domain.MovieRecord]) func() {
	return vm.state.Observe(obs)
}

// State returns the latest published Outcome.
func (vm *ListViewModel) State() (domain.Outcome[[]domain.MovieRecord], bool) {
	return vm.state.Get()
}

// Sort returns the current sort key and order.
func (vm *ListViewModel) Sort() (domain.SortKey, domain.SortOrder) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.key, vm.order
}

// Start publishes Loading and follows the store until Close.
// Only the first call has an effect.
func (vm *ListViewModel) Start() {
	vm.mu.Lock()
	if vm.closed || vm.started {
		vm.mu.Unlock()
		return
	}
	vm.started = true
	vm.wg.Add(1)
	vm.mu.Unlock()

	vm.publish(domain.Loading[[]domain.MovieRecord]())

	updates := vm.source.ObserveAll(vm.ctx)
	go func() {
		defer vm.wg.Done()
		for range updates {
			vm.reload()
		}
	}()
}

// SetSort changes the order of the list and republishes it.
func (vm *ListViewModel) SetSort(key domain.SortKey, order domain.SortOrder) {
	vm.mu.Lock()
	vm.key = key
	vm.order = order
	vm.mu.Unlock()

	vm.reload()
}

// Refresh publishes Loading and syncs pages of the top rated list.
// On failure the cached list is published as stale data.
// Returns false when a refresh is already running or the view model is closed.
func (vm *ListViewModel) Refresh(pages int, onProgress domain.ProgressFunc) bool {
	vm.mu.Lock()
	if vm.closed || vm.refreshing {
		vm.mu.Unlock()
		return false
	}
	vm.refreshing = true
	vm.wg.Add(1)
	vm.mu.Unlock()

	vm.publish(domain.Loading[[]domain.MovieRecord]())

	go func() {
		defer vm.wg.Done()

		result, err := vm.source.SyncTopRated(vm.ctx, vm.apiKey, pages, onProgress)

		vm.mu.Lock()
		vm.refreshing = false
		vm.mu.Unlock()

		if err != nil {
			vm.logger.Error("refresh failed", "error", err)
			vm.fail(err)
			return
		}
		vm.logger.Debug("refresh complete", "inserted", result.Inserted, "pages", result.Pages)
		vm.reload()
	}()
	return true
}

// reload queries the list in the current order and publishes it.
// Store snapshots during a refresh are held back until it finishes.
func (vm *ListViewModel) reload() {
	vm.pubMu.Lock()
	defer vm.pubMu.Unlock()

	vm.mu.Lock()
	key, order, refreshing := vm.key, vm.order, vm.refreshing
	vm.mu.Unlock()
	if refreshing {
		return
	}

	recs, err := vm.source.List(key, order)
	if err != nil {
		vm.logger.Error("failed to list movies", "error", err)
		vm.publishLocked(vm.failure(err, nil))
		return
	}

	vm.mu.Lock()
	vm.last = recs
	vm.mu.Unlock()
	vm.publishLocked(domain.Success(recs))
}

func (vm *ListViewModel) fail(err error) {
	vm.pubMu.Lock()
	defer vm.pubMu.Unlock()

	vm.mu.Lock()
	key, order := vm.key, vm.order
	vm.mu.Unlock()

	recs, listErr := vm.source.List(key, order)
	if listErr != nil {
		recs = nil
	}
	vm.publishLocked(vm.failure(err, recs))
}

// failure builds an Error outcome carrying recs, or the last published list
func (vm *ListViewModel) failure(err error, recs []domain.MovieRecord) domain.Outcome[[]domain.MovieRecord] {
	if recs == nil {
		vm.mu.Lock()
		recs = vm.last
		vm.mu.Unlock()
	}
	if recs == nil {
		return domain.Failure[[]domain.MovieRecord](err, nil)
	}
	return domain.Failure(err, &recs)
}

func (vm *ListViewModel) publish(out domain.Outcome[[]domain.MovieRecord]) {
	vm.pubMu.Lock()
	defer vm.pubMu.Unlock()
	vm.publishLocked(out)
}

func (vm *ListViewModel) publishLocked(out domain.Outcome[[]domain.MovieRecord]) {
	vm.mu.Lock()
	closed := vm.closed
	vm.mu.Unlock()
	if closed {
		return
	}
	vm.state.Set(out)
}

// Close ends the screen scope and waits for background work.
func (vm *ListViewModel) Close() {
	vm.pubMu.Lock()
	vm.mu.Lock()
	vm.closed = true
	vm.mu.Unlock()
	vm.pubMu.Unlock()

	vm.cancel()
	vm.wg.Wait()
}
