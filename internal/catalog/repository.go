package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/clint/tmdb/internal/domain"
	"golang.org/x/sync/singleflight"
)

const defaultSyncPages = 5

// Repository owns the cache-vs-network decision for movie data.
// Reads are served by the embedded Queries.
type Repository struct {
	*Queries

	client   domain.CatalogClient
	store    domain.MovieStore
	logger   *slog.Logger
	observer domain.DetailObserver
	inflight singleflight.Group

	mu    sync.Mutex
	calls map[int]*detailCall
}

// detailCall scopes one shared details fetch to the callers waiting on it
type detailCall struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewRepository creates a new repository.
func NewRepository(client domain.CatalogClient, store domain.MovieStore, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		Queries:  NewQueries(store),
		client:   client,
		store:    store,
		logger:   logger,
		observer: domain.NoOpObserver{},
		calls:    make(map[int]*detailCall),
	}
}

// SetDetailObserver installs an observer for details lookups. Call before use.
func (r *Repository) SetDetailObserver(obs domain.DetailObserver) {
	if obs == nil {
		obs = domain.NoOpObserver{}
	}
	r.observer = obs
}

// === Store passthrough ===

func (r *Repository) InsertMovie(rec domain.MovieRecord) (domain.MovieRecord, error) {
	return r.store.Insert(rec)
}

func (r *Repository) UpdateMovie(id int, update domain.DetailsUpdate) error {
	return r.store.UpdateDetails(id, update)
}

// Invalidate wipes every cached record
func (r *Repository) Invalidate() error {
	if err := r.store.InvalidateAll(); err != nil {
		r.logger.Error("failed to invalidate cache", "error", err)
		return err
	}
	r.logger.Info("cache invalidated")
	return nil
}

// === Remote fetches (not persisted) ===

func (r *Repository) FetchTopRatedList(ctx context.Context, apiKey string, page int) domain.Outcome[domain.MoviePage] {
	p, err := r.client.GetTopRated(ctx, apiKey, page)
	if err != nil {
		r.logger.Error("failed to fetch top rated", "page", page, "error", err)
		return domain.Failure[domain.MoviePage](err, nil)
	}
	return domain.Success(*p)
}

func (r *Repository) FetchMovieDetails(ctx context.Context, apiKey string, movieID int) domain.Outcome[domain.MovieDetails] {
	d, err := r.client.GetMovieDetails(ctx, apiKey, movieID)
	if err != nil {
		r.logger.Error("failed to fetch movie details", "movieID", movieID, "error", err)
		return domain.Failure[domain.MovieDetails](err, nil)
	}
	return domain.Success(*d)
}

// === Cached details ===

// GetMovieDetails returns the full record for movieID, fetching and
// persisting the details when the local record does not have them yet.
// Concurrent callers for the same movie share one remote call.
// On failure the local summary record, if any, is returned as stale data.
func (r *Repository) GetMovieDetails(ctx context.Context, movieID int, apiKey string) domain.Outcome[domain.MovieRecord] {
	r.transition(movieID, domain.StateCheckingCache)

	local, err := r.store.Get(movieID)
	switch {
	case err == nil && local.DetailsFetched:
		r.transition(movieID, domain.StateReady)
		return domain.Success(local)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		r.transition(movieID, domain.StateFailed)
		r.logger.Error("failed to read movie", "movieID", movieID, "error", err)
		return domain.Failure[domain.MovieRecord](err, nil)
	}

	var stale *domain.MovieRecord
	if err == nil {
		stale = &local
	}

	// The shared call runs until the last waiting caller leaves
	call := r.join(ctx, movieID)
	defer r.leave(movieID, call)

	ch := r.inflight.DoChan(strconv.Itoa(movieID), func() (any, error) {
		return r.fetchAndPersist(call.ctx, movieID, apiKey)
	})

	select {
	case <-ctx.Done():
		r.transition(movieID, domain.StateFailed)
		return domain.Failure[domain.MovieRecord](ctx.Err(), stale)
	case res := <-ch:
		if res.Err != nil {
			r.transition(movieID, domain.StateFailed)
			r.logger.Error("failed to load movie details", "movieID", movieID, "error", res.Err)
			return domain.Failure[domain.MovieRecord](res.Err, stale)
		}
		r.transition(movieID, domain.StateReady)
		return domain.Success(res.Val.(domain.MovieRecord))
	}
}

// fetchAndPersist fetches details, merges them into the store and reads the
// record back so callers observe the persisted state.
func (r *Repository) fetchAndPersist(ctx context.Context, movieID int, apiKey string) (domain.MovieRecord, error) {
	r.transition(movieID, domain.StateFetchingRemote)

	details, err := r.client.GetMovieDetails(ctx, apiKey, movieID)
	if err != nil {
		return domain.MovieRecord{}, err
	}

	// Every caller left while the request was in flight
	if err := ctx.Err(); err != nil {
		return domain.MovieRecord{}, err
	}

	r.transition(movieID, domain.StatePersisting)

	err = r.store.UpdateDetails(movieID, details.Update())
	if errors.Is(err, domain.ErrNotFound) {
		rec := details.Record()
		rec.ID = movieID
		_, err = r.store.Insert(rec)
		if errors.Is(err, domain.ErrDuplicateID) {
			// A list sync inserted the summary in the meantime
			err = r.store.UpdateDetails(movieID, details.Update())
		}
	}
	if err != nil {
		return domain.MovieRecord{}, fmt.Errorf("persist movie %d: %w", movieID, err)
	}

	return r.store.Get(movieID)
}

// join registers a caller waiting on the details fetch for movieID.
// The first caller creates the fetch context; it keeps the caller's values
// but is cancelled only by leave.
func (r *Repository) join(ctx context.Context, movieID int) *detailCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	call, ok := r.calls[movieID]
	if !ok {
		callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		call = &detailCall{ctx: callCtx, cancel: cancel}
		r.calls[movieID] = call
	}
	call.waiters++
	return call
}

// leave drops a waiter. The last one out cancels the fetch and forgets the
// in-flight key so a later caller starts a fresh request.
func (r *Repository) leave(movieID int, call *detailCall) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call.waiters--
	if call.waiters > 0 {
		return
	}
	call.cancel()
	delete(r.calls, movieID)
	r.inflight.Forget(strconv.Itoa(movieID))
}

func (r *Repository) transition(movieID int, state domain.DetailState) {
	r.logger.Debug("movie details", "movieID", movieID, "state", state.String())
	r.observer.OnDetailState(movieID, state)
}

// === List sync ===

// SyncTopRated fetches up to pages pages of the top rated list and inserts
// each movie as a summary-only record. Movies already cached are left
// untouched so previously fetched details survive.
func (r *Repository) SyncTopRated(
	ctx context.Context,
	apiKey string,
	pages int,
	onProgress domain.ProgressFunc,
) (domain.SyncResult, error) {
	var result domain.SyncResult

	movies, fetched, err := fetchAll(ctx, func(ctx context.Context, page int) ([]domain.MovieSummary, int, error) {
		p, err := r.client.GetTopRated(ctx, apiKey, page)
		if err != nil {
			return nil, 0, err
		}
		return p.Movies, p.TotalPages, nil
	}, pages, onProgress)
	result.Pages = fetched
	result.Fetched = len(movies)

	// Pages fetched before a failure are still cached
	for _, m := range movies {
		if m.ID <= 0 {
			continue
		}
		_, insertErr := r.store.Insert(m.Record())
		switch {
		case insertErr == nil:
			result.Inserted++
		case errors.Is(insertErr, domain.ErrDuplicateID):
			// Already cached
		default:
			return result, fmt.Errorf("insert movie %d: %w", m.ID, insertErr)
		}
	}

	if err != nil {
		r.logger.Error("failed to sync top rated", "page", fetched+1, "error", err)
		return result, err
	}

	r.logger.Debug("synced top rated",
		"pages", result.Pages,
		"fetched", result.Fetched,
		"inserted", result.Inserted,
	)
	return result, nil
}
