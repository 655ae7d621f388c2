package store

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/clint/tmdb/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// schemaVersion is bumped whenever MovieRecord changes incompatibly.
// A mismatch drops the movies bucket and the cache refills from the network.
const schemaVersion = 2

// Bucket names
var (
	bucketMovies = []byte("movies")
	bucketMeta   = []byte("meta")

	keySchemaVersion = []byte("schema_version")
)

// MovieStore implements domain.MovieStore using BoltDB.
// Records are JSON values keyed by their big-endian identifier,
// so cursor order is identifier order.
type MovieStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[int][]byte

	watchMu     sync.Mutex
	watchers    map[int]chan []domain.MovieRecord
	nextWatcher int
	closed      bool
	done        chan struct{}
}

// NewMovieStore opens (or creates) the store for one catalog API.
// Each API base URL gets its own database under baseCacheDir.
func NewMovieStore(baseCacheDir, apiBaseURL string) (*MovieStore, error) {
	if baseCacheDir == "" {
		return nil, errors.New("cache directory is required")
	}

	dir := baseCacheDir
	if apiBaseURL != "" {
		dir = filepath.Join(baseCacheDir, hashBaseURL(apiBaseURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "tmdb.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	if err := db.Update(migrate); err != nil {
		db.Close()
		return nil, err
	}

	return &MovieStore{
		db:       db,
		cache:    make(map[int][]byte),
		watchers: make(map[int]chan []domain.MovieRecord),
		done:     make(chan struct{}),
	}, nil
}

// migrate creates the buckets and drops records written by another schema version.
func migrate(tx *bolt.Tx) error {
	meta, err := tx.CreateBucketIfNotExists(bucketMeta)
	if err != nil {
		return err
	}

	want := strconv.Itoa(schemaVersion)
	if string(meta.Get(keySchemaVersion)) != want {
		if tx.Bucket(bucketMovies) != nil {
			if err := tx.DeleteBucket(bucketMovies); err != nil {
				return err
			}
		}
		if err := meta.Put(keySchemaVersion, []byte(want)); err != nil {
			return err
		}
	}

	_, err = tx.CreateBucketIfNotExists(bucketMovies)
	return err
}

func hashBaseURL(baseURL string) string {
	normalized := strings.TrimRight(strings.ToLower(baseURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *MovieStore) Close() error {
	s.watchMu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
		for id, ch := range s.watchers {
			close(ch)
			delete(s.watchers, id)
		}
	}
	s.watchMu.Unlock()

	return s.db.Close()
}

// === Generic helpers ===

func itob(id int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func (s *MovieStore) promote(id int, data []byte) {
	s.mu.Lock()
	s.cache[id] = data
	s.mu.Unlock()
}

// fill caches bytes read from disk unless a write promoted newer ones meanwhile
func (s *MovieStore) fill(id int, data []byte) {
	s.mu.Lock()
	if _, ok := s.cache[id]; !ok {
		s.cache[id] = data
	}
	s.mu.Unlock()
}

// === Writes ===

func (s *MovieStore) Insert(rec domain.MovieRecord) (domain.MovieRecord, error) {
	if rec.ID < 0 {
		return domain.MovieRecord{}, fmt.Errorf("invalid movie id %d", rec.ID)
	}

	var data []byte
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMovies)

		if rec.ID == 0 {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			rec.ID = int(seq)
		} else if uint64(rec.ID) > b.Sequence() {
			// Keep auto-assigned identifiers clear of explicit ones
			if err := b.SetSequence(uint64(rec.ID)); err != nil {
				return err
			}
		}

		key := itob(rec.ID)
		if b.Get(key) != nil {
			return fmt.Errorf("insert movie %d: %w", rec.ID, domain.ErrDuplicateID)
		}

		var err error
		data, err = json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
	if err != nil {
		return domain.MovieRecord{}, err
	}

	s.promote(rec.ID, data)
	s.notify()
	return rec, nil
}

func (s *MovieStore) UpdateDetails(id int, update domain.DetailsUpdate) error {
	var data []byte
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMovies)
		key := itob(id)

		v := b.Get(key)
		if v == nil {
			return fmt.Errorf("update movie %d: %w", id, domain.ErrNotFound)
		}

		var rec domain.MovieRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("decode movie %d: %w", id, err)
		}

		var err error
		data, err = json.Marshal(update.Apply(rec))
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
	if err != nil {
		return err
	}

	s.promote(id, data)
	s.notify()
	return nil
}

// InvalidateAll wipes every record. The identifier sequence restarts.
func (s *MovieStore) InvalidateAll() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketMovies); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(bucketMovies)
		return err
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache = make(map[int][]byte)
	s.mu.Unlock()

	s.notify()
	return nil
}

// === Reads ===

func (s *MovieStore) Get(id int) (domain.MovieRecord, error) {
	var rec domain.MovieRecord

	// Check memory cache first
	s.mu.RLock()
	data, ok := s.cache[id]
	s.mu.RUnlock()

	if !ok {
		err := s.db.View(func(tx *bolt.Tx) error {
			if v := tx.Bucket(bucketMovies).Get(itob(id)); v != nil {
				data = make([]byte, len(v))
				copy(data, v)
			}
			return nil
		})
		if err != nil {
			return rec, err
		}
		if data == nil {
			return rec, fmt.Errorf("get movie %d: %w", id, domain.ErrNotFound)
		}
		s.fill(id, data)
	}

	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.MovieRecord{}, fmt.Errorf("decode movie %d: %w", id, err)
	}
	return rec, nil
}

func (s *MovieStore) ListAll() ([]domain.MovieRecord, error) {
	recs := []domain.MovieRecord{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMovies).ForEach(func(k, v []byte) error {
			var rec domain.MovieRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode movie %d: %w", binary.BigEndian.Uint64(k), err)
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *MovieStore) ListByRating(order domain.SortOrder) ([]domain.MovieRecord, error) {
	recs, err := s.ListAll()
	if err != nil {
		return nil, err
	}
	sortRecords(recs, order, func(r domain.MovieRecord) float64 { return r.Rating })
	return recs, nil
}

// ListByReleaseDate orders by the YYYY-MM-DD string, which sorts chronologically.
func (s *MovieStore) ListByReleaseDate(order domain.SortOrder) ([]domain.MovieRecord, error) {
	recs, err := s.ListAll()
	if err != nil {
		return nil, err
	}
	sortRecords(recs, order, func(r domain.MovieRecord) string { return r.ReleaseDate })
	return recs, nil
}

// sortRecords orders recs by key in the given direction.
// Equal keys keep ascending identifier order in both directions.
func sortRecords[K cmp.Ordered](recs []domain.MovieRecord, order domain.SortOrder, key func(domain.MovieRecord) K) {
	sort.SliceStable(recs, func(i, j int) bool {
		c := cmp.Compare(key(recs[i]), key(recs[j]))
		if order == domain.Descending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return recs[i].ID < recs[j].ID
	})
}

// === Watch ===

func (s *MovieStore) Watch(ctx context.Context) <-chan []domain.MovieRecord {
	ch := make(chan []domain.MovieRecord, 1)

	s.watchMu.Lock()
	if s.closed {
		s.watchMu.Unlock()
		close(ch)
		return ch
	}
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch
	if recs, err := s.ListAll(); err == nil {
		ch <- recs
	}
	s.watchMu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
		}
		s.watchMu.Lock()
		if _, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(ch)
		}
		s.watchMu.Unlock()
	}()

	return ch
}

// notify pushes a fresh snapshot to every watcher, replacing any unread one.
func (s *MovieStore) notify() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	if len(s.watchers) == 0 {
		return
	}
	recs, err := s.ListAll()
	if err != nil {
		return
	}
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- slices.Clone(recs)
	}
}
