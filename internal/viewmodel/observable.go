package viewmodel

import (
	"sync"

	"github.com/clint/tmdb/internal/domain"
)

// Observable holds the latest Outcome and fans it out to observers.
// Observers are called synchronously, in publish order, and must not call
// back into the Observable.
type Observable[T any] struct {
	mu        sync.Mutex
	current   domain.Outcome[T]
	hasValue  bool
	observers map[int]Observer[T]
	nextID    int
}

// NewObservable creates an Observable with no value.
func NewObservable[T any]() *Observable[T] {
	return &Observable[T]{observers: make(map[int]Observer[T])}
}

// Set stores out and delivers it to every observer.
func (o *Observable[T]) Set(out domain.Outcome[T]) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.current = out
	o.hasValue = true
	for _, obs := range o.observers {
		obs.OnChange(out)
	}
}

// Get returns the latest Outcome and whether one was ever set.
func (o *Observable[T]) Get() (domain.Outcome[T], bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current, o.hasValue
}

// Observe registers obs, delivers the latest Outcome to it immediately
// and returns a function that unregisters it.
func (o *Observable[T]) Observe(obs Observer[T]) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.observers[id] = obs
	if o.hasValue {
		obs.OnChange(o.current)
	}
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.observers, id)
			o.mu.Unlock()
		})
	}
}
