package viewmodel

import "github.com/clint/tmdb/internal/domain"

// Observer receives every Outcome published by an Observable.
type Observer[T any] interface {
	OnChange(out domain.Outcome[T])
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc[T any] func(out domain.Outcome[T])

func (f ObserverFunc[T]) OnChange(out domain.Outcome[T]) { f(out) }

// ChannelObserver adapts Observer to a channel for Bubble Tea.
// The channel holds one Outcome; an unread value is replaced by a newer one.
type ChannelObserver[T any] struct {
	ch chan domain.Outcome[T]
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver[T any]() *ChannelObserver[T] {
	return &ChannelObserver[T]{ch: make(chan domain.Outcome[T], 1)}
}

// OnChange replaces any pending Outcome with out (never blocks).
func (o *ChannelObserver[T]) OnChange(out domain.Outcome[T]) {
	select {
	case <-o.ch:
	default:
	}
	select {
	case o.ch <- out:
	default: // Non-blocking if a concurrent sender won
	}
}

// C returns the receive side of the channel
func (o *ChannelObserver[T]) C() <-chan domain.Outcome[T] {
	return o.ch
}
