// Package observable provides a latest-wins value stream.
package observable

import "sync"

// Latest delivers values to a single consumer, keeping at most one undelivered
// value. Setting a new value while the previous one is still unread replaces
// it, so a slow reader only ever sees the most recent state.
type Latest[T any] struct {
	mu     sync.Mutex
	ch     chan T
	last   T
	has    bool
	closed bool
}

func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{ch: make(chan T, 1)}
}

// Set publishes v. It never blocks and is a no-op after Close.
func (l *Latest[T]) Set(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.last = v
	l.has = true
	// only Set sends and it holds mu, so after draining the slot is free
	select {
	case <-l.ch:
	default:
	}
	l.ch <- v
}

// C returns the receive side. It is closed after Close.
func (l *Latest[T]) C() <-chan T {
	return l.ch
}

// Value returns the most recently set value, delivered or not.
func (l *Latest[T]) Value() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last, l.has
}

// Close closes the channel. An undelivered value stays readable.
func (l *Latest[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.ch)
}
