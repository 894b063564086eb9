// Package notify fans change events out to interested subscribers.
//
// Delivery is a coalesced signal: each subscription owns a one-slot channel and
// a burst of matching events collapses into a single pending wake-up. Publish
// never blocks on a slow subscriber.
package notify

import (
	"sync"
	"sync/atomic"
)

// Hub distributes events of type E.
type Hub[E any] struct {
	mu     sync.RWMutex
	subs   map[*Subscription[E]]struct{}
	closed bool
	seq    atomic.Uint64
}

// Subscription receives a signal on C whenever a matching event is published.
type Subscription[E any] struct {
	hub   *Hub[E]
	match func(E) bool
	ch    chan struct{}
	once  sync.Once
}

func NewHub[E any]() *Hub[E] {
	return &Hub[E]{subs: make(map[*Subscription[E]]struct{})}
}

// Subscribe registers match. A nil match receives every event.
// The subscription stays active until Close is called.
func (h *Hub[E]) Subscribe(match func(E) bool) *Subscription[E] {
	s := &Subscription[E]{
		hub:   h,
		match: match,
		ch:    make(chan struct{}, 1),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Closed reports whether Close has been called.
func (h *Hub[E]) Closed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}

// Publish delivers e to every matching subscriber without blocking.
func (h *Hub[E]) Publish(e E) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	h.seq.Add(1)
	for s := range h.subs {
		if s.match != nil && !s.match(e) {
			continue
		}
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
}

// Seq counts published events. It is incremented before any subscriber is
// signalled, so a reader woken by an event observes a Seq that includes it.
func (h *Hub[E]) Seq() uint64 {
	return h.seq.Load()
}

// Len returns the number of live subscriptions.
func (h *Hub[E]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close closes every subscription channel; later Subscribe calls return
// already-closed subscriptions.
func (h *Hub[E]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		s.once.Do(func() { close(s.ch) })
		delete(h.subs, s)
	}
}

// C is signalled at least once after any matching Publish. It is closed when
// the subscription or the hub is closed.
func (s *Subscription[E]) C() <-chan struct{} {
	return s.ch
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription[E]) Close() {
	s.hub.mu.Lock()
	delete(s.hub.subs, s)
	s.hub.mu.Unlock()
	s.once.Do(func() { close(s.ch) })
}
