// Package paging turns a stateless (offset, limit) fetch into lazily loaded pages.
package paging

import (
	"context"
	"iter"
	"sync"
)

// DefaultPageSize is used when a non-positive size is requested.
const DefaultPageSize = 20

// FetchFunc loads at most limit items starting at offset. It must be safe to
// call repeatedly with the same arguments.
type FetchFunc[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// Page is one loaded window.
type Page[T any] struct {
	Items []T
	// Page is 1-based
	Page     int
	PageSize int
	Offset   int
	HasNext  bool
}

// NextOffset is the offset of the following page.
func (p Page[T]) NextOffset() int {
	return p.Offset + len(p.Items)
}

// Source loads pages on demand. It holds no cached rows; every load hits the
// fetch function, so a reload after Invalidated fires sees current data.
type Source[T any] struct {
	fetch       FetchFunc[T]
	pageSize    int
	invalidated <-chan struct{}

	closeOnce sync.Once
	release   func()
}

// NewSource creates a source. invalidated may be nil; release, when set, is
// called once by Close.
func NewSource[T any](fetch FetchFunc[T], pageSize int, invalidated <-chan struct{}, release func()) *Source[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Source[T]{
		fetch:       fetch,
		pageSize:    pageSize,
		invalidated: invalidated,
		release:     release,
	}
}

func (s *Source[T]) PageSize() int {
	return s.pageSize
}

// Load fetches limit items at offset. One extra row is requested to learn
// whether a further page exists.
func (s *Source[T]) Load(ctx context.Context, offset, limit int) (Page[T], error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = s.pageSize
	}

	items, err := s.fetch(ctx, offset, limit+1)
	if err != nil {
		return Page[T]{}, err
	}

	p := Page[T]{
		Page:     offset/limit + 1,
		PageSize: limit,
		Offset:   offset,
	}
	if len(items) > limit {
		p.HasNext = true
		items = items[:limit]
	}
	p.Items = items
	return p, nil
}

// Page loads the 1-based page n.
func (s *Source[T]) Page(ctx context.Context, n int) (Page[T], error) {
	if n < 1 {
		n = 1
	}
	return s.Load(ctx, (n-1)*s.pageSize, s.pageSize)
}

// All walks every item page by page, fetching the next page only when the
// consumer reaches it. Iteration stops at the first error, which is yielded.
func (s *Source[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		offset := 0
		for {
			p, err := s.Load(ctx, offset, s.pageSize)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, item := range p.Items {
				if !yield(item, nil) {
					return
				}
			}
			if !p.HasNext {
				return
			}
			offset = p.NextOffset()
		}
	}
}

// Invalidated is signalled when the underlying data changed and loaded pages
// may be stale. Nil when the source was built without a signal.
func (s *Source[T]) Invalidated() <-chan struct{} {
	return s.invalidated
}

// Close releases the invalidation subscription.
func (s *Source[T]) Close() {
	s.closeOnce.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}
