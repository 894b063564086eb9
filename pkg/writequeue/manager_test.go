package writequeue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, cfg *Config) *Manager {
	t.Helper()
	m := New(cfg, nil)
	t.Cleanup(func() {
		_ = m.Shutdown(context.Background())
	})
	return m
}

func TestExecuteSameLaneIsFIFO(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	var mu sync.Mutex
	var order []int

	block := make(chan struct{})
	started := make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- m.Execute(ctx, 7, func(context.Context) error {
			close(started)
			<-block
			mu.Lock()
			order = append(order, 0)
			mu.Unlock()
			return nil
		})
	}()
	<-started

	var wg sync.WaitGroup
	for i := 1; i <= 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Execute(ctx, 7, func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}(i)
		// wait until the op is queued so submission order is deterministic
		require.Eventually(t, func() bool { return m.QueuedCount(7) == i }, time.Second, time.Millisecond)
	}

	close(block)
	wg.Wait()
	require.NoError(t, <-firstDone)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, order)
}

func TestExecuteLanesRunConcurrently(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	block := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = m.Execute(ctx, 1, func(context.Context) error {
			close(started)
			<-block
			return nil
		})
	}()
	<-started

	done := make(chan error, 1)
	go func() {
		done <- m.Execute(ctx, 2, func(context.Context) error { return nil })
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("lane 2 was blocked by lane 1")
	}
	close(block)
}

func TestExecuteAbandonedWhileQueuedNeverRuns(t *testing.T) {
	m := newTestManager(t, nil)

	block := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = m.Execute(context.Background(), 3, func(context.Context) error {
			close(started)
			<-block
			return nil
		})
	}()
	<-started

	var ran atomic.Bool
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := m.Execute(ctx, 3, func(context.Context) error {
		ran.Store(true)
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(block)
	// a later op on the same lane proves the abandoned one was skipped
	require.NoError(t, m.Execute(context.Background(), 3, func(context.Context) error { return nil }))
	assert.False(t, ran.Load())
}

func TestExecuteTimeout(t *testing.T) {
	m := newTestManager(t, &Config{WriteTimeout: 20 * time.Millisecond})

	err := m.Execute(context.Background(), 4, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, ErrWriteTimeout)
}

func TestExecuteQueueFull(t *testing.T) {
	m := newTestManager(t, &Config{QueueCapacity: 1})
	ctx := context.Background()

	block := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = m.Execute(ctx, 5, func(context.Context) error {
			close(started)
			<-block
			return nil
		})
	}()
	<-started

	go func() {
		_ = m.Execute(ctx, 5, func(context.Context) error { return nil })
	}()
	require.Eventually(t, func() bool { return m.QueuedCount(5) == 1 }, time.Second, time.Millisecond)

	err := m.Execute(ctx, 5, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueFull)
	close(block)
}

func TestShutdownRejectsNewWork(t *testing.T) {
	m := New(nil, nil)
	require.NoError(t, m.Execute(context.Background(), 1, func(context.Context) error { return nil }))
	assert.Equal(t, 1, m.LaneCount())

	require.NoError(t, m.Shutdown(context.Background()))
	assert.True(t, m.IsClosed())

	err := m.Execute(context.Background(), 1, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueClosed)
}
