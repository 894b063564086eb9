package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishCoalescesBurst(t *testing.T) {
	h := NewHub[int]()
	sub := h.Subscribe(nil)
	defer sub.Close()

	for i := 0; i < 10; i++ {
		h.Publish(i)
	}

	select {
	case <-sub.C():
	case <-time.After(time.Second):
		t.Fatal("no signal")
	}

	select {
	case <-sub.C():
		t.Fatal("burst should coalesce into one signal")
	default:
	}
}

func TestSubscribeFiltersEvents(t *testing.T) {
	h := NewHub[int]()
	even := h.Subscribe(func(e int) bool { return e%2 == 0 })
	defer even.Close()

	h.Publish(1)
	select {
	case <-even.C():
		t.Fatal("odd event delivered to even subscriber")
	default:
	}

	h.Publish(2)
	select {
	case <-even.C():
	case <-time.After(time.Second):
		t.Fatal("even event not delivered")
	}
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	h := NewHub[string]()
	slow := h.Subscribe(nil)
	defer slow.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.Publish("x")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked by a subscriber that never reads")
	}
}

func TestCloseReleasesSubscription(t *testing.T) {
	h := NewHub[int]()
	sub := h.Subscribe(nil)
	require.Equal(t, 1, h.Len())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, h.Len())

	_, ok := <-sub.C()
	assert.False(t, ok)

	h.Close()
	late := h.Subscribe(nil)
	_, ok = <-late.C()
	assert.False(t, ok)
}

func TestSeqCountsPublishedEvents(t *testing.T) {
	h := NewHub[int]()
	assert.Equal(t, uint64(0), h.Seq())

	h.Publish(1)
	h.Publish(2)
	assert.Equal(t, uint64(2), h.Seq())

	h.Close()
	h.Publish(3)
	assert.Equal(t, uint64(2), h.Seq(), "closed hub drops events")
}

func TestSubscribeAfterClose(t *testing.T) {
	h := NewHub[int]()
	h.Close()
	assert.True(t, h.Closed())

	sub := h.Subscribe(nil)
	_, ok := <-sub.C()
	assert.False(t, ok, "subscription on a closed hub starts closed")

	assert.NotPanics(t, sub.Close)
	assert.NotPanics(t, sub.Close)
	assert.Zero(t, h.Len())
}
