package service

import (
	"context"
	"testing"
	"time"

	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitFor reads w until pred accepts a value. Intermediate values may be
// skipped by the latest-wins delivery, so tests wait for a state, not a count.
func waitFor(t *testing.T, w *NoteWatch, pred func(*domain.NoteWithTags) bool) *domain.NoteWithTags {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case v, ok := <-w.C():
			if !ok {
				t.Fatal("watch closed while waiting")
			}
			if pred(v) {
				return v
			}
		case <-timeout:
			t.Fatal("timed out waiting for watch value")
			return nil
		}
	}
}

func TestWatchDetailedNoteFollowsWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.notes.InsertNoteWithTags(ctx, &domain.Note{Heading: "first"}, named("red"))
	require.NoError(t, err)

	w, err := env.notes.WatchDetailedNote(ctx, id)
	require.NoError(t, err)
	defer w.Close()

	v := waitFor(t, w, func(v *domain.NoteWithTags) bool { return v != nil })
	assert.Equal(t, "first", v.Note.Heading)
	assert.Equal(t, []string{"red"}, v.TagNames())

	require.NoError(t, env.notes.UpdateNoteWithTags(ctx, &domain.Note{ID: id, Heading: "second"}, named("red", "blue")))
	v = waitFor(t, w, func(v *domain.NoteWithTags) bool { return v != nil && v.Note.Heading == "second" })
	assert.Equal(t, []string{"red", "blue"}, v.TagNames())

	red, err := env.tags.GetTagByName(ctx, "red")
	require.NoError(t, err)
	require.NoError(t, env.tags.RenameTag(ctx, red.ID, "crimson"))
	waitFor(t, w, func(v *domain.NoteWithTags) bool {
		return v != nil && len(v.Tags) == 2 && v.Tags[0].Name == "crimson"
	})

	require.NoError(t, env.notes.DeleteNote(ctx, id))
	waitFor(t, w, func(v *domain.NoteWithTags) bool { return v == nil })
	assert.NoError(t, w.Err())
}

func TestWatchIgnoresOtherNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.notes.InsertNoteWithTags(ctx, &domain.Note{Heading: "mine"}, named("shared"))
	require.NoError(t, err)

	w, err := env.notes.WatchDetailedNote(ctx, id)
	require.NoError(t, err)
	defer w.Close()
	waitFor(t, w, func(v *domain.NoteWithTags) bool { return v != nil })

	// a different note linking the same tag is not a change of this note
	_, err = env.notes.InsertNoteWithTags(ctx, &domain.Note{Heading: "other"}, named("shared"))
	require.NoError(t, err)

	select {
	case v := <-w.C():
		t.Fatalf("unexpected value %+v", v)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchAbsentNoteEmitsNil(t *testing.T) {
	env := newTestEnv(t)

	w, err := env.notes.WatchDetailedNote(context.Background(), 12345)
	require.NoError(t, err)
	defer w.Close()

	select {
	case v := <-w.C():
		assert.Nil(t, v)
	case <-time.After(3 * time.Second):
		t.Fatal("no initial value")
	}
}

func TestWatchReleasedOnCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	w, err := env.notes.WatchDetailedNote(ctx, 1)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return env.dao.Changes().Len() == 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-w.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("watch kept running after cancel")
	}
	assert.Equal(t, 0, env.dao.Changes().Len())

	for range w.C() {
	}
}

func TestWatchCloseIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	w, err := env.notes.WatchDetailedNote(context.Background(), 1)
	require.NoError(t, err)

	w.Close()
	w.Close()
	assert.Equal(t, 0, env.dao.Changes().Len())

	select {
	case <-w.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("watch goroutine did not stop")
	}
}

func TestWatchRejectsBadID(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.notes.WatchDetailedNote(context.Background(), 0)
	assert.ErrorIs(t, err, code.ErrorInvalidParams)
}

func TestWatchRefusedAfterDaoClose(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.notes.InsertNoteWithTags(ctx, &domain.Note{Heading: "late"}, nil)
	require.NoError(t, err)

	require.NoError(t, env.dao.Close(ctx))

	w, err := env.notes.WatchDetailedNote(ctx, id)
	assert.Nil(t, w)
	assert.ErrorIs(t, err, code.ErrorStorageRetryable)

	// a page source opened during shutdown closes cleanly
	src := env.notes.FilterNotes(ctx, domain.DefaultNoteFilter(), 0)
	assert.NotPanics(t, src.Close)
}
