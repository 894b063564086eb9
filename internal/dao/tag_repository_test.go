package dao

import (
	"context"
	"testing"

	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagListAndLookup(t *testing.T) {
	d := newTestDao(t)
	notes := NewNoteRepository(d)
	tags := NewTagRepository(d)
	ctx := context.Background()

	_, err := notes.InsertNoteWithTags(ctx, newNote("n", 1), named("zeta", "alpha"))
	require.NoError(t, err)

	list, err := tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "zeta", list[1].Name)

	byID, err := tags.GetByID(ctx, list[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "zeta", byID.Name)

	_, err = tags.GetByID(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	missing, err := tags.GetByName(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTagRename(t *testing.T) {
	d := newTestDao(t)
	notes := NewNoteRepository(d)
	tags := NewTagRepository(d)
	ctx := context.Background()

	id, err := notes.InsertNoteWithTags(ctx, newNote("n", 1), named("draft", "final"))
	require.NoError(t, err)
	draft, err := tags.GetByName(ctx, "draft")
	require.NoError(t, err)

	require.NoError(t, tags.Rename(ctx, draft.ID, "wip"))
	detail, err := notes.GetDetailedNote(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"wip", "final"}, detail.TagNames())

	err = tags.Rename(ctx, draft.ID, "final")
	assert.ErrorIs(t, err, domain.ErrConstraint)
	assert.False(t, IsRetryable(err))

	err = tags.Rename(ctx, 999, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTagDeleteRemovesLinksAndNotifiesNotes(t *testing.T) {
	d := newTestDao(t)
	notes := NewNoteRepository(d)
	tags := NewTagRepository(d)
	ctx := context.Background()

	id, err := notes.InsertNoteWithTags(ctx, newNote("n", 1), named("a", "b"))
	require.NoError(t, err)
	a, err := tags.GetByName(ctx, "a")
	require.NoError(t, err)

	sub := d.Changes().Subscribe(func(c Change) bool { return c.TouchesNote(id) })
	defer sub.Close()

	require.NoError(t, tags.Delete(ctx, a.ID))
	select {
	case <-sub.C():
	default:
		t.Fatal("tag delete did not reach the linked note's subscriber")
	}

	detail, err := notes.GetDetailedNote(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, detail.TagNames())
	assert.Equal(t, int64(0), countRows(t, d, &model.NoteTag{}, "tag_id = ?", a.ID))

	assert.ErrorIs(t, tags.Delete(ctx, a.ID), domain.ErrNotFound)
}

func TestTagCountOrphans(t *testing.T) {
	d := newTestDao(t)
	notes := NewNoteRepository(d)
	tags := NewTagRepository(d)
	ctx := context.Background()

	id, err := notes.InsertNoteWithTags(ctx, newNote("n", 1), named("x", "y"))
	require.NoError(t, err)
	_, err = notes.InsertNoteWithTags(ctx, newNote("m", 2), named("y"))
	require.NoError(t, err)

	n, err := tags.CountOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, notes.DeleteNote(ctx, id))
	n, err = tags.CountOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
