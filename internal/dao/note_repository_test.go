package dao

import (
	"context"
	"testing"

	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNote(heading string, createdAt int64) *domain.Note {
	return &domain.Note{Heading: heading, CreatedAt: createdAt, UpdatedAt: createdAt}
}

func named(names ...string) []domain.Tag {
	tags := make([]domain.Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, domain.Tag{Name: n})
	}
	return tags
}

func ids(notes []*domain.Note) []int64 {
	out := make([]int64, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func TestInsertNoteWithTagsThenDetail(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	n := newNote("Plan", 1000)
	n.ID = 999
	n.Title = domain.String("weekend")
	n.Color = domain.String("#ffcc00")
	n.IsPinned = true
	n.ThemeID = 3

	id, err := repo.InsertNoteWithTags(ctx, n, named("work", "home"))
	require.NoError(t, err)
	assert.NotEqual(t, int64(999), id, "caller id is ignored")

	got, err := repo.GetDetailedNote(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, id, got.Note.ID)
	assert.Equal(t, "Plan", got.Note.Heading)
	assert.Equal(t, "weekend", domain.Deref(got.Note.Title))
	assert.Nil(t, got.Note.Body)
	assert.Equal(t, "#ffcc00", domain.Deref(got.Note.Color))
	assert.True(t, got.Note.IsPinned)
	assert.Equal(t, 3, got.Note.ThemeID)
	assert.Equal(t, []string{"work", "home"}, got.TagNames())
}

func TestGetDetailedNoteAbsent(t *testing.T) {
	d := newTestDao(t)
	got, err := NewNoteRepository(d).GetDetailedNote(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetDetailedNoteWithoutTags(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	id, err := repo.InsertNoteWithTags(ctx, newNote("bare", 1), nil)
	require.NoError(t, err)

	got, err := repo.GetDetailedNote(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Tags)
}

func TestInsertDuplicateTagReusesRow(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	first, err := repo.InsertNoteWithTags(ctx, newNote("a", 1), named("shared"))
	require.NoError(t, err)
	second, err := repo.InsertNoteWithTags(ctx, newNote("b", 2), named("shared", "shared", "other"))
	require.NoError(t, err)

	assert.Equal(t, int64(2), countRows(t, d, &model.Tag{}, ""))

	a, err := repo.GetDetailedNote(ctx, first)
	require.NoError(t, err)
	b, err := repo.GetDetailedNote(ctx, second)
	require.NoError(t, err)

	require.Len(t, b.Tags, 2)
	assert.Equal(t, a.Tags[0].ID, b.Tags[0].ID)
	assert.Equal(t, []string{"shared", "other"}, b.TagNames())
}

func TestTagNamesAreCaseSensitive(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)

	_, err := repo.InsertNoteWithTags(context.Background(), newNote("a", 1), named("Work", "work"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), countRows(t, d, &model.Tag{}, ""))
}

func TestInsertWithTagByID(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	first, err := repo.InsertNoteWithTags(ctx, newNote("a", 1), named("kept"))
	require.NoError(t, err)
	detail, err := repo.GetDetailedNote(ctx, first)
	require.NoError(t, err)
	tagID := detail.Tags[0].ID

	second, err := repo.InsertNoteWithTags(ctx, newNote("b", 2), []domain.Tag{{ID: tagID}})
	require.NoError(t, err)
	detail, err = repo.GetDetailedNote(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, detail.TagNames())

	_, err = repo.InsertNoteWithTags(ctx, newNote("c", 3), []domain.Tag{{ID: tagID + 100}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	// the failed insert rolled back its note row
	assert.Equal(t, int64(2), countRows(t, d, &model.Note{}, ""))
}

func TestTagNameTakesPrecedenceOverID(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	first, err := repo.InsertNoteWithTags(ctx, newNote("a", 1), named("old"))
	require.NoError(t, err)
	detail, err := repo.GetDetailedNote(ctx, first)
	require.NoError(t, err)
	oldID := detail.Tags[0].ID

	second, err := repo.InsertNoteWithTags(ctx, newNote("b", 2), []domain.Tag{{ID: oldID, Name: "fresh"}})
	require.NoError(t, err)
	detail, err = repo.GetDetailedNote(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, detail.TagNames())
	assert.NotEqual(t, oldID, detail.Tags[0].ID)
}

func TestDeleteNoteCascadesLinksKeepsTags(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	id, err := repo.InsertNoteWithTags(ctx, newNote("gone", 1), named("x", "y"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteNote(ctx, id))

	assert.Equal(t, int64(0), countRows(t, d, &model.NoteTag{}, "note_id = ?", id))
	assert.Equal(t, int64(2), countRows(t, d, &model.Tag{}, ""))

	got, err := repo.GetDetailedNote(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = repo.DeleteNote(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateNoteWithTagsReplacesLinks(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	id, err := repo.InsertNoteWithTags(ctx, newNote("v1", 1), named("old", "keep"))
	require.NoError(t, err)

	n := newNote("v2", 1)
	n.ID = id
	n.UpdatedAt = 5
	n.Body = domain.String("body")
	require.NoError(t, repo.UpdateNoteWithTags(ctx, n, named("keep", "new")))

	got, err := repo.GetDetailedNote(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Note.Heading)
	assert.Equal(t, int64(5), got.Note.UpdatedAt)
	assert.Equal(t, "body", domain.Deref(got.Note.Body))
	assert.Equal(t, []string{"keep", "new"}, got.TagNames())
	// "old" is orphaned, not deleted
	assert.Equal(t, int64(3), countRows(t, d, &model.Tag{}, ""))
}

func TestUpdateNoteWithEmptyTagsClearsLinks(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	id, err := repo.InsertNoteWithTags(ctx, newNote("n", 1), named("a", "b"))
	require.NoError(t, err)

	n := newNote("n", 1)
	n.ID = id
	require.NoError(t, repo.UpdateNoteWithTags(ctx, n, []domain.Tag{}))

	assert.Equal(t, int64(0), countRows(t, d, &model.NoteTag{}, "note_id = ?", id))
	assert.Equal(t, int64(2), countRows(t, d, &model.Tag{}, ""))
}

func TestUpdateMissingNote(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	n := newNote("ghost", 1)
	n.ID = 77

	err := repo.UpdateNoteWithTags(ctx, n, named("never"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(0), countRows(t, d, &model.Tag{}, ""), "rolled back")

	err = repo.UpdateNote(ctx, n)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateNoteLeavesLinks(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	id, err := repo.InsertNoteWithTags(ctx, newNote("before", 1), named("t"))
	require.NoError(t, err)

	n := newNote("after", 1)
	n.ID = id
	n.IsPinned = true
	require.NoError(t, repo.UpdateNote(ctx, n))

	got, err := repo.GetDetailedNote(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Note.Heading)
	assert.True(t, got.Note.IsPinned)
	assert.Equal(t, []string{"t"}, got.TagNames())

	// clearing an optional column writes NULL
	n.IsPinned = false
	n.Title = nil
	require.NoError(t, repo.UpdateNote(ctx, n))
	got, err = repo.GetDetailedNote(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Note.IsPinned)
	assert.Nil(t, got.Note.Title)
}

func TestFilterScenario(t *testing.T) {
	d := newTestDao(t)
	notes := NewNoteRepository(d)
	tags := NewTagRepository(d)
	ctx := context.Background()

	a, err := notes.InsertNoteWithTags(ctx, newNote("Groceries", 1), named("home"))
	require.NoError(t, err)
	b, err := notes.InsertNoteWithTags(ctx, newNote("Taxes", 2), named("finance"))
	require.NoError(t, err)

	home, err := tags.GetByName(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, home)

	f := domain.DefaultNoteFilter()
	f.TagID = &home.ID
	got, err := notes.FilterNotes(ctx, f, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, []int64{a}, ids(got))

	f = domain.DefaultNoteFilter()
	f.Query = domain.String("tax")
	got, err = notes.FilterNotes(ctx, f, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, []int64{b}, ids(got))

	require.NoError(t, notes.DeleteNote(ctx, a))
	detail, err := notes.GetDetailedNote(ctx, a)
	require.NoError(t, err)
	assert.Nil(t, detail)

	still, err := tags.GetByID(ctx, home.ID)
	require.NoError(t, err)
	assert.Equal(t, "home", still.Name)
}

func TestFilterQueryMatchesTitleOrHeading(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	withTitle := newNote("nothing here", 1)
	withTitle.Title = domain.String("My Cat")
	t1, err := repo.InsertNoteWithTags(ctx, withTitle, nil)
	require.NoError(t, err)
	t2, err := repo.InsertNoteWithTags(ctx, newNote("CATalog", 2), nil)
	require.NoError(t, err)
	_, err = repo.InsertNoteWithTags(ctx, newNote("dog", 3), nil)
	require.NoError(t, err)

	f := domain.DefaultNoteFilter()
	f.Query = domain.String("cat")
	got, err := repo.FilterNotes(ctx, f, 0, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{t1, t2}, ids(got))

	n, err := repo.CountNotes(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	f.Query = domain.String("")
	n, err = repo.CountNotes(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestFilterQueryWildcardsAreLiteral(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	pct, err := repo.InsertNoteWithTags(ctx, newNote("100% done", 1), nil)
	require.NoError(t, err)
	_, err = repo.InsertNoteWithTags(ctx, newNote("1000 done", 2), nil)
	require.NoError(t, err)
	under, err := repo.InsertNoteWithTags(ctx, newNote("a_b", 3), nil)
	require.NoError(t, err)
	_, err = repo.InsertNoteWithTags(ctx, newNote("axb", 4), nil)
	require.NoError(t, err)
	bang, err := repo.InsertNoteWithTags(ctx, newNote("wow!", 5), nil)
	require.NoError(t, err)

	tests := []struct {
		query string
		want  []int64
	}{
		{"0%", []int64{pct}},
		{"a_b", []int64{under}},
		{"w!", []int64{bang}},
	}
	for _, tt := range tests {
		f := domain.DefaultNoteFilter()
		f.Query = domain.String(tt.query)
		got, err := repo.FilterNotes(ctx, f, 0, 10)
		require.NoError(t, err)
		if !assert.ElementsMatch(t, tt.want, ids(got)) {
			t.Errorf("query %q", tt.query)
		}
	}
}

func TestFilterByTagReturnsEachNoteOnce(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	tags := NewTagRepository(d)
	ctx := context.Background()

	tagged, err := repo.InsertNoteWithTags(ctx, newNote("both", 1), named("red", "blue"))
	require.NoError(t, err)
	_, err = repo.InsertNoteWithTags(ctx, newNote("blue only", 2), named("blue"))
	require.NoError(t, err)

	red, err := tags.GetByName(ctx, "red")
	require.NoError(t, err)

	f := domain.DefaultNoteFilter()
	f.TagID = &red.ID
	got, err := repo.FilterNotes(ctx, f, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{tagged}, ids(got))

	blue, err := tags.GetByName(ctx, "blue")
	require.NoError(t, err)
	f.TagID = &blue.ID
	n, err := repo.CountNotes(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestFilterOrdering(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	// two notes share created_at so the id tie-break is visible
	n1, err := repo.InsertNoteWithTags(ctx, newNote("b", 10), nil)
	require.NoError(t, err)
	n2, err := repo.InsertNoteWithTags(ctx, newNote("a", 20), nil)
	require.NoError(t, err)
	n3, err := repo.InsertNoteWithTags(ctx, newNote("c", 20), nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		by    domain.SortBy
		order domain.SortOrder
		want  []int64
	}{
		{"created desc", domain.SortByCreatedAt, domain.SortOrderDesc, []int64{n3, n2, n1}},
		{"created asc", domain.SortByCreatedAt, domain.SortOrderAsc, []int64{n1, n2, n3}},
		{"heading asc", domain.SortByHeading, domain.SortOrderAsc, []int64{n2, n1, n3}},
		{"unknown column", domain.SortBy("color"), domain.SortOrderDesc, []int64{n3, n2, n1}},
		{"unknown order", domain.SortByHeading, domain.SortOrder("sideways"), []int64{n3, n1, n2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := domain.NoteFilter{SortBy: tt.by, SortOrder: tt.order}
			got, err := repo.FilterNotes(ctx, f, 0, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterPaging(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	var all []int64
	for i := 0; i < 5; i++ {
		id, err := repo.InsertNoteWithTags(ctx, newNote("n", int64(i)), nil)
		require.NoError(t, err)
		all = append([]int64{id}, all...)
	}

	f := domain.DefaultNoteFilter()
	page1, err := repo.FilterNotes(ctx, f, 0, 2)
	require.NoError(t, err)
	page3, err := repo.FilterNotes(ctx, f, 4, 2)
	require.NoError(t, err)

	assert.Equal(t, all[:2], ids(page1))
	assert.Equal(t, all[4:], ids(page3))
}

func TestNoteWritesPublishChanges(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	id, err := repo.InsertNoteWithTags(ctx, newNote("watched", 1), nil)
	require.NoError(t, err)

	sub := d.Changes().Subscribe(func(c Change) bool { return c.TouchesNote(id) })
	defer sub.Close()

	require.NoError(t, repo.DeleteNote(ctx, id))
	select {
	case <-sub.C():
	default:
		t.Fatal("delete did not signal the note's subscriber")
	}
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"plain": "plain",
		"50%":   "50!%",
		"a_b":   "a!_b",
		"hey!":  "hey!!",
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFoldCase(t *testing.T) {
	sqliteDao := New(nil)
	assert.Equal(t, "straße ÄB", sqliteDao.foldCase("STRAßE ÄB"))

	pg := New(nil, WithConfig(&DatabaseConfig{Type: TypePostgres}))
	assert.Equal(t, "straße äb", pg.foldCase("STRAßE ÄB"))
}
