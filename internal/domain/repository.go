package domain

import "context"

// NoteRepository is the read/write surface over notes and their tag links.
// Every multi-step write commits atomically or not at all.
type NoteRepository interface {
	// FilterNotes returns at most limit notes matching f, starting at offset.
	FilterNotes(ctx context.Context, f NoteFilter, offset, limit int) ([]*Note, error)

	// CountNotes counts the notes matching f.
	CountNotes(ctx context.Context, f NoteFilter) (int64, error)

	// GetDetailedNote returns the note with its tags, or nil when absent.
	GetDetailedNote(ctx context.Context, id int64) (*NoteWithTags, error)

	// InsertNoteWithTags inserts note ignoring note.ID, upserts tags by name
	// and links them. Returns the new id.
	InsertNoteWithTags(ctx context.Context, note *Note, tags []Tag) (int64, error)

	// UpdateNoteWithTags overwrites the note and replaces its links with tags.
	UpdateNoteWithTags(ctx context.Context, note *Note, tags []Tag) error

	// UpdateNote overwrites the note's fields; links are untouched.
	UpdateNote(ctx context.Context, note *Note) error

	// DeleteNote removes the note; its links go with it, tags stay.
	DeleteNote(ctx context.Context, id int64) error
}

// TagRepository manages tags independently of notes.
type TagRepository interface {
	List(ctx context.Context) ([]*Tag, error)
	GetByID(ctx context.Context, id int64) (*Tag, error)
	// GetByName returns nil when no tag carries name.
	GetByName(ctx context.Context, name string) (*Tag, error)
	// Rename fails with ErrConstraint when name is taken by another tag.
	Rename(ctx context.Context, id int64, name string) error
	// Delete removes the tag and its links.
	Delete(ctx context.Context, id int64) error
	// CountOrphans counts tags linked to no note.
	CountOrphans(ctx context.Context) (int64, error)
}
