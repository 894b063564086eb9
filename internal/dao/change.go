package dao

import (
	"slices"

	"github.com/dontknow492/Notes/internal/model"
)

// Change describes one committed write.
type Change struct {
	// Table is the table the write was addressed to
	Table   string
	NoteIDs []int64
	TagIDs  []int64
}

// TouchesNote reports whether the change affects note id directly.
func (c Change) TouchesNote(id int64) bool {
	return slices.Contains(c.NoteIDs, id)
}

// TouchesAnyTag reports whether the change affects one of ids.
func (c Change) TouchesAnyTag(ids []int64) bool {
	for _, id := range c.TagIDs {
		if slices.Contains(ids, id) {
			return true
		}
	}
	return false
}

// ChangeSet collects the changes of one transaction.
type ChangeSet struct {
	changes []Change
}

func (cs *ChangeSet) Add(c Change) {
	cs.changes = append(cs.changes, c)
}

func (cs *ChangeSet) NoteChanged(noteID int64, tagIDs ...int64) {
	cs.Add(Change{Table: model.TableNameNote, NoteIDs: []int64{noteID}, TagIDs: tagIDs})
}

func (cs *ChangeSet) TagChanged(tagID int64) {
	cs.Add(Change{Table: model.TableNameTag, TagIDs: []int64{tagID}})
}

// Changes returns what was recorded so far.
func (cs *ChangeSet) Changes() []Change {
	return cs.changes
}
