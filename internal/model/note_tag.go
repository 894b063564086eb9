package model

const TableNameNoteTag = "note_tags"

// NoteTag mapped from table <note_tags>
//
// Both foreign keys cascade on delete; the (note_id, tag_id) unique index is
// created by a versioned migration so legacy duplicates can be removed first.
type NoteTag struct {
	ID     int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	NoteID int64 `gorm:"column:note_id;not null;index:idx_note_tags_note_id" json:"noteId" form:"noteId"`
	TagID  int64 `gorm:"column:tag_id;not null;index:idx_note_tags_tag_id" json:"tagId" form:"tagId"`

	Note *Note `gorm:"foreignKey:NoteID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Tag  *Tag  `gorm:"foreignKey:TagID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName NoteTag's table name
func (*NoteTag) TableName() string {
	return TableNameNoteTag
}
