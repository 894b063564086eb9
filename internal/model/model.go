// Package model holds the gorm table mappings.
package model

import (
	"gorm.io/gorm"
)

// All lists every table in creation order; note_tags comes last so its
// foreign keys have targets.
func All() []interface{} {
	return []interface{}{&Note{}, &Tag{}, &NoteTag{}}
}

// AutoMigrate creates or alters every table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
