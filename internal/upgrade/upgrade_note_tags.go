package upgrade

import (
	"context"

	"github.com/dontknow492/Notes/internal/model"

	"gorm.io/gorm"
)

// DanglingLinkMigrate 清理指向不存在笔记或标签的关联
//
// Databases written with foreign key enforcement off can hold links whose
// note or tag is gone.
type DanglingLinkMigrate struct{}

func (m *DanglingLinkMigrate) Version() string {
	return "1.0.0"
}

func (m *DanglingLinkMigrate) Description() string {
	return "Remove note_tags rows whose note or tag no longer exists"
}

func (m *DanglingLinkMigrate) Up(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec(
		"DELETE FROM note_tags WHERE note_id NOT IN (SELECT id FROM notes) OR tag_id NOT IN (SELECT id FROM tags)",
	).Error
}

// NoteTagPairIndex 笔记-标签唯一索引名
const NoteTagPairIndex = "idx_note_tags_pair"

// NoteTagPairMigrate 去重后为 (note_id, tag_id) 建唯一索引
type NoteTagPairMigrate struct{}

func (m *NoteTagPairMigrate) Version() string {
	return "1.0.1"
}

func (m *NoteTagPairMigrate) Description() string {
	return "Deduplicate note_tags and add unique (note_id, tag_id) index"
}

func (m *NoteTagPairMigrate) Up(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	// the derived table lets MySQL read the table it deletes from
	if err := db.Exec(
		"DELETE FROM note_tags WHERE id NOT IN (SELECT keep.id FROM (SELECT MIN(id) AS id FROM note_tags GROUP BY note_id, tag_id) AS keep)",
	).Error; err != nil {
		return err
	}

	if db.Migrator().HasIndex(&model.NoteTag{}, NoteTagPairIndex) {
		return nil
	}
	return db.Exec("CREATE UNIQUE INDEX " + NoteTagPairIndex + " ON note_tags (note_id, tag_id)").Error
}
