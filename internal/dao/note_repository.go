package dao

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// laneNewNotes serializes inserts, which have no note id yet
const laneNewNotes int64 = 0

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

var _ domain.NoteRepository = (*noteRepository)(nil)

func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	return &domain.Note{
		ID:        m.ID,
		Heading:   m.Heading,
		Title:     m.Title,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Image:     m.Image,
		Color:     m.Color,
		IsPinned:  m.IsPinned,
		ThemeID:   m.ThemeID,
	}
}

func (r *noteRepository) toModel(n *domain.Note) *model.Note {
	return &model.Note{
		ID:        n.ID,
		Heading:   n.Heading,
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		Image:     n.Image,
		Color:     n.Color,
		IsPinned:  n.IsPinned,
		ThemeID:   n.ThemeID,
	}
}

// FilterNotes 按条件分页查询笔记
func (r *noteRepository) FilterNotes(ctx context.Context, f domain.NoteFilter, offset, limit int) ([]*domain.Note, error) {
	q := r.dao.filterQuery(r.dao.db.WithContext(ctx), f)
	q = applyOrder(q, f.SortBy, f.SortOrder)
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []*model.Note
	if err := q.Find(&rows).Error; err != nil {
		return nil, classify("FilterNotes", err)
	}

	notes := make([]*domain.Note, 0, len(rows))
	for _, m := range rows {
		notes = append(notes, r.toDomain(m))
	}
	return notes, nil
}

// CountNotes 统计符合条件的笔记数
func (r *noteRepository) CountNotes(ctx context.Context, f domain.NoteFilter) (int64, error) {
	var n int64
	if err := r.dao.filterQuery(r.dao.db.WithContext(ctx), f).Count(&n).Error; err != nil {
		return 0, classify("CountNotes", err)
	}
	return n, nil
}

// detailRow is one line of the note ⋈ tags join
type detailRow struct {
	model.Note
	TagRefID   *int64  `gorm:"column:tag_ref_id"`
	TagRefName *string `gorm:"column:tag_ref_name"`
}

// GetDetailedNote reads the note and its tags in a single statement so both
// come from the same snapshot.
func (r *noteRepository) GetDetailedNote(ctx context.Context, id int64) (*domain.NoteWithTags, error) {
	var rows []detailRow
	err := r.dao.db.WithContext(ctx).
		Table(model.TableNameNote).
		Select("notes.*, tags.id AS tag_ref_id, tags.name AS tag_ref_name").
		Joins("LEFT JOIN note_tags ON note_tags.note_id = notes.id").
		Joins("LEFT JOIN tags ON tags.id = note_tags.tag_id").
		Where("notes.id = ?", id).
		Order("note_tags.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, classify("GetDetailedNote", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := &domain.NoteWithTags{
		Note: *r.toDomain(&rows[0].Note),
		Tags: []domain.Tag{},
	}
	for _, row := range rows {
		if row.TagRefID == nil {
			continue
		}
		out.Tags = append(out.Tags, domain.Tag{ID: *row.TagRefID, Name: domain.Deref(row.TagRefName)})
	}
	return out, nil
}

// InsertNoteWithTags 插入笔记并关联标签（单事务）
func (r *noteRepository) InsertNoteWithTags(ctx context.Context, note *domain.Note, tags []domain.Tag) (int64, error) {
	var id int64
	err := r.dao.ExecuteWrite(ctx, "InsertNoteWithTags", laneNewNotes, func(tx *gorm.DB, cs *ChangeSet) error {
		m := r.toModel(note)
		m.ID = 0
		if err := tx.Create(m).Error; err != nil {
			return err
		}

		tagIDs, err := upsertTags(tx, tags)
		if err != nil {
			return err
		}
		if err := linkTags(tx, m.ID, tagIDs); err != nil {
			return err
		}

		id = m.ID
		cs.NoteChanged(m.ID, tagIDs...)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateNoteWithTags 更新笔记并替换全部标签关联（单事务）
func (r *noteRepository) UpdateNoteWithTags(ctx context.Context, note *domain.Note, tags []domain.Tag) error {
	return r.dao.ExecuteWrite(ctx, "UpdateNoteWithTags", note.ID, func(tx *gorm.DB, cs *ChangeSet) error {
		if err := r.updateRow(tx, note); err != nil {
			return err
		}

		if err := tx.Where("note_id = ?", note.ID).Delete(&model.NoteTag{}).Error; err != nil {
			return err
		}

		tagIDs, err := upsertTags(tx, tags)
		if err != nil {
			return err
		}
		if err := linkTags(tx, note.ID, tagIDs); err != nil {
			return err
		}

		cs.NoteChanged(note.ID, tagIDs...)
		return nil
	})
}

// UpdateNote 仅更新笔记字段
func (r *noteRepository) UpdateNote(ctx context.Context, note *domain.Note) error {
	return r.dao.ExecuteWrite(ctx, "UpdateNote", note.ID, func(tx *gorm.DB, cs *ChangeSet) error {
		if err := r.updateRow(tx, note); err != nil {
			return err
		}
		cs.NoteChanged(note.ID)
		return nil
	})
}

// DeleteNote 删除笔记，关联由外键级联删除
func (r *noteRepository) DeleteNote(ctx context.Context, id int64) error {
	return r.dao.ExecuteWrite(ctx, "DeleteNote", id, func(tx *gorm.DB, cs *ChangeSet) error {
		res := tx.Delete(&model.Note{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NoteNotFound(id)
		}
		cs.NoteChanged(id)
		return nil
	})
}

// updateRow overwrites every column but id. The UPDATE runs first so the
// transaction's first statement is a write.
func (r *noteRepository) updateRow(tx *gorm.DB, note *domain.Note) error {
	m := r.toModel(note)
	res := tx.Model(&model.Note{ID: note.ID}).Select("*").Omit("id").Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NoteNotFound(note.ID)
	}
	return nil
}

// upsertTags resolves tags to ids in input order. Named tags are inserted when
// missing; an existing name is reused silently. Tags given only by id must
// exist. Duplicates collapse to their first occurrence.
func upsertTags(tx *gorm.DB, tags []domain.Tag) ([]int64, error) {
	ids := make([]int64, 0, len(tags))
	seenName := make(map[string]int64, len(tags))

	for _, t := range tags {
		if t.Name == "" {
			if t.ID <= 0 {
				return nil, &domain.ValidationError{Fields: map[string]string{"tags": "tag needs a name or an id"}}
			}
			var n int64
			if err := tx.Model(&model.Tag{}).Where("id = ?", t.ID).Count(&n).Error; err != nil {
				return nil, err
			}
			if n == 0 {
				return nil, domain.TagNotFound(t.ID)
			}
			if !slices.Contains(ids, t.ID) {
				ids = append(ids, t.ID)
			}
			continue
		}

		if id, ok := seenName[t.Name]; ok {
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
			continue
		}

		m := &model.Tag{Name: t.Name}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(m)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 || m.ID == 0 {
			var existing model.Tag
			if err := tx.Where("name = ?", t.Name).Take(&existing).Error; err != nil {
				return nil, err
			}
			m.ID = existing.ID
		}
		seenName[t.Name] = m.ID
		if !slices.Contains(ids, m.ID) {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func linkTags(tx *gorm.DB, noteID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]*model.NoteTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, &model.NoteTag{NoteID: noteID, TagID: id})
	}
	return tx.Omit(clause.Associations).Create(&links).Error
}

// filterQuery builds the WHERE part shared by FilterNotes and CountNotes.
func (d *Dao) filterQuery(db *gorm.DB, f domain.NoteFilter) *gorm.DB {
	q := db.Model(&model.Note{})

	if f.Query != nil && *f.Query != "" {
		pattern := "%" + escapeLike(d.foldCase(*f.Query)) + "%"
		q = q.Where("(LOWER(notes.title) LIKE ? ESCAPE '!' OR LOWER(notes.heading) LIKE ? ESCAPE '!')", pattern, pattern)
	}

	if f.TagID != nil {
		sub := d.db.Session(&gorm.Session{NewDB: true}).
			Model(&model.NoteTag{}).
			Select("note_id").
			Where("tag_id = ?", *f.TagID)
		q = q.Where("notes.id IN (?)", sub)
	}
	return q
}

// foldCase mirrors the database's LOWER: SQLite only folds ASCII.
func (d *Dao) foldCase(s string) string {
	if !d.IsSQLite() {
		return strings.ToLower(s)
	}
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var sortColumns = map[domain.SortBy]string{
	domain.SortByTitle:     "notes.title",
	domain.SortByHeading:   "notes.heading",
	domain.SortByUpdatedAt: "notes.updated_at",
	domain.SortByCreatedAt: "notes.created_at",
}

// applyOrder sorts by the selected column, breaking ties by id in the same
// direction. Unknown columns sort by id alone.
func applyOrder(q *gorm.DB, by domain.SortBy, order domain.SortOrder) *gorm.DB {
	desc := order != domain.SortOrderAsc
	if col, ok := sortColumns[by]; ok {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col, Raw: true}, Desc: desc})
	}
	return q.Order(clause.OrderByColumn{Column: clause.Column{Name: "notes.id", Raw: true}, Desc: desc})
}

// isNotFound reports gorm's record-not-found.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
