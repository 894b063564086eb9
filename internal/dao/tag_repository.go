package dao

import (
	"context"

	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/internal/model"

	"gorm.io/gorm"
)

// tagRepository 实现 domain.TagRepository 接口
type tagRepository struct {
	dao *Dao
}

// NewTagRepository 创建 TagRepository 实例
func NewTagRepository(dao *Dao) domain.TagRepository {
	return &tagRepository{dao: dao}
}

var _ domain.TagRepository = (*tagRepository)(nil)

// tagLane keeps tag writes off the note lanes
func tagLane(id int64) int64 {
	return -id
}

func (r *tagRepository) toDomain(m *model.Tag) *domain.Tag {
	if m == nil {
		return nil
	}
	return &domain.Tag{ID: m.ID, Name: m.Name}
}

// List 按名称返回全部标签
func (r *tagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	var rows []*model.Tag
	if err := r.dao.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, classify("ListTags", err)
	}
	tags := make([]*domain.Tag, 0, len(rows))
	for _, m := range rows {
		tags = append(tags, r.toDomain(m))
	}
	return tags, nil
}

// GetByID 根据ID获取标签
func (r *tagRepository) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	var m model.Tag
	err := r.dao.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if err != nil {
		if isNotFound(err) {
			return nil, domain.TagNotFound(id)
		}
		return nil, classify("GetTag", err)
	}
	return r.toDomain(&m), nil
}

// GetByName 根据名称获取标签，不存在时返回 nil
func (r *tagRepository) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	var m model.Tag
	err := r.dao.db.WithContext(ctx).Where("name = ?", name).Take(&m).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, classify("GetTagByName", err)
	}
	return r.toDomain(&m), nil
}

// Rename 重命名标签，名称冲突时返回约束错误
func (r *tagRepository) Rename(ctx context.Context, id int64, name string) error {
	return r.dao.ExecuteWrite(ctx, "RenameTag", tagLane(id), func(tx *gorm.DB, cs *ChangeSet) error {
		res := tx.Model(&model.Tag{}).Where("id = ?", id).Update("name", name)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.TagNotFound(id)
		}
		cs.TagChanged(id)
		return nil
	})
}

// Delete 删除标签，关联由外键级联删除
func (r *tagRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.ExecuteWrite(ctx, "DeleteTag", tagLane(id), func(tx *gorm.DB, cs *ChangeSet) error {
		var noteIDs []int64
		if err := tx.Model(&model.NoteTag{}).Where("tag_id = ?", id).Pluck("note_id", &noteIDs).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.Tag{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.TagNotFound(id)
		}

		cs.Add(Change{Table: model.TableNameTag, NoteIDs: noteIDs, TagIDs: []int64{id}})
		return nil
	})
}

// CountOrphans 统计未关联任何笔记的标签
func (r *tagRepository) CountOrphans(ctx context.Context) (int64, error) {
	var n int64
	err := r.dao.db.WithContext(ctx).
		Model(&model.Tag{}).
		Where("NOT EXISTS (SELECT 1 FROM note_tags WHERE note_tags.tag_id = tags.id)").
		Count(&n).Error
	if err != nil {
		return 0, classify("CountOrphanTags", err)
	}
	return n, nil
}
