package service

import (
	"context"
	"errors"

	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/internal/metrics"
	"github.com/dontknow492/Notes/pkg/code"
	"github.com/dontknow492/Notes/pkg/logger"

	"go.uber.org/zap"
)

// TagService 定义标签业务服务接口
type TagService interface {
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	GetTag(ctx context.Context, id int64) (*domain.Tag, error)
	// GetTagByName 名称不存在时返回 ErrorTagNotFound
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	// RenameTag 重命名标签，名称被占用时返回 ErrorTagNameExists
	RenameTag(ctx context.Context, id int64, name string) error
	// DeleteTag 删除标签及其关联，笔记保留
	DeleteTag(ctx context.Context, id int64) error
	// CountOrphanTags 统计未被任何笔记引用的标签
	CountOrphanTags(ctx context.Context) (int64, error)
}

type tagService struct {
	repo    domain.TagRepository
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewTagService 创建 TagService 实例
func NewTagService(repo domain.TagRepository, lg *zap.Logger, m *metrics.Metrics) TagService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &tagService{repo: repo, logger: lg, metrics: m}
}

type tagInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (s *tagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	t, ctx := track(ctx, s.logger, s.metrics, "TagService.ListTags")
	tags, err := s.repo.List(ctx)
	return tags, t.done(err)
}

func (s *tagService) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	t, ctx := track(ctx, s.logger, s.metrics, "TagService.GetTag")
	if err := validateID("id", id); err != nil {
		return nil, t.done(err)
	}
	tag, err := s.repo.GetByID(ctx, id)
	return tag, t.done(err, zap.Int64(logger.FieldTagID, id))
}

func (s *tagService) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	t, ctx := track(ctx, s.logger, s.metrics, "TagService.GetTagByName")
	if err := validate(tagInput{Name: name}); err != nil {
		return nil, t.done(err)
	}
	tag, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, t.done(err)
	}
	if tag == nil {
		return nil, t.done(code.ErrorTagNotFound.WithDetails("tag " + name + " not found"))
	}
	return tag, t.done(nil)
}

func (s *tagService) RenameTag(ctx context.Context, id int64, name string) error {
	t, ctx := track(ctx, s.logger, s.metrics, "TagService.RenameTag")
	if err := validateID("id", id); err != nil {
		return t.done(err)
	}
	if err := validate(tagInput{Name: name}); err != nil {
		return t.done(err)
	}
	err := s.repo.Rename(ctx, id, name)
	if errors.Is(err, domain.ErrConstraint) {
		err = code.ErrorTagNameExists.WithDetails(name).WithCause(err)
	}
	return t.done(err, zap.Int64(logger.FieldTagID, id))
}

func (s *tagService) DeleteTag(ctx context.Context, id int64) error {
	t, ctx := track(ctx, s.logger, s.metrics, "TagService.DeleteTag")
	if err := validateID("id", id); err != nil {
		return t.done(err)
	}
	return t.done(s.repo.Delete(ctx, id), zap.Int64(logger.FieldTagID, id))
}

func (s *tagService) CountOrphanTags(ctx context.Context) (int64, error) {
	t, ctx := track(ctx, s.logger, s.metrics, "TagService.CountOrphanTags")
	n, err := s.repo.CountOrphans(ctx)
	return n, t.done(err)
}
