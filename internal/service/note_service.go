package service

import (
	"context"

	"github.com/dontknow492/Notes/internal/dao"
	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/internal/metrics"
	"github.com/dontknow492/Notes/internal/model"
	"github.com/dontknow492/Notes/pkg/logger"
	"github.com/dontknow492/Notes/pkg/notify"
	"github.com/dontknow492/Notes/pkg/paging"
	"github.com/dontknow492/Notes/pkg/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// NoteService 定义笔记业务服务接口
type NoteService interface {
	// FilterNotes 返回按条件分页加载的笔记源，调用方负责 Close
	FilterNotes(ctx context.Context, f domain.NoteFilter, pageSize int) *paging.Source[*domain.Note]

	// CountNotes 统计符合条件的笔记数
	CountNotes(ctx context.Context, f domain.NoteFilter) (int64, error)

	// GetDetailedNote 获取笔记及其标签
	GetDetailedNote(ctx context.Context, id int64) (*domain.NoteWithTags, error)

	// WatchDetailedNote 监听笔记详情，笔记或其标签变化时推送最新值
	WatchDetailedNote(ctx context.Context, id int64) (*NoteWatch, error)

	// InsertNoteWithTags 创建笔记并关联标签
	InsertNoteWithTags(ctx context.Context, note *domain.Note, tags []domain.Tag) (int64, error)

	// UpdateNoteWithTags 更新笔记并替换标签
	UpdateNoteWithTags(ctx context.Context, note *domain.Note, tags []domain.Tag) error

	// UpdateNote 仅更新笔记字段
	UpdateNote(ctx context.Context, note *domain.Note) error

	// DeleteNote 删除笔记
	DeleteNote(ctx context.Context, id int64) error
}

// noteService 实现 NoteService 接口
type noteService struct {
	repo    domain.NoteRepository
	changes *notify.Hub[dao.Change]
	sf      *singleflight.Group
	config  *ServiceConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() int64
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(repo domain.NoteRepository, changes *notify.Hub[dao.Change], config *ServiceConfig, lg *zap.Logger, m *metrics.Metrics) NoteService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &noteService{
		repo:    repo,
		changes: changes,
		sf:      &singleflight.Group{},
		config:  config,
		logger:  lg,
		metrics: m,
		now:     util.NowMillis,
	}
}

// noteInput is what the edit form may submit.
type noteInput struct {
	Heading string   `json:"heading" validate:"required,max=100"`
	Title   string   `json:"title" validate:"max=100"`
	Tags    []string `json:"tags" validate:"dive,required,max=255"`
}

// validateNote checks a note and its tags. Tags referenced only by id skip the
// name rules.
func validateNote(note *domain.Note, tags []domain.Tag) error {
	if note == nil {
		return &domain.ValidationError{Fields: map[string]string{"note": "required"}}
	}
	in := noteInput{Heading: note.Heading, Title: domain.Deref(note.Title)}
	for _, t := range tags {
		if t.Name == "" && t.ID > 0 {
			continue
		}
		in.Tags = append(in.Tags, t.Name)
	}
	return validate(in)
}

// FilterNotes 返回分页源；数据变化时 Invalidated 收到信号
func (s *noteService) FilterNotes(ctx context.Context, f domain.NoteFilter, pageSize int) *paging.Source[*domain.Note] {
	fetch := func(ctx context.Context, offset, limit int) ([]*domain.Note, error) {
		t, ctx := track(ctx, s.logger, s.metrics, "NoteService.FilterNotes")
		notes, err := s.repo.FilterNotes(ctx, f, offset, limit)
		return notes, t.done(err, zap.Int(logger.FieldOffset, offset), zap.Int(logger.FieldLimit, limit))
	}

	if s.changes == nil {
		return paging.NewSource(fetch, s.config.pageSize(pageSize), nil, nil)
	}

	tagID := f.TagID
	sub := s.changes.Subscribe(func(c dao.Change) bool {
		if c.Table == model.TableNameNote {
			return true
		}
		return tagID != nil && c.TouchesAnyTag([]int64{*tagID})
	})
	return paging.NewSource(fetch, s.config.pageSize(pageSize), sub.C(), sub.Close)
}

// CountNotes 统计符合条件的笔记数
func (s *noteService) CountNotes(ctx context.Context, f domain.NoteFilter) (int64, error) {
	t, ctx := track(ctx, s.logger, s.metrics, "NoteService.CountNotes")
	n, err := s.repo.CountNotes(ctx, f)
	return n, t.done(err)
}

// GetDetailedNote 获取笔记详情，不存在时返回 ErrorNoteNotFound
func (s *noteService) GetDetailedNote(ctx context.Context, id int64) (*domain.NoteWithTags, error) {
	t, ctx := track(ctx, s.logger, s.metrics, "NoteService.GetDetailedNote")
	if err := validateID("id", id); err != nil {
		return nil, t.done(err)
	}
	note, err := s.repo.GetDetailedNote(ctx, id)
	if err == nil && note == nil {
		err = domain.NoteNotFound(id)
	}
	if err != nil {
		return nil, t.done(err, zap.Int64(logger.FieldNoteID, id))
	}
	return note, t.done(nil)
}

// InsertNoteWithTags 创建笔记；未设置的时间戳取当前时间
func (s *noteService) InsertNoteWithTags(ctx context.Context, note *domain.Note, tags []domain.Tag) (int64, error) {
	t, ctx := track(ctx, s.logger, s.metrics, "NoteService.InsertNoteWithTags")
	if err := validateNote(note, tags); err != nil {
		return 0, t.done(err)
	}

	n := *note
	n.ID = 0
	now := s.now()
	if n.CreatedAt == 0 {
		n.CreatedAt = now
	}
	if n.UpdatedAt == 0 {
		n.UpdatedAt = now
	}
	if n.UpdatedAt < n.CreatedAt {
		n.UpdatedAt = n.CreatedAt
	}

	id, err := s.repo.InsertNoteWithTags(ctx, &n, tags)
	if err != nil {
		return 0, t.done(err, zap.Int(logger.FieldTags, len(tags)))
	}
	s.logger.Debug("note created", zap.Int64(logger.FieldNoteID, id), zap.Int(logger.FieldTags, len(tags)))
	return id, t.done(nil)
}

// UpdateNoteWithTags 更新笔记并替换其全部标签
func (s *noteService) UpdateNoteWithTags(ctx context.Context, note *domain.Note, tags []domain.Tag) error {
	t, ctx := track(ctx, s.logger, s.metrics, "NoteService.UpdateNoteWithTags")
	n, err := s.prepareUpdate(ctx, note, tags)
	if err != nil {
		return t.done(err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return t.done(s.repo.UpdateNoteWithTags(ctx, n, tags), zap.Int64(logger.FieldNoteID, n.ID))
}

// UpdateNote 更新笔记字段，标签关联保持不变
func (s *noteService) UpdateNote(ctx context.Context, note *domain.Note) error {
	t, ctx := track(ctx, s.logger, s.metrics, "NoteService.UpdateNote")
	n, err := s.prepareUpdate(ctx, note, nil)
	if err != nil {
		return t.done(err)
	}
	return t.done(s.repo.UpdateNote(ctx, n), zap.Int64(logger.FieldNoteID, n.ID))
}

// prepareUpdate validates note and settles its timestamps: a zero created_at
// keeps the stored one, a zero updated_at becomes now and updated_at never
// precedes created_at.
func (s *noteService) prepareUpdate(ctx context.Context, note *domain.Note, tags []domain.Tag) (*domain.Note, error) {
	if err := validateNote(note, tags); err != nil {
		return nil, err
	}
	if err := validateID("id", note.ID); err != nil {
		return nil, err
	}

	n := *note
	if n.CreatedAt == 0 {
		stored, err := s.repo.GetDetailedNote(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, domain.NoteNotFound(n.ID)
		}
		n.CreatedAt = stored.Note.CreatedAt
	}
	if n.UpdatedAt == 0 {
		n.UpdatedAt = s.now()
	}
	if n.UpdatedAt < n.CreatedAt {
		n.UpdatedAt = n.CreatedAt
	}
	return &n, nil
}

// DeleteNote 删除笔记，标签保留
func (s *noteService) DeleteNote(ctx context.Context, id int64) error {
	t, ctx := track(ctx, s.logger, s.metrics, "NoteService.DeleteNote")
	if err := validateID("id", id); err != nil {
		return t.done(err)
	}
	return t.done(s.repo.DeleteNote(ctx, id), zap.Int64(logger.FieldNoteID, id))
}
