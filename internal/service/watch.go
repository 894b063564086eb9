package service

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/dontknow492/Notes/internal/dao"
	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/internal/model"
	"github.com/dontknow492/Notes/pkg/logger"
	"github.com/dontknow492/Notes/pkg/notify"
	"github.com/dontknow492/Notes/pkg/observable"

	"go.uber.org/zap"
)

var (
	errNoChangeHub     = errors.New("note service has no change hub")
	errChangeHubClosed = errors.New("note service is shutting down")
)

// NoteWatch streams the detailed view of one note. C delivers the latest
// value only; nil means the note does not exist. Values are shared between
// watchers of the same note and must not be modified.
type NoteWatch struct {
	id     int64
	latest *observable.Latest[*domain.NoteWithTags]
	sub    *notify.Subscription[dao.Change]
	cancel context.CancelFunc
	done   chan struct{}

	// tag ids of the last loaded value, read by the change filter
	tagIDs atomic.Pointer[[]int64]
	err    atomic.Pointer[error]

	closeOnce sync.Once
	onClose   func()
}

// C 最新值通道，Close 后关闭
func (w *NoteWatch) C() <-chan *domain.NoteWithTags {
	return w.latest.C()
}

// Err returns the error of the last failed reload, or nil after a good one.
func (w *NoteWatch) Err() error {
	if p := w.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Done is closed once the watch stopped reloading.
func (w *NoteWatch) Done() <-chan struct{} {
	return w.done
}

// Close releases the change subscription and closes C. It does not wait for
// an in-flight reload.
func (w *NoteWatch) Close() {
	w.closeOnce.Do(func() {
		w.cancel()
		w.sub.Close()
		w.latest.Close()
		if w.onClose != nil {
			w.onClose()
		}
	})
}

func (w *NoteWatch) matches(c dao.Change) bool {
	if c.TouchesNote(w.id) {
		return true
	}
	if c.Table != model.TableNameTag {
		return false
	}
	if ids := w.tagIDs.Load(); ids != nil {
		return c.TouchesAnyTag(*ids)
	}
	return false
}

// WatchDetailedNote 监听笔记详情
//
// The subscription is taken before the first load so a write committed in
// between still triggers a reload.
func (s *noteService) WatchDetailedNote(ctx context.Context, id int64) (*NoteWatch, error) {
	t, _ := track(ctx, s.logger, s.metrics, "NoteService.WatchDetailedNote")
	if err := validateID("id", id); err != nil {
		return nil, t.done(err)
	}
	if s.changes == nil {
		return nil, t.done(errNoChangeHub)
	}
	// 关闭中不再接受新的监听
	if s.changes.Closed() {
		return nil, t.done(errChangeHubClosed)
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &NoteWatch{
		id:      id,
		latest:  observable.NewLatest[*domain.NoteWithTags](),
		cancel:  cancel,
		done:    make(chan struct{}),
		onClose: s.metrics.WatchClosed,
	}
	w.sub = s.changes.Subscribe(w.matches)
	s.metrics.WatchOpened()

	go s.runWatch(ctx, w)
	return w, t.done(nil)
}

func (s *noteService) runWatch(ctx context.Context, w *NoteWatch) {
	defer close(w.done)
	defer w.Close()

	s.reload(ctx, w)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.sub.C():
			if !ok {
				return
			}
			s.metrics.WatchReloaded()
			s.reload(ctx, w)
		}
	}
}

// reload fetches the note and publishes it. Reloads of the same note share one
// query as long as no change was published in between; the hub sequence in
// the key keeps a reload from joining a query that started before the commit
// that triggered it. The query runs detached from any single watcher so one
// watcher closing does not fail the others.
func (s *noteService) reload(ctx context.Context, w *NoteWatch) {
	key := strconv.FormatInt(w.id, 10) + "@" + strconv.FormatUint(s.changes.Seq(), 10)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.watchLoadTimeout())
		defer cancel()
		return s.repo.GetDetailedNote(loadCtx, w.id)
	})
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		w.err.Store(&err)
		s.logger.Warn("note watch reload failed",
			zap.Int64(logger.FieldNoteID, w.id),
			zap.String(logger.FieldMethod, "NoteService.WatchDetailedNote"),
			zap.Error(err))
		return
	}
	w.err.Store(nil)

	note, _ := v.(*domain.NoteWithTags)
	ids := []int64{}
	if note != nil {
		for _, tag := range note.Tags {
			ids = append(ids, tag.ID)
		}
	}
	if prev := w.tagIDs.Load(); prev == nil || !slices.Equal(*prev, ids) {
		w.tagIDs.Store(&ids)
	}
	w.latest.Set(note)
}
