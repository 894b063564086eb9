package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dontknow492/Notes/pkg/safe_close"
	"github.com/dontknow492/Notes/pkg/workerpool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTask struct {
	spec string
	runs atomic.Int32
	err  error
}

func (t *fakeTask) Name() string { return "fake" }
func (t *fakeTask) Spec() string { return t.spec }
func (t *fakeTask) Run(context.Context) error {
	t.runs.Add(1)
	return t.err
}

func TestAddTaskRejectsBadSpec(t *testing.T) {
	s := NewScheduler(zap.NewNop(), safe_close.NewSafeClose(), nil)
	err := s.AddTask(&fakeTask{spec: "every tuesday"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fake")
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.AddTask(&fakeTask{spec: "@every 1h"}))
	require.NoError(t, s.AddTask(&fakeTask{spec: "*/5 * * * *"}))
	assert.Equal(t, 2, s.Len())
}

func TestDispatchRunsThroughSubmitter(t *testing.T) {
	pool := workerpool.New(&workerpool.Config{MaxWorkers: 1, QueueSize: 2}, nil)
	s := NewScheduler(zap.NewNop(), safe_close.NewSafeClose(), pool.SubmitAsync)

	ok := &fakeTask{spec: "@every 1h"}
	failing := &fakeTask{spec: "@every 1h", err: errors.New("db gone")}
	s.dispatch(ok)
	s.dispatch(failing)

	require.NoError(t, pool.Shutdown(context.Background()))
	assert.Equal(t, int32(1), ok.runs.Load())
	assert.Equal(t, int32(1), failing.runs.Load())

	// pool 已关闭，派发被跳过
	s.dispatch(ok)
	assert.Equal(t, int32(1), ok.runs.Load())
}

func TestSchedulerStopsOnCloseSignal(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc, func(ctx context.Context, fn func(context.Context) error) error {
		return fn(ctx)
	})
	require.NoError(t, s.AddTask(&fakeTask{spec: "@every 1h"}))
	s.Start()

	sc.SendCloseSignal(nil)
	done := make(chan error, 1)
	go func() { done <- sc.WaitClosed() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerFiresTasks(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc, func(ctx context.Context, fn func(context.Context) error) error {
		return fn(ctx)
	})
	task := &fakeTask{spec: "@every 1s"}
	require.NoError(t, s.AddTask(task))
	s.Start()
	defer func() {
		sc.SendCloseSignal(nil)
		_ = sc.WaitClosed()
	}()

	assert.Eventually(t, func() bool { return task.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
