package task

import (
	"context"
	"fmt"

	"github.com/dontknow492/Notes/pkg/safe_close"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler 基于 cron 的任务调度器
// 到点时任务被提交给 Submitter，在 worker pool 中执行
type Scheduler struct {
	logger *zap.Logger
	cron   *cron.Cron
	submit Submitter
	sc     *safe_close.SafeClose
	count  int
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose, submit Submitter) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		logger: logger,
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		submit: submit,
		sc:     sc,
	}
}

// AddTask 按任务的 cron 表达式注册任务
func (s *Scheduler) AddTask(task Task) error {
	_, err := s.cron.AddFunc(task.Spec(), func() { s.dispatch(task) })
	if err != nil {
		return fmt.Errorf("task %s: invalid spec %q: %w", task.Name(), task.Spec(), err)
	}
	s.count++
	s.logger.Info("task scheduled", zap.String("name", task.Name()), zap.String("spec", task.Spec()))
	return nil
}

func (s *Scheduler) dispatch(task Task) {
	err := s.submit(context.Background(), func(ctx context.Context) error {
		s.logger.Info("task running", zap.String("name", task.Name()))
		if err := task.Run(ctx); err != nil {
			s.logger.Error("task running error", zap.String("name", task.Name()), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		// 上一次仍在排队或 pool 已关闭，本次跳过
		s.logger.Warn("task skipped", zap.String("name", task.Name()), zap.Error(err))
	}
}

// Len 已注册任务数
func (s *Scheduler) Len() int {
	return s.count
}

// Start 启动调度，收到关闭信号后停止并等待正在派发的任务
func (s *Scheduler) Start() {
	if s.count == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}
	s.logger.Info("tasks starting", zap.Int("count", s.count))
	s.cron.Start()

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		<-s.cron.Stop().Done()
		s.logger.Info("task scheduler stopped")
	})
}

// cronLogger 将 cron 内部日志转到 zap
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, zap.Any("kv", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, zap.Error(err), zap.Any("kv", keysAndValues))
}
