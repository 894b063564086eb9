// Package workerpool 提供固定数量 worker 的后台任务池
// 维护任务（统计刷新、孤立标签统计）在此执行，不占用请求 goroutine
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrWorkerPoolFull 任务队列已满
	ErrWorkerPoolFull = errors.New("worker pool queue is full")
	// ErrWorkerPoolClosed Worker Pool 已关闭
	ErrWorkerPoolClosed = errors.New("worker pool is closed")
	// ErrTaskCancelled 任务开始前 context 已取消
	ErrTaskCancelled = errors.New("task was cancelled")
)

// Config Worker Pool 配置
type Config struct {
	// MaxWorkers worker 数量，默认 4
	MaxWorkers int
	// QueueSize 任务队列大小，默认 64
	QueueSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxWorkers: 4,
		QueueSize:  64,
	}
}

type job struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Pool runs submitted functions on a fixed set of workers. A panicking task
// is recovered and reported as its error.
type Pool struct {
	config Config
	logger *zap.Logger

	jobs chan job
	wg   sync.WaitGroup

	active atomic.Int64

	// mu guards closed and the send side of jobs
	mu     sync.RWMutex
	closed bool
}

// New 创建 Worker Pool，cfg 为 nil 时使用默认配置
func New(cfg *Config, logger *zap.Logger) *Pool {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.MaxWorkers > 0 {
			c.MaxWorkers = cfg.MaxWorkers
		}
		if cfg.QueueSize > 0 {
			c.QueueSize = cfg.QueueSize
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		config: c,
		logger: logger,
		jobs:   make(chan job, c.QueueSize),
	}
	for i := 0; i < c.MaxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		err := p.run(j)
		if j.done != nil {
			j.done <- err
		}
	}
}

func (p *Pool) run(j job) (err error) {
	p.active.Add(1)
	defer p.active.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker pool task panic", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("task panic: %v", r)
		}
	}()

	if j.ctx.Err() != nil {
		return ErrTaskCancelled
	}
	return j.fn(j.ctx)
}

func (p *Pool) enqueue(j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrWorkerPoolClosed
	}
	select {
	case p.jobs <- j:
		return nil
	default:
		return ErrWorkerPoolFull
	}
}

// Submit 提交任务并等待完成
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) error {
	done := make(chan error, 1)
	if err := p.enqueue(job{ctx: ctx, fn: fn, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitAsync 异步提交任务（不等待结果）
func (p *Pool) SubmitAsync(ctx context.Context, fn func(context.Context) error) error {
	return p.enqueue(job{ctx: ctx, fn: fn})
}

// ActiveCount 返回正在执行的任务数
func (p *Pool) ActiveCount() int64 {
	return p.active.Load()
}

// QueuedCount 返回队列中等待的任务数
func (p *Pool) QueuedCount() int {
	return len(p.jobs)
}

// IsClosed 返回 Worker Pool 是否已关闭
func (p *Pool) IsClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Shutdown stops accepting work and waits for queued tasks to finish or ctx
// to expire. Tasks still running after ctx expires keep their own contexts.
// Shutdown 停止接收任务并等待队列排空
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool shutdown completed")
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timeout",
			zap.Int64("activeCount", p.active.Load()),
			zap.Int("queuedCount", len(p.jobs)))
		return ctx.Err()
	}
}
