// Package writequeue serializes writes per lane.
// Package writequeue 按通道（lane）串行化写操作
//
// A lane is an int64 key, typically a note id. Operations submitted to the same
// lane run one at a time in FIFO order; different lanes run concurrently.
// 同一通道的写操作按 FIFO 顺序逐个执行，不同通道之间并发执行
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull returned when the lane queue is full
	// ErrWriteQueueFull 通道队列已满
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed returned after Shutdown
	// ErrWriteQueueClosed 写队列管理器已关闭
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout returned when the operation did not finish within WriteTimeout
	// ErrWriteTimeout 写操作超时
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config write queue configuration
// Config 写队列配置
type Config struct {
	// QueueCapacity per-lane capacity, default 100
	QueueCapacity int
	// WriteTimeout upper bound for one operation including queueing, default 30s
	WriteTimeout time.Duration
	// IdleTimeout idle lanes are released after this, default 10m
	IdleTimeout time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

const (
	opQueued int32 = iota
	opRunning
	opAbandoned
)

type writeOp struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
	state  atomic.Int32
}

// lane is a single FIFO queue with its own worker
// lane 单个 FIFO 队列及其 worker
type lane struct {
	key      int64
	ch       chan *writeOp
	lastUsed atomic.Int64
	closed   atomic.Bool
	workerWg sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

func (l *lane) stop() {
	l.stopOnce.Do(func() {
		l.closed.Store(true)
		close(l.stopCh)
	})
}

// Manager owns every lane
// Manager 管理所有通道
type Manager struct {
	config Config
	logger *zap.Logger

	lanes sync.Map // map[int64]*lane

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool

	cleanupWg   sync.WaitGroup
	cleanupDone chan struct{}
}

// New creates the manager. A nil cfg or logger falls back to defaults.
// New 创建写队列管理器，cfg/logger 为 nil 时使用默认值
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			c.IdleTimeout = cfg.IdleTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		config:      c,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}

	m.cleanupWg.Add(1)
	go m.cleanupIdleLanes()

	m.logger.Info("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))

	return m
}

// Execute runs fn on the lane identified by key and waits for its result.
//
// fn receives a context bounded by WriteTimeout and by the caller's ctx. If the
// caller gives up while the operation is still queued, the operation is skipped
// and never runs. Once started, Execute waits for fn to return so the caller
// always learns whether the write happened.
// Execute 在 key 对应的通道上执行 fn 并等待结果
// 排队期间放弃的操作不会执行；已开始的操作会等待其返回
func (m *Manager) Execute(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, m.config.WriteTimeout)
	defer cancel()

	op := &writeOp{
		ctx:    opCtx,
		fn:     fn,
		result: make(chan error, 1),
	}

	// the read lock keeps the sweeper and Shutdown from retiring the lane
	// between lookup and enqueue
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrWriteQueueClosed
	}
	l := m.getOrCreateLane(key)
	select {
	case l.ch <- op:
		m.mu.RUnlock()
	default:
		m.mu.RUnlock()
		return ErrWriteQueueFull
	}

	select {
	case err := <-op.result:
		return m.translate(ctx, opCtx, err)
	case <-opCtx.Done():
		if op.state.CompareAndSwap(opQueued, opAbandoned) {
			return m.translate(ctx, opCtx, opCtx.Err())
		}
		return m.translate(ctx, opCtx, <-op.result)
	case <-m.ctx.Done():
		if op.state.CompareAndSwap(opQueued, opAbandoned) {
			return ErrWriteQueueClosed
		}
		return m.translate(ctx, opCtx, <-op.result)
	}
}

// translate reports our own deadline as ErrWriteTimeout and leaves the
// caller's cancellation untouched.
func (m *Manager) translate(parent, opCtx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil && opCtx.Err() != nil {
		return ErrWriteTimeout
	}
	return err
}

// getOrCreateLane must be called with m.mu held for reading.
func (m *Manager) getOrCreateLane(key int64) *lane {
	if v, ok := m.lanes.Load(key); ok {
		l := v.(*lane)
		if !l.closed.Load() {
			l.lastUsed.Store(time.Now().UnixNano())
			return l
		}
	}

	l := &lane{
		key:    key,
		ch:     make(chan *writeOp, m.config.QueueCapacity),
		stopCh: make(chan struct{}),
	}
	l.lastUsed.Store(time.Now().UnixNano())

	actual, loaded := m.lanes.LoadOrStore(key, l)
	if loaded {
		existing := actual.(*lane)
		if !existing.closed.Load() {
			existing.lastUsed.Store(time.Now().UnixNano())
			return existing
		}
		// the idle sweeper retired this lane; replace it
		m.lanes.Store(key, l)
	}

	l.workerWg.Add(1)
	go m.worker(l)

	m.logger.Debug("write lane created",
		zap.Int64("lane", key),
		zap.Int("capacity", m.config.QueueCapacity))

	return l
}

func (m *Manager) worker(l *lane) {
	defer l.workerWg.Done()
	defer func() {
		l.closed.Store(true)
		m.logger.Debug("write lane worker stopped", zap.Int64("lane", l.key))
	}()

	for {
		select {
		case <-m.ctx.Done():
			m.drain(l)
			return
		case <-l.stopCh:
			m.drain(l)
			return
		case op := <-l.ch:
			m.run(l, op)
		}
	}
}

func (m *Manager) run(l *lane, op *writeOp) {
	l.lastUsed.Store(time.Now().UnixNano())

	if !op.state.CompareAndSwap(opQueued, opRunning) {
		return
	}
	if err := op.ctx.Err(); err != nil {
		op.result <- err
		return
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("write operation panic",
					zap.Int64("lane", l.key),
					zap.Any("panic", r),
					zap.Stack("stack"))
				err = errors.New("write operation panic")
			}
		}()
		err = op.fn(op.ctx)
	}()
	op.result <- err
}

func (m *Manager) drain(l *lane) {
	for {
		select {
		case op := <-l.ch:
			m.run(l, op)
		default:
			return
		}
	}
}

func (m *Manager) cleanupIdleLanes() {
	defer m.cleanupWg.Done()

	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.cleanupDone:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep retires lanes idle longer than IdleTimeout with nothing queued.
// sweep 回收空闲且无排队操作的通道
func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UnixNano()
	threshold := m.config.IdleTimeout.Nanoseconds()

	m.lanes.Range(func(key, value interface{}) bool {
		l := value.(*lane)
		idle := now - l.lastUsed.Load()
		if idle > threshold && len(l.ch) == 0 && !l.closed.Load() {
			m.logger.Debug("releasing idle write lane",
				zap.Int64("lane", l.key),
				zap.Duration("idleTime", time.Duration(idle)))
			l.stop()
			m.lanes.CompareAndDelete(key, l)
		}
		return true
	})
}

// Shutdown stops accepting work, drains every lane and waits for the workers.
// Shutdown 停止接收新操作，排空所有通道并等待 worker 退出
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.logger.Info("write queue manager shutting down")
	close(m.cleanupDone)

	done := make(chan struct{})
	go func() {
		m.lanes.Range(func(_, value interface{}) bool {
			value.(*lane).stop()
			return true
		})
		m.lanes.Range(func(_, value interface{}) bool {
			value.(*lane).workerWg.Wait()
			return true
		})
		m.cleanupWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("write queue manager shutdown completed")
		m.cancel()
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout, forcing cancellation")
		m.cancel()
		return ctx.Err()
	}
}

// LaneCount returns the number of live lanes
func (m *Manager) LaneCount() int {
	count := 0
	m.lanes.Range(func(_, value interface{}) bool {
		if !value.(*lane).closed.Load() {
			count++
		}
		return true
	})
	return count
}

// QueuedCount returns the operations waiting on one lane
func (m *Manager) QueuedCount(key int64) int {
	if v, ok := m.lanes.Load(key); ok {
		return len(v.(*lane).ch)
	}
	return 0
}

func (m *Manager) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
