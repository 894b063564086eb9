// Package safe_close 协调多个后台组件的统一关闭
package safe_close

import (
	"sync"
)

// SafeClose broadcasts one close signal to every attached worker and waits
// for all of them to report done. The first error passed to SendCloseSignal
// is kept and returned by WaitClosed.
type SafeClose struct {
	once    sync.Once
	closeCh chan struct{}
	wg      sync.WaitGroup

	mu  sync.Mutex
	err error
}

// NewSafeClose 创建 SafeClose
func NewSafeClose() *SafeClose {
	return &SafeClose{closeCh: make(chan struct{})}
}

// Attach 启动 fn，fn 必须在退出前调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var doneOnce sync.Once
	go fn(func() { doneOnce.Do(s.wg.Done) }, s.closeCh)
}

// SendCloseSignal 发送关闭信号，可重复调用
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	if s.err == nil && err != nil {
		s.err = err
	}
	s.mu.Unlock()
	s.once.Do(func() { close(s.closeCh) })
}

// Closed 关闭信号是否已发送
func (s *SafeClose) Closed() <-chan struct{} {
	return s.closeCh
}

// WaitClosed 等待所有组件退出，返回第一个关闭原因
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
