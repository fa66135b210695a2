package timer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fixkme/timerkit/mlog"
)

const (
	defaultTimingMs = 1000 // 初始最小定时时间 ms
	pollDivisor     = 10   // 轮询间隔为最小定时时间的 1/10
)

// Loop 带轮询协程的最小堆定时器
// Start/Stop 应由单一属主调用, 并发调用需要外部同步
type Loop[T any] struct {
	*MinHeap[T]
	running   atomic.Bool
	quit      chan struct{}
	wg        sync.WaitGroup
	minTiming atomic.Int64 // 历史最小定时时间 ms, 只收缩不回涨
}

func NewLoop[T any](opts ...Option) *Loop[T] {
	l := &Loop[T]{
		MinHeap: NewMinHeap[T](opts...),
	}
	l.minTiming.Store(defaultTimingMs)
	return l
}

// Add 添加定时器节点, 同时按定时时间收缩轮询间隔
func (l *Loop[T]) Add(timingMs int64, data T, cb Callback[T], loop bool) int64 {
	if timingMs > 0 && timingMs < l.minTiming.Load() {
		l.minTiming.Store(timingMs)
	}
	return l.MinHeap.Add(timingMs, data, cb, loop)
}

// Start 启动轮询协程; 已在运行时为空操作
func (l *Loop[T]) Start() {
	if !l.running.CompareAndSwap(false, true) {
		return
	}
	mlog.Info("timer loop start")
	l.quit = make(chan struct{})
	l.wg.Add(1)
	go l.run()
}

// Stop 停止轮询协程并等待其退出; 返回后不会再触发任何节点
// 停止后可以再次Start
func (l *Loop[T]) Stop() {
	if !l.running.CompareAndSwap(true, false) {
		return
	}
	close(l.quit)
	l.wg.Wait()
	mlog.Info("timer loop stop")
}

func (l *Loop[T]) run() {
	defer l.wg.Done()
	tick := time.NewTimer(l.pollInterval())
	defer tick.Stop()
	for {
		select {
		case <-l.quit:
			return
		case <-tick.C:
			l.ExpireNow()
			tick.Reset(l.pollInterval())
		}
	}
}

func (l *Loop[T]) pollInterval() time.Duration {
	ms := l.minTiming.Load() / pollDivisor
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}
