package timer

import "sync"

var (
	builtinLoop *Loop[any]
	once        sync.Once
	AddTimer    func(timingMs int64, data any, cb Callback[any], loop bool) int64
	CancelTimer func(id int64) bool
	ResetTimer  func(id int64, timingMs int64) bool
)

// Start 启动内置全局定时器, 首次调用时创建
func Start(opts ...Option) {
	once.Do(func() {
		builtinLoop = NewLoop[any](opts...)
		AddTimer = builtinLoop.Add
		CancelTimer = builtinLoop.Cancel
		ResetTimer = builtinLoop.Reset
	})
	builtinLoop.Start()
}

// Stop 停止内置全局定时器
func Stop() {
	if builtinLoop != nil {
		builtinLoop.Stop()
	}
}
