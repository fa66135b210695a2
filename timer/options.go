package timer

import (
	"github.com/fixkme/timerkit/mtime"
	"github.com/panjf2000/ants/v2"
)

type options struct {
	now  func() int64 // 毫秒时钟源
	pool *ants.Pool   // 回调执行协程池, 为nil时同步执行
}

type Option func(*options)

// WithNowFunc 指定毫秒时钟源, 默认 mtime.NowMs
func WithNowFunc(f func() int64) Option {
	return func(o *options) {
		if f != nil {
			o.now = f
		}
	}
}

// WithGoPool 指定回调执行的协程池
// 设置后回调异步执行, 同一次Expire内不再保证回调按到期时间次序完成;
// 提交失败时退回同步执行
func WithGoPool(p *ants.Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

func loadOptions(opts ...Option) *options {
	o := &options{
		now: mtime.NowMs,
	}
	for _, f := range opts {
		f(o)
	}
	return o
}
