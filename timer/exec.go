package timer

import (
	"runtime"

	"github.com/fixkme/timerkit/errs"
	"github.com/fixkme/timerkit/mlog"
)

// exec 执行节点回调
// panic被隔离并记录日志, 不影响同一批次其他节点的触发和堆的维护
func (h *MinHeap[T]) exec(node *Node[T]) {
	if node.cb == nil {
		return
	}
	if p := h.opts.pool; p != nil {
		cn := *node // 异步执行期间原节点可能重新入堆, 传副本
		if err := p.Submit(func() {
			safeCall(&cn)
		}); err != nil {
			mlog.Error(errs.PoolSubmit.Printf("timer id:%d, %v", node.id, err))
			safeCall(node)
		}
		return
	}
	safeCall(node)
}

func safeCall[T any](node *Node[T]) {
	defer func() {
		if r := recover(); r != nil {
			const size = 8 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			mlog.Error(errs.CallbackPanic.Printf("timer id:%d, %v\n%s", node.id, r, buf))
		}
	}()
	node.cb(node)
}
