package timer

import (
	"sync"
	"sync/atomic"

	"github.com/fixkme/timerkit/mlog"
)

// 全部实例共享的id生成器, 保证id进程内不复用
var genId atomic.Int64

func nextId() int64 {
	return genId.Add(1)
}

// MinHeap 最小堆定时器
// 按过期时间排序, 相同过期时间的节点触发次序不保证稳定;
// Add/Cancel/Reset/Expire 由同一把互斥锁串行化
type MinHeap[T any] struct {
	mtx  sync.Mutex
	heap []*Node[T]         // 最小堆
	locs map[int64]*Node[T] // <节点id, 节点>
	opts *options
}

func NewMinHeap[T any](opts ...Option) *MinHeap[T] {
	h := &MinHeap[T]{
		locs: make(map[int64]*Node[T]),
		opts: loadOptions(opts...),
	}
	return h
}

// Add 添加定时器节点, 返回节点id
// timingMs 定时时间; data 节点数据; cb 到期回调; loop 是否循环定时
func (h *MinHeap[T]) Add(timingMs int64, data T, cb Callback[T], loop bool) int64 {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	node := &Node[T]{
		timingMs: timingMs,
		Data:     data,
		cb:       cb,
		loop:     loop,
	}
	return h.addNode(node, h.opts.now()+timingMs)
}

// Cancel 删除节点; 节点不存在(已触发或已删除)时返回false, 重复调用无副作用
func (h *MinHeap[T]) Cancel(id int64) bool {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	node, ok := h.locs[id]
	if !ok {
		return false
	}
	h.removeNode(node)
	return true
}

// Reset 重设节点的定时时间, 过期时间按当前时间重新计算
func (h *MinHeap[T]) Reset(id int64, timingMs int64) bool {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	node, ok := h.locs[id]
	if !ok {
		return false
	}
	node.timingMs = timingMs
	node.expireMs = h.opts.now() + timingMs
	if !h.shiftDown(node.idx) {
		h.shiftUp(node.idx)
	}
	return true
}

// Expire 触发全部到期节点, 按过期时间从小到大依次回调
// 回调在不持锁状态下执行, 回调内可以再调用 Add/Cancel/Reset;
// 循环节点回调完成后以 nowMs+定时时间 重新入堆并分配新id
func (h *MinHeap[T]) Expire(nowMs int64) {
	for {
		h.mtx.Lock()
		if len(h.heap) == 0 {
			h.mtx.Unlock()
			return
		}
		node := h.heap[0]
		if nowMs < node.expireMs {
			h.mtx.Unlock()
			return
		}
		mlog.Debugf("timer trigger id:%d, expire:%d, now:%d, heap size:%d",
			node.id, node.expireMs, nowMs, len(h.heap))
		// 先出堆再回调, 回调期间节点不在堆中
		h.removeNode(node)
		h.mtx.Unlock()

		h.exec(node)

		if node.loop {
			h.mtx.Lock()
			h.addNode(node, nowMs+node.timingMs)
			h.mtx.Unlock()
		}
	}
}

// ExpireNow 以时钟源的当前时间触发全部到期节点
func (h *MinHeap[T]) ExpireNow() {
	h.Expire(h.opts.now())
}

// Snapshot 获取全部堆内节点, 不修改堆
func (h *MinHeap[T]) Snapshot() []*Node[T] {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	nodes := make([]*Node[T], len(h.heap))
	copy(nodes, h.heap)
	return nodes
}

// Len 堆内节点数量
func (h *MinHeap[T]) Len() int {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return len(h.heap)
}

// addNode 分配新id并入堆; 必须持锁调用
func (h *MinHeap[T]) addNode(node *Node[T], expireMs int64) int64 {
	node.id = nextId()
	node.expireMs = expireMs
	node.idx = len(h.heap)
	h.heap = append(h.heap, node)
	h.shiftUp(node.idx)
	h.locs[node.id] = node
	return node.id
}

// removeNode 从堆和索引表中移除节点; 必须持锁调用
func (h *MinHeap[T]) removeNode(node *Node[T]) {
	last := len(h.heap) - 1
	idx := node.idx
	if idx != last {
		h.heap[idx] = h.heap[last]
		h.heap[idx].idx = idx
	}
	h.heap[last] = nil // 便于gc
	h.heap = h.heap[:last]
	if idx != last {
		// 顶上来的节点可能偏大也可能偏小, 先降后升
		if !h.shiftDown(idx) {
			h.shiftUp(idx)
		}
	}
	delete(h.locs, node.id)
}

func (h *MinHeap[T]) lessThan(lhs, rhs int) bool {
	return h.heap[lhs].expireMs < h.heap[rhs].expireMs
}

func (h *MinHeap[T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.heap[i].idx = i
	h.heap[j].idx = j
}

// shiftDown 节点下降, 返回是否发生了移动
func (h *MinHeap[T]) shiftDown(pos int) bool {
	n := len(h.heap)
	idx := pos
	for {
		left := 2*idx + 1
		if left >= n || left < 0 { // left < 0 防溢出
			break
		}
		min := left
		if right := left + 1; right < n && h.lessThan(right, left) {
			min = right
		}
		if !h.lessThan(min, idx) {
			break
		}
		h.swap(idx, min)
		idx = min
	}
	return idx > pos
}

// shiftUp 节点上升
func (h *MinHeap[T]) shiftUp(pos int) {
	for pos > 0 {
		parent := (pos - 1) / 2
		if !h.lessThan(pos, parent) {
			break
		}
		h.swap(pos, parent)
		pos = parent
	}
}
