package timer

// Callback 定时回调, 触发时传入到期的节点
type Callback[T any] func(node *Node[T])

// Node 定时器节点
type Node[T any] struct {
	id       int64 // 定时器节点id, 进程内唯一且单调递增, 不复用
	idx      int   // 节点在最小堆中的位置索引
	expireMs int64 // 过期时间戳 ms; 过期时间 = 创建定时器时间 + 定时时间
	timingMs int64 // 定时时间 ms

	Data T // 节点存储的数据

	cb   Callback[T] // 定时回调
	loop bool        // 是否循环执行; 为true时到期后会重新加入定时器
}

// Id 节点id; 循环节点每次重新入堆都会分配新id
func (n *Node[T]) Id() int64 {
	return n.id
}

// Index 节点当前在堆数组中的位置
func (n *Node[T]) Index() int {
	return n.idx
}

// ExpireMs 过期时间戳 ms
func (n *Node[T]) ExpireMs() int64 {
	return n.expireMs
}

// TimingMs 定时时间 ms
func (n *Node[T]) TimingMs() int64 {
	return n.timingMs
}

// IsLoop 是否循环定时器
func (n *Node[T]) IsLoop() bool {
	return n.loop
}
