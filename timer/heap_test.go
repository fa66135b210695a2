package timer

import (
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
)

// 测试用假时钟
type fakeClock struct {
	ms atomic.Int64
}

func newFakeClock(startMs int64) *fakeClock {
	c := &fakeClock{}
	c.ms.Store(startMs)
	return c
}

func (c *fakeClock) now() int64 {
	return c.ms.Load()
}

func (c *fakeClock) advance(d int64) int64 {
	return c.ms.Add(d)
}

// 校验堆序和位置索引
func checkHeap[T any](t *testing.T, h *MinHeap[T]) {
	t.Helper()
	nodes := h.Snapshot()
	for i, n := range nodes {
		require.Equal(t, i, n.Index(), "node id:%d idx mismatch", n.Id())
		if i > 0 {
			parent := (i - 1) / 2
			require.GreaterOrEqual(t, n.ExpireMs(), nodes[parent].ExpireMs(),
				"heap order broken at idx %d", i)
		}
	}
}

func TestAddCancel(t *testing.T) {
	clk := newFakeClock(1000)
	h := NewMinHeap[int](WithNowFunc(clk.now))

	const size = 200
	ids := make([]int64, 0, size)
	for i := 0; i < size; i++ {
		id := h.Add(int64(rand.Intn(5000)+1), i, nil, false)
		require.Greater(t, id, int64(0))
		ids = append(ids, id)
		checkHeap(t, h)
	}
	require.Equal(t, size, h.Len())

	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	for _, id := range ids[:size/2] {
		require.True(t, h.Cancel(id))
		checkHeap(t, h)
		// 重复删除
		require.False(t, h.Cancel(id))
	}
	require.Equal(t, size/2, h.Len())
}

func TestCancelUnknown(t *testing.T) {
	clk := newFakeClock(0)
	h := NewMinHeap[struct{}](WithNowFunc(clk.now))
	require.False(t, h.Cancel(0))
	require.False(t, h.Cancel(-1))
	// 从未发放过的id
	require.False(t, h.Cancel(genId.Load()+10000))
}

// 延迟{10,5,20}ms, 12ms后只有5和10触发, 且按到期次序
func TestExpireOrder(t *testing.T) {
	clk := newFakeClock(1000)
	h := NewMinHeap[string](WithNowFunc(clk.now))

	fired := make([]string, 0, 3)
	cb := func(n *Node[string]) {
		fired = append(fired, n.Data)
	}
	h.Add(10, "t10", cb, false)
	h.Add(5, "t5", cb, false)
	h.Add(20, "t20", cb, false)

	h.Expire(clk.advance(12))
	require.Equal(t, []string{"t5", "t10"}, fired)
	require.Equal(t, 1, h.Len())
	require.Equal(t, "t20", h.Snapshot()[0].Data)
	checkHeap(t, h)
}

func TestExpireOrderMany(t *testing.T) {
	clk := newFakeClock(1000)
	h := NewMinHeap[int](WithNowFunc(clk.now))

	fired := make([]int64, 0, 300)
	cb := func(n *Node[int]) {
		fired = append(fired, n.ExpireMs())
	}
	for i := 0; i < 300; i++ {
		h.Add(int64(rand.Intn(100)+1), i, cb, false)
	}
	h.Expire(clk.advance(100))
	require.Len(t, fired, 300)
	require.Equal(t, 0, h.Len())
	for i := 1; i < len(fired); i++ {
		require.LessOrEqual(t, fired[i-1], fired[i])
	}
}

func TestCancelBeforeExpire(t *testing.T) {
	clk := newFakeClock(1000)
	h := NewMinHeap[int](WithNowFunc(clk.now))

	var fired int
	id := h.Add(10, 0, func(n *Node[int]) { fired++ }, false)
	require.True(t, h.Cancel(id))
	require.False(t, h.Cancel(id))

	h.Expire(clk.advance(100))
	require.Zero(t, fired)
	require.Equal(t, 0, h.Len())
}

func TestLoopTimer(t *testing.T) {
	clk := newFakeClock(1000)
	h := NewMinHeap[int](WithNowFunc(clk.now))

	var fires []int64
	var ids []int64
	h.Add(5, 0, func(n *Node[int]) {
		fires = append(fires, n.ExpireMs())
		ids = append(ids, n.Id())
	}, true)

	for i := 0; i < 3; i++ {
		h.Expire(clk.advance(5))
		checkHeap(t, h)
	}
	require.Equal(t, []int64{1005, 1010, 1015}, fires)
	// 循环节点始终在堆中
	require.Equal(t, 1, h.Len())
	// 每次触发后重新入堆都分配新id
	for i := 1; i < len(ids); i++ {
		require.Greater(t, ids[i], ids[i-1])
	}
}

func TestLoopTimerGap(t *testing.T) {
	clk := newFakeClock(0)
	h := NewMinHeap[int](WithNowFunc(clk.now))

	var fires []int64
	h.Add(50, 0, func(n *Node[int]) {
		fires = append(fires, clk.now())
	}, true)

	// 以5ms为步长推进220ms
	for clk.now() < 220 {
		h.Expire(clk.advance(5))
	}
	require.Len(t, fires, 4)
	for i := 1; i < len(fires); i++ {
		require.GreaterOrEqual(t, fires[i]-fires[i-1], int64(50))
	}
}

func TestReset(t *testing.T) {
	clk := newFakeClock(1000)
	h := NewMinHeap[int](WithNowFunc(clk.now))

	var fired int
	id := h.Add(1000, 0, func(n *Node[int]) { fired++ }, false)
	h.Add(500, 1, nil, false)

	require.True(t, h.Reset(id, 5))
	checkHeap(t, h)
	h.Expire(clk.advance(10))
	require.Equal(t, 1, fired)
	require.False(t, h.Reset(id, 5))
	require.False(t, h.Reset(12345678, 5))
}

// 回调内再添加和删除定时器不会死锁
func TestReentrantCallback(t *testing.T) {
	clk := newFakeClock(1000)
	h := NewMinHeap[int](WithNowFunc(clk.now))

	var victim int64
	victimFired := false
	victim = h.Add(100, 0, func(n *Node[int]) { victimFired = true }, false)

	var addedFired bool
	h.Add(5, 0, func(n *Node[int]) {
		// 自己已出堆, 删除自己返回false
		require.False(t, h.Cancel(n.Id()))
		require.True(t, h.Cancel(victim))
		h.Add(10, 0, func(n *Node[int]) { addedFired = true }, false)
	}, false)

	h.Expire(clk.advance(6))
	checkHeap(t, h)
	require.Equal(t, 1, h.Len())

	h.Expire(clk.advance(200))
	require.True(t, addedFired)
	require.False(t, victimFired)
	require.Equal(t, 0, h.Len())
}

// 一个回调panic不影响同批其他节点触发和堆的维护
func TestCallbackPanic(t *testing.T) {
	clk := newFakeClock(1000)
	h := NewMinHeap[int](WithNowFunc(clk.now))

	var fired int
	h.Add(5, 0, func(n *Node[int]) { panic("boom") }, false)
	h.Add(10, 0, func(n *Node[int]) { fired++ }, false)
	h.Add(7, 0, func(n *Node[int]) { panic("boom") }, true)

	require.NotPanics(t, func() {
		h.Expire(clk.advance(20))
	})
	require.Equal(t, 1, fired)
	// 非循环节点全部出堆, 循环节点panic后仍重新入堆
	require.Equal(t, 1, h.Len())
	require.True(t, h.Snapshot()[0].IsLoop())
	checkHeap(t, h)
}

func TestSnapshot(t *testing.T) {
	clk := newFakeClock(1000)
	h := NewMinHeap[int](WithNowFunc(clk.now))
	for i := 0; i < 10; i++ {
		h.Add(int64(i+1), i, nil, false)
	}
	nodes := h.Snapshot()
	require.Len(t, nodes, 10)
	require.Equal(t, 10, h.Len())
	// 快照不影响堆
	h.Expire(clk.advance(100))
	require.Equal(t, 0, h.Len())
	require.Len(t, nodes, 10)
}

func TestGoPool(t *testing.T) {
	pool, err := ants.NewPool(4)
	require.NoError(t, err)
	defer pool.Release()

	clk := newFakeClock(1000)
	h := NewMinHeap[int](WithNowFunc(clk.now), WithGoPool(pool))

	var fired atomic.Int32
	for i := 0; i < 20; i++ {
		h.Add(int64(i%5+1), i, func(n *Node[int]) {
			fired.Add(1)
		}, false)
	}
	h.Expire(clk.advance(10))
	require.Equal(t, 0, h.Len())
	require.Eventually(t, func() bool {
		return fired.Load() == 20
	}, time.Second, 5*time.Millisecond)
}

// id全局单调递增, 多实例不重复
func TestGlobalId(t *testing.T) {
	clk := newFakeClock(0)
	h1 := NewMinHeap[int](WithNowFunc(clk.now))
	h2 := NewMinHeap[int](WithNowFunc(clk.now))
	last := int64(0)
	for i := 0; i < 10; i++ {
		id1 := h1.Add(10, 0, nil, false)
		id2 := h2.Add(10, 0, nil, false)
		require.Greater(t, id1, last)
		require.Greater(t, id2, id1)
		last = id2
	}
}
