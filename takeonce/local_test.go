package takeonce

import (
	"testing"

	"github.com/bytedance/gopkg/lang/fastrand"
	"github.com/stretchr/testify/require"

	"github.com/jimblandy/shared-take-once/pkg/counter"
)

func TestLocalTakeViaAlias(t *testing.T) {
	h := NewLocal([]int{1, 2, 3})
	alias := h.Clone()

	v, ok := alias.Take()
	require.True(t, ok)
	require.Equal(t, []int{1, 2, 3}, v)

	_, ok = h.Take()
	require.False(t, ok)
}

func TestLocalTakeSingleHandle(t *testing.T) {
	h := NewLocal("only")
	v, ok := h.Take()
	require.True(t, ok)
	require.Equal(t, "only", v)
}

func TestLocalDisposeOnceWithoutTake(t *testing.T) {
	var disposed counter.Counter
	h := NewLocalWithDispose("payload", func(string) { disposed.Incr() })
	alias := h.Clone()
	require.EqualValues(t, 0, disposed.Load())

	h.Release()
	require.EqualValues(t, 0, disposed.Load())

	alias.Release()
	require.EqualValues(t, 1, disposed.Load())
}

func TestLocalTakeSkipsDispose(t *testing.T) {
	var disposed counter.Counter
	h := NewLocalWithDispose("payload", func(string) { disposed.Incr() })
	alias := h.Clone()

	v, ok := h.Take()
	require.True(t, ok)
	require.Equal(t, "payload", v)

	alias.Release()
	require.EqualValues(t, 0, disposed.Load(), "the taker owns the value, dispose must not run")
}

func TestLocalClonePreservesStateClass(t *testing.T) {
	h := NewLocal(7)
	occupied := h.Clone()
	require.True(t, occupied.Occupied())
	require.Equal(t, 7, occupied.MustTake())

	// h now observes empty; its clones must as well.
	require.False(t, h.Occupied())
	empty := h.Clone()
	require.False(t, empty.Occupied())
	_, ok := empty.Take()
	require.False(t, ok)
	h.Release()
}

func TestLocalManyHandlesShuffled(t *testing.T) {
	const n = 64
	for iter := 0; iter < 100; iter++ {
		handles := make([]*Local[int], n)
		handles[0] = NewLocal(iter)
		for i := 1; i < n; i++ {
			handles[i] = handles[0].Clone()
		}
		for i := n - 1; i > 0; i-- {
			j := fastrand.Intn(i + 1)
			handles[i], handles[j] = handles[j], handles[i]
		}
		wins := 0
		for _, h := range handles {
			if v, ok := h.Take(); ok {
				require.Equal(t, iter, v)
				wins++
			}
		}
		require.Equal(t, 1, wins)
	}
}

func TestLocalStateBookkeeping(t *testing.T) {
	h := NewLocal(1)
	c := h.c
	require.EqualValues(t, 1, c.state)

	a := h.Clone()
	require.EqualValues(t, 2, c.state)

	v, ok := a.Take()
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.EqualValues(t, -1, c.state, "take flips the sign, then drops the consumed handle's unit")

	b := h.Clone()
	require.EqualValues(t, -2, c.state)

	b.Release()
	require.EqualValues(t, -1, c.state)
	h.Release()
	require.EqualValues(t, 0, c.state)
}

func TestLocalFreesCellWithoutTake(t *testing.T) {
	frees := stats.Frees.Load()
	h := NewLocal("x")
	alias := h.Clone()
	alias.Release()
	require.Equal(t, frees, stats.Frees.Load())
	h.Release()
	require.Equal(t, frees+1, stats.Frees.Load())
}

func TestLocalConsumedHandlePanics(t *testing.T) {
	h := NewLocal(1)
	h.MustTake()

	require.PanicsWithValue(t, panicConsumed, func() { h.Take() })
	require.PanicsWithValue(t, panicConsumed, func() { h.Release() })
	require.PanicsWithValue(t, panicConsumed, func() { h.Clone() })
	require.PanicsWithValue(t, panicConsumed, func() { h.Occupied() })
}

func TestLocalMustTakePanicsWhenEmpty(t *testing.T) {
	h := NewLocal(1)
	alias := h.Clone()
	alias.MustTake()
	require.PanicsWithValue(t, panicTaken, func() { h.MustTake() })
}

func TestLocalSequentialHandoff(t *testing.T) {
	// Handles may cross goroutines one at a time as long as access never
	// overlaps; the channel provides the happens-before edge.
	h := NewLocal([]byte("handoff"))
	ch := make(chan *Local[[]byte])
	done := make(chan []byte)
	go func() {
		alias := <-ch
		done <- alias.MustTake()
	}()
	ch <- h.Clone()
	require.Equal(t, []byte("handoff"), <-done)
	_, ok := h.Take()
	require.False(t, ok)
}
