package takeonce

import (
	"github.com/jimblandy/shared-take-once/pkg/counter"
)

// sharedCell is the heap block behind every alias of one Shared container.
// state > 0: value present, state handles live.
// state < 0: value taken, -state handles live.
// state == 0 is unreachable while any handle exists.
type sharedCell[T any] struct {
	state   counter.Counter
	value   T
	dispose func(T)
}

// Shared is a handle to a take-once container that may be cloned and
// consumed from many goroutines concurrently. Clones of one container may
// race freely against each other. On a single handle, Clone and Occupied
// are safe to call concurrently; Take and Release consume the handle and
// require exclusive use of it, so hand each goroutine its own clone.
type Shared[T any] struct {
	c *sharedCell[T]
}

// New allocates a container holding value and returns its first handle.
func New[T any](value T) *Shared[T] {
	return NewWithDispose[T](value, nil)
}

// NewWithDispose is New with a cleanup hook. dispose runs exactly once,
// when the last handle is released while the value was never taken. If some
// handle takes the value, ownership moves to that caller and dispose never
// runs.
func NewWithDispose[T any](value T, dispose func(T)) *Shared[T] {
	c := &sharedCell[T]{value: value, dispose: dispose}
	c.state.Store(1)
	stats.Cells.Incr()
	c.trackLeak()
	return &Shared[T]{c: c}
}

// Clone returns a new handle to the same container. Cloning an empty
// container yields a handle that observes empty; it still pins the
// container's storage until released.
func (h *Shared[T]) Clone() *Shared[T] {
	c := h.cell()
	for {
		s := c.state.Load()
		switch {
		case s > 0:
			if c.state.Cas(s, s+1) {
				return &Shared[T]{c: c}
			}
		case s < 0:
			if c.state.Cas(s, s-1) {
				return &Shared[T]{c: c}
			}
		default:
			panic(panicZeroState)
		}
	}
}

// Take consumes the handle. If the value is still present this call moves
// it out and returns it with ok=true; otherwise it returns the zero value
// with ok=false. Across all handles of one container exactly one Take ever
// returns ok=true, no matter how the calls interleave. The handle is dead
// afterward either way.
func (h *Shared[T]) Take() (value T, ok bool) {
	c := h.cell()
	h.c = nil
	for {
		s := c.state.Load()
		if s < 0 {
			break
		}
		if s == 0 {
			panic(panicZeroState)
		}
		if c.state.Cas(s, -s) {
			// Winner. The consumed handle's own count unit keeps the
			// cell alive until the release below, so the slot is ours.
			value, ok = c.value, true
			var zero T
			c.value = zero
			stats.Takes.Incr()
			break
		}
	}
	c.release()
	return value, ok
}

// MustTake is Take that panics when the value was already taken.
func (h *Shared[T]) MustTake() T {
	value, ok := h.Take()
	if !ok {
		panic(panicTaken)
	}
	return value
}

// Release consumes the handle without attempting extraction. When the last
// handle goes, the container dies: a still-present value is handed to the
// dispose hook if one was set.
func (h *Shared[T]) Release() {
	c := h.cell()
	h.c = nil
	c.release()
}

// Occupied reports whether the value has not been taken yet. Under
// concurrent takers the answer is advisory; only Take decides.
func (h *Shared[T]) Occupied() bool {
	return h.cell().state.Load() > 0
}

func (h *Shared[T]) cell() *sharedCell[T] {
	c := h.c
	if c == nil {
		panic(panicConsumed)
	}
	return c
}

// release drops one count unit, moving state one step toward zero. The
// goroutine that lands on zero owns the teardown.
func (c *sharedCell[T]) release() {
	for {
		s := c.state.Load()
		switch {
		case s > 1:
			if c.state.Cas(s, s-1) {
				return
			}
		case s == 1:
			if !c.state.Cas(1, 0) {
				continue
			}
			value := c.value
			var zero T
			c.value = zero
			stats.Frees.Incr()
			if c.dispose != nil {
				stats.Disposes.Incr()
				c.dispose(value)
			}
			return
		case s == -1:
			if !c.state.Cas(-1, 0) {
				continue
			}
			var zero T
			c.value = zero
			stats.Frees.Incr()
			return
		case s < -1:
			if c.state.Cas(s, s+1) {
				return
			}
		default:
			panic(panicZeroState)
		}
	}
}
