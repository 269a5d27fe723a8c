package takeonce

// localCell mirrors sharedCell with plain arithmetic. The confinement
// contract makes every mutation data-race free without atomics.
type localCell[T any] struct {
	state   int64
	value   T
	dispose func(T)
}

// Local is the goroutine-confined counterpart of Shared. Handles may alias
// freely within one goroutine of control and may be handed off to another
// goroutine, but no two goroutines may touch handles of the same container
// concurrently. In exchange every operation is a couple of plain integer
// instructions.
type Local[T any] struct {
	c *localCell[T]
}

// NewLocal allocates a container holding value and returns its first
// handle.
func NewLocal[T any](value T) *Local[T] {
	return NewLocalWithDispose[T](value, nil)
}

// NewLocalWithDispose is NewLocal with a cleanup hook; see NewWithDispose
// for the exactly-once contract.
func NewLocalWithDispose[T any](value T, dispose func(T)) *Local[T] {
	c := &localCell[T]{state: 1, value: value, dispose: dispose}
	stats.Cells.Incr()
	c.trackLeak()
	return &Local[T]{c: c}
}

// Clone returns a new handle to the same container, preserving occupancy.
func (h *Local[T]) Clone() *Local[T] {
	c := h.cell()
	switch {
	case c.state > 0:
		c.state++
	case c.state < 0:
		c.state--
	default:
		panic(panicZeroState)
	}
	return &Local[T]{c: c}
}

// Take consumes the handle and moves the value out if it is still present.
// Exactly one Take per container ever returns ok=true.
func (h *Local[T]) Take() (value T, ok bool) {
	c := h.cell()
	h.c = nil
	if c.state > 0 {
		value, ok = c.value, true
		var zero T
		c.value = zero
		c.state = -c.state
		stats.Takes.Incr()
	}
	c.release()
	return value, ok
}

// MustTake is Take that panics when the value was already taken.
func (h *Local[T]) MustTake() T {
	value, ok := h.Take()
	if !ok {
		panic(panicTaken)
	}
	return value
}

// Release consumes the handle without attempting extraction.
func (h *Local[T]) Release() {
	c := h.cell()
	h.c = nil
	c.release()
}

// Occupied reports whether the value has not been taken yet.
func (h *Local[T]) Occupied() bool {
	return h.cell().state > 0
}

func (h *Local[T]) cell() *localCell[T] {
	c := h.c
	if c == nil {
		panic(panicConsumed)
	}
	return c
}

func (c *localCell[T]) release() {
	switch {
	case c.state > 1:
		c.state--
	case c.state == 1:
		c.state = 0
		value := c.value
		var zero T
		c.value = zero
		stats.Frees.Incr()
		if c.dispose != nil {
			stats.Disposes.Incr()
			c.dispose(value)
		}
	case c.state == -1:
		c.state = 0
		var zero T
		c.value = zero
		stats.Frees.Incr()
	case c.state < -1:
		c.state++
	default:
		panic(panicZeroState)
	}
}
