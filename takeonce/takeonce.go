// Package takeonce provides a reference-counted, heap-allocated container
// whose value can be extracted by exactly one of its handles.
//
// A container is created with New or NewLocal and aliased with Clone. Take
// consumes a handle and moves the value out if no other handle beat it to
// it; every later Take on any alias observes absence. The effect is similar
// to sharing a pointer to a mutex-guarded optional slot, but with a single
// allocation, no lock, and a single machine word of bookkeeping.
//
// The bookkeeping is one signed 64-bit integer per container. Its sign
// records occupancy (positive while the value is present, negative once
// taken) and its magnitude records the number of live handles. Clone moves
// the integer one step away from zero, Release one step toward it, and a
// winning Take negates it. The container is dead when the integer reaches
// zero.
//
// Shared handles may be cloned and consumed from many goroutines
// concurrently. Local handles trade that for plain non-atomic arithmetic
// and must stay within one goroutine of control at a time.
//
// Every handle must be consumed exactly once, by Take or by Release. A
// handle dropped on the floor keeps the container's count from ever
// reaching zero; enable TrackLeaks to have such containers reported when
// the garbage collector finds them.
package takeonce

import (
	"github.com/jimblandy/shared-take-once/pkg/counter"
)

const (
	panicConsumed  = "takeonce: use of consumed handle"
	panicZeroState = "takeonce: refcount is zero while a handle exists"
	panicTaken     = "takeonce: value already taken"
)

// Stats counts container-level lifecycle events. Counters tick once per
// container, never per handle, so the hot paths stay cheap.
type Stats struct {
	Cells    counter.Counter // containers allocated
	Frees    counter.Counter // containers whose last handle was consumed
	Takes    counter.Counter // successful extractions
	Disposes counter.Counter // dispose hooks run
	Leaks    counter.Counter // containers collected with live handles
}

var stats Stats

// GlobalStats returns the process-wide lifecycle counters.
func GlobalStats() *Stats {
	return &stats
}
