package takeonce

import (
	"runtime"
	"sync/atomic"

	logger "github.com/moontrade/log"
)

// OnLeak is invoked, when leak tracking is on, for each container the
// garbage collector finds with handles still counted against it. That only
// happens when a handle was dropped without Take or Release. Tests may
// swap this in before enabling tracking; it is not synchronized.
var OnLeak = func(live int64) {
	logger.Warn("takeonce: container collected with %d live handle(s): handle dropped without Release", live)
}

var leakTracking atomic.Bool

// TrackLeaks toggles finalizer-based leak reporting for containers created
// after the call. Off by default; meant for tests and debug builds.
func TrackLeaks(enabled bool) {
	leakTracking.Store(enabled)
}

func leakReport(state int64) {
	if state == 0 {
		return
	}
	if state < 0 {
		state = -state
	}
	stats.Leaks.Incr()
	OnLeak(state)
}

func (c *sharedCell[T]) trackLeak() {
	if !leakTracking.Load() {
		return
	}
	runtime.SetFinalizer(c, func(c *sharedCell[T]) {
		leakReport(c.state.Load())
	})
}

func (c *localCell[T]) trackLeak() {
	if !leakTracking.Load() {
		return
	}
	runtime.SetFinalizer(c, func(c *localCell[T]) {
		leakReport(c.state)
	})
}
