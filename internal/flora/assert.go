package flora

import (
	"fmt"
	"sync/atomic"
)

// debugChecks gates the invariant and post-condition checks wired through
// Flower's operations. Checks are disabled by default; when enabled, a
// violated check panics. They are diagnostics for development and tests,
// never part of the caller-visible contract.
var debugChecks atomic.Bool

// SetDebugChecks enables or disables debug checking for the whole package.
func SetDebugChecks(on bool) {
	debugChecks.Store(on)
}

// DebugChecksEnabled reports whether debug checking is active.
func DebugChecksEnabled() bool {
	return debugChecks.Load()
}

// assertf panics with a formatted message when cond is false and debug
// checks are enabled.
func assertf(cond bool, format string, v ...any) {
	if cond || !debugChecks.Load() {
		return
	}
	panic(fmt.Sprintf("flora: check failed: "+format, v...))
}
