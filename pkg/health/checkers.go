package health

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
)

// GoroutineCount returns a CheckFunc that fails once the goroutine count
// exceeds max. Useful as a liveness probe for goroutine leaks.
func GoroutineCount(max int) CheckFunc {
	return func(_ context.Context) error {
		if n := runtime.NumGoroutine(); n > max {
			return errors.Errorf("goroutine count %d exceeds %d", n, max)
		}
		return nil
	}
}

// GCMaxPause returns a CheckFunc that fails when any recorded stop-the-world
// pause exceeds max.
func GCMaxPause(max time.Duration) CheckFunc {
	return func(_ context.Context) error {
		var stats debug.GCStats
		debug.ReadGCStats(&stats)
		for _, pause := range stats.Pause {
			if pause > max {
				return errors.Errorf("GC pause %s exceeds %s", pause, max)
			}
		}
		return nil
	}
}
