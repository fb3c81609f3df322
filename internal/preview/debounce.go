// Package preview serves the output tree locally and rebuilds it whenever
// the content tree or the configuration changes.
package preview

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of filesystem events into a single callback.
// The callback fires once no trigger has arrived for the quiet window.
type Debouncer struct {
	quiet time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer that invokes fn after the quiet window.
func NewDebouncer(quiet time.Duration, fn func()) *Debouncer {
	return &Debouncer{quiet: quiet, fn: fn}
}

// Trigger restarts the quiet window.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fn)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
