package gateway

import (
	"sync"
	"time"
)

// SaveDebounce is the quiet period a burst of mutations must survive before
// the remote write fires.
const SaveDebounce = 2 * time.Second

// Debouncer coalesces bursts of triggers into a single trailing-edge run of
// fn. Every Trigger restarts the timer, so fn runs only after the full delay
// passes with no further triggers. At most one run is armed at a time. If
// the process exits before the delay elapses the armed run is lost; callers
// that need durability on shutdown use Flush.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
}

func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger arms (or re-arms) the pending run.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		d.timer = nil
		d.mu.Unlock()
		d.fn()
	})
}

// Flush runs fn immediately if a run is armed, cancelling the timer.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	armed := d.timer != nil
	if armed {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if armed {
		d.fn()
	}
}

// Stop drops any armed run without firing it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
