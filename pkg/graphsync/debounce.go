package graphsync

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// text edit is processed.
const DefaultDebounce = 200 * time.Millisecond

// Debouncer delivers the last value pushed within a burst once no new
// value arrived for the configured delay (trailing edge).
type Debouncer struct {
	delay time.Duration
	fn    func(string)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending *string
}

// NewDebouncer creates a debouncer calling fn on its own goroutine.
// A non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration, fn func(text string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Push records text and restarts the delay.
func (d *Debouncer) Push(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	d.pending = &text
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	text := *d.pending
	d.pending = nil
	d.mu.Unlock()

	d.fn(text)
}

// Flush delivers a pending value immediately on the calling goroutine.
// It reports whether there was one.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.pending == nil {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	text := *d.pending
	d.pending = nil
	d.mu.Unlock()

	d.fn(text)
	return true
}

// Stop discards any pending value.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	d.pending = nil
}
