package service

import (
	"time"

	"github.com/bep/debounce"
)

// Debouncer runs only the last of a burst of triggers, once delay has passed
// without a newer trigger.
type Debouncer struct {
	debounced func(func())
}

// NewDebouncer constructs a debouncer. A non-positive delay runs triggers
// immediately on a new goroutine.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{debounced: debounce.New(delay)}
}

// Trigger schedules fn, replacing any pending function.
func (d *Debouncer) Trigger(fn func()) {
	d.debounced(fn)
}

// Stop drops any pending function.
func (d *Debouncer) Stop() {
	d.debounced(func() {})
}
