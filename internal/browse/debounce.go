package browse

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a typed term is committed.
const DefaultDebounce = 300 * time.Millisecond

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// TimerFunc schedules f after d. Tests substitute a manual clock.
type TimerFunc func(d time.Duration, f func()) Timer

func realTimer(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer commits the last input once no new input arrived for the interval.
type Debouncer struct {
	interval time.Duration
	after    TimerFunc
	commit   func(string)

	mu      sync.Mutex
	pending Timer
	gen     uint64
	stopped bool
}

// NewDebouncer builds a debouncer; a zero interval uses DefaultDebounce and a nil after uses time.AfterFunc.
func NewDebouncer(interval time.Duration, after TimerFunc, commit func(string)) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	if after == nil {
		after = realTimer
	}
	return &Debouncer{interval: interval, after: after, commit: commit}
}

// Input replaces any pending term and restarts the quiet period.
func (d *Debouncer) Input(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.cancelLocked()
	gen := d.gen
	d.pending = d.after(d.interval, func() { d.fire(gen, term) })
}

// Cancel drops the pending commit, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Stop cancels and ignores all further input.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer) cancelLocked() {
	d.gen++
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}

// fire commits only if no Input, Cancel or Stop happened since the timer was armed.
func (d *Debouncer) fire(gen uint64, term string) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.gen++
	d.mu.Unlock()

	if d.commit != nil {
		d.commit(term)
	}
}
