package schedule

import (
	"sync"
	"time"

	"github.com/bep/debounce"
)

// Debouncer runs the most recently scheduled task once the quiescence window
// has passed without another Schedule call. A cancelled or superseded task
// never runs.
type Debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	debounced func(func())
	gen       uint64
	task      func()
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, debounced: debounce.New(delay)}
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule replaces any pending task and restarts the window.
func (d *Debouncer) Schedule(task func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	gen := d.gen
	d.task = task
	d.debounced(func() { d.fire(gen) })
}

func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.task = nil
}

// Flush runs the pending task now on the caller's goroutine. It reports
// whether there was one.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	task := d.task
	d.task = nil
	d.gen++
	d.mu.Unlock()
	if task == nil {
		return false
	}
	task()
	return true
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.task != nil
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.task == nil {
		d.mu.Unlock()
		return
	}
	task := d.task
	d.task = nil
	d.mu.Unlock()
	task()
}
