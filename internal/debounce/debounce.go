// Package debounce delays an effect until its key has been quiet for a window.
package debounce

import (
	"sync"
	"time"
)

type entry struct {
	timer *time.Timer
	seq   uint64
}

// Debouncer keeps at most one pending timer per key. Effects scheduled under
// the same key never run concurrently.
type Debouncer struct {
	mu      sync.Mutex
	pending map[string]*entry
	running map[string]*sync.Mutex
	seq     uint64
	stopped bool
}

func New() *Debouncer {
	return &Debouncer{
		pending: make(map[string]*entry),
		running: make(map[string]*sync.Mutex),
	}
}

// Schedule runs effect once no other Schedule for key happens within delay.
// A previously pending effect for key is dropped.
func (d *Debouncer) Schedule(key string, delay time.Duration, effect func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if e, ok := d.pending[key]; ok {
		e.timer.Stop()
	}

	d.seq++
	seq := d.seq
	e := &entry{seq: seq}
	e.timer = time.AfterFunc(delay, func() { d.fire(key, seq, effect) })
	d.pending[key] = e
}

func (d *Debouncer) fire(key string, seq uint64, effect func()) {
	d.mu.Lock()
	e, ok := d.pending[key]
	// Stop can lose the race against an expiring timer; the sequence check
	// makes a superseded or cancelled firing a no-op.
	if !ok || e.seq != seq || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	run := d.runLock(key)
	d.mu.Unlock()

	run.Lock()
	defer run.Unlock()
	effect()
}

func (d *Debouncer) runLock(key string) *sync.Mutex {
	m, ok := d.running[key]
	if !ok {
		m = &sync.Mutex{}
		d.running[key] = m
	}
	return m
}

// Cancel drops the pending effect for key without running it.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.pending[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(d.pending, key)
	return true
}

// Pending reports whether an effect is waiting for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Stop cancels everything and rejects further scheduling.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, key)
	}
}
