package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Entry is one armed timer owned by the Registry.
type Entry struct {
	Key    string
	FireAt time.Time

	action func()
	timer  *clock.Timer
}

// Remaining returns how long until the entry fires. Overdue entries
// report zero, never a negative duration.
func (e *Entry) Remaining(now time.Time) time.Duration {
	if d := e.FireAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Registry maps opaque keys to pending delayed actions. Keys are
// caller-defined strings; by convention they are namespaced per entity
// ("ban:{guild}:{member}", "giveaway:{id}") so independent features never
// collide. Creating a second entry for an existing key cancels the first.
type Registry struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries map[string]*Entry
}

// New creates a registry backed by the wall clock.
func New() *Registry {
	return NewWithClock(clock.New())
}

// NewWithClock creates a registry with an injected clock, used by tests
// to drive timers deterministically.
func NewWithClock(c clock.Clock) *Registry {
	return &Registry{
		clock:   c,
		entries: make(map[string]*Entry),
	}
}

// Create schedules action to run once after delay. If an entry already
// exists for key it is cancelled first and its action is discarded;
// replacement, not queueing. A zero or negative delay is accepted and
// fires on the next tick.
func (r *Registry) Create(key string, delay time.Duration, action func()) *Entry {
	if delay < 0 {
		delay = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.entries[key]; ok {
		old.timer.Stop()
	}

	e := &Entry{
		Key:    key,
		FireAt: r.clock.Now().Add(delay),
		action: action,
	}
	e.timer = r.clock.AfterFunc(delay, func() {
		r.fire(key, e)
	})
	r.entries[key] = e
	return e
}

// Close cancels and removes the entry for key, returning it, or nil if no
// entry exists. Once Close returns the entry's action will not run. If the
// action has already been detached and is running, Close is a no-op; it
// never interrupts an in-flight action.
func (r *Registry) Close(key string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return nil
	}
	e.timer.Stop()
	delete(r.entries, key)
	return e
}

// Call runs the pending action for key immediately and synchronously,
// removing the entry. No-op if key is absent.
func (r *Registry) Call(key string) {
	r.mu.Lock()
	e, ok := r.entries[key]
	if ok {
		e.timer.Stop()
		delete(r.entries, key)
	}
	r.mu.Unlock()

	if ok {
		runAction(key, e.action)
	}
}

// Get returns the entry for key without touching it, or nil. Callers use
// this to inspect the remaining delay before deciding to replace a timer.
func (r *Registry) Get(key string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[key]
}

// Len returns the number of armed timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// CloseAll cancels every pending entry. Used on shutdown; in-flight
// actions are left to finish on their own.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, e := range r.entries {
		e.timer.Stop()
		delete(r.entries, key)
	}
}

// Now exposes the registry's clock so callers compute remaining delays
// against the same time source the timers use.
func (r *Registry) Now() time.Time {
	return r.clock.Now()
}

// fire is the timer callback. The entry is detached from the map before
// the action starts, so an action that re-creates its own key installs a
// fresh entry instead of racing this cleanup. A stale callback whose entry
// was already replaced or closed finds a mismatch and does nothing.
func (r *Registry) fire(key string, e *Entry) {
	r.mu.Lock()
	cur, ok := r.entries[key]
	if !ok || cur != e {
		r.mu.Unlock()
		return
	}
	delete(r.entries, key)
	r.mu.Unlock()

	go runAction(key, e.action)
}

// runAction shields the registry from misbehaving actions. Errors are the
// action's own business to log; a panic is contained here so one bad
// action cannot take down unrelated timers.
func runAction(key string, action func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[Scheduler] Recovered panic in action for key %s: %v", key, rec)
		}
	}()
	action()
}
