package timers

import (
	"sync"
	"time"
)

// Registry owns the one-shot end timers, at most one armed timer per event
// id. It is shared by the record store and the scheduler so that removing a
// record and disarming its timer happen in the same call.
type Registry struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewRegistry() *Registry {
	return &Registry{timers: make(map[string]*time.Timer)}
}

// Arm schedules fn after d for the given event id. An already-armed timer
// for the same id is disarmed first, so re-arming is idempotent.
func (r *Registry) Arm(id string, d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.timers[id]; ok {
		old.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		r.mu.Lock()
		// Only clear the entry if it still refers to this timer; a
		// re-arm may have replaced it while we were firing.
		if cur, ok := r.timers[id]; ok && cur == t {
			delete(r.timers, id)
		}
		r.mu.Unlock()
		fn()
	})
	r.timers[id] = t
}

// Disarm stops and forgets the timer for the event id. It reports whether a
// timer was armed.
func (r *Registry) Disarm(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.timers[id]
	if !ok {
		return false
	}
	t.Stop()
	delete(r.timers, id)
	return true
}

// Armed reports whether a timer is currently armed for the event id.
func (r *Registry) Armed(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.timers[id]
	return ok
}

// Len returns the number of armed timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// StopAll disarms every timer; used on shutdown. Recovery on the next start
// is the sole mechanism for timers lost here.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
}
