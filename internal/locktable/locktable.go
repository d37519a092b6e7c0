// Package locktable implements the coordinator's per-key mutual exclusion:
// a process-wide set of "currently busy" keys that serialises PUT/DELETE
// operations on the same key across concurrent requests.
package locktable

import "sync"

// Table is a process-wide set of keys currently undergoing a PUT or DELETE.
// The zero value is not usable; construct with New.
type Table struct {
	mu   sync.RWMutex
	busy map[string]struct{}
}

// New returns an empty lock table.
func New() *Table {
	return &Table{busy: make(map[string]struct{})}
}

// Release removes a key from the busy set. Calling Release is always safe,
// including on an already-released key.
type Release func()

// TryAcquire attempts to mark key busy. It reports ok=false if key is
// already busy, in which case the caller must respond 409 Conflict and must
// not call the returned Release (it is nil).
//
// On success, the caller MUST defer the returned Release so that every exit
// path — success, error, or panic — removes the key from the set. A first
// presence check runs under the read lock; the key is then checked again
// under the write lock before it is inserted, so of two concurrent callers
// for a fresh key at most one succeeds.
func (t *Table) TryAcquire(key string) (release Release, ok bool) {
	t.mu.RLock()
	_, busy := t.busy[key]
	t.mu.RUnlock()
	if busy {
		return nil, false
	}

	t.mu.Lock()
	if _, busy := t.busy[key]; busy {
		t.mu.Unlock()
		return nil, false
	}
	t.busy[key] = struct{}{}
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.busy, key)
			t.mu.Unlock()
		})
	}, true
}

// Contains reports whether key is currently busy. Exposed for diagnostics
// and tests; the request coordinator itself only ever calls TryAcquire.
func (t *Table) Contains(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, busy := t.busy[key]
	return busy
}
