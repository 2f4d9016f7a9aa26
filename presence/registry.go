// Package presence is the process-local source of truth for which users
// currently hold an open connection. It tracks nothing across instances:
// a multi-process deployment needs an external shared store instead.
package presence

import (
	"sort"
	"sync"
)

// Registry maps an identity to its single active connection id.
// A second session for the same identity overwrites the first entry
// (last writer wins); the previous connection is left to drain on its own.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]string // identity -> connection id
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]string)}
}

// Register inserts or overwrites the entry for identity and returns the
// roster after the change, plus whether an older connection was displaced.
func (r *Registry) Register(identity, connID string) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced := r.entries[identity]
	r.entries[identity] = connID
	return r.rosterLocked(), replaced
}

// Deregister removes the entry for identity, but only if it still belongs
// to connID: the disconnect of a displaced connection must not clobber the
// session that replaced it. Deregistering an absent identity is a no-op,
// so a duplicate disconnect never fails.
func (r *Registry) Deregister(identity, connID string) (bool, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.entries[identity]
	if !ok || current != connID {
		return false, r.rosterLocked()
	}
	delete(r.entries, identity)
	return true, r.rosterLocked()
}

func (r *Registry) IsOnline(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[identity]
	return ok
}

// Roster returns the set of currently registered identities.
func (r *Registry) Roster() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rosterLocked()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Shutdown clears all entries. The registry can be registered into again
// afterwards; it exists so tests and restarts get an explicit lifetime.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]string)
}

// Sorted so broadcast payloads are stable for clients and tests.
func (r *Registry) rosterLocked() []string {
	roster := make([]string, 0, len(r.entries))
	for identity := range r.entries {
		roster = append(roster, identity)
	}
	sort.Strings(roster)
	return roster
}
