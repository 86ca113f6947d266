// Package runtime handles connection acceptance, session workers, and
// message dispatch. It coordinates the system without containing wire
// formatting rules or persistence details.
package runtime

import (
	"strings"
	"sync"

	"lan-chat/contract"
	"lan-chat/domain"
	"lan-chat/errors"
)

// Registry is the concurrency-safe directory of active sessions.
// An entry exists iff the session is active from the rest of the
// system's viewpoint; its removal is the single authoritative signal
// of departure. The mutex guards map access only, never I/O.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*record
}

type record struct {
	peer    contract.Peer
	profile domain.Profile
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*record)}
}

// Register performs the uniqueness check and the insert as one critical
// section. Splitting the two steps would let a name freed by a departing
// session be claimed by two registrants at once.
func (r *Registry) Register(id string, peer contract.Peer, profile domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.sessions {
		if rec.profile.Name == profile.Name {
			return errors.ErrNameTaken
		}
	}
	r.sessions[id] = &record{peer: peer, profile: profile}
	return nil
}

// Unregister removes a session and reports whether it was still present.
// Calling it twice is safe; only the first call finds an entry.
func (r *Registry) Unregister(id string) (domain.Profile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[id]
	if !ok {
		return domain.Profile{}, false
	}
	delete(r.sessions, id)
	return rec.profile, true
}

// Snapshot copies all entries under the lock. Callers iterate and write
// outside the lock so a slow recipient cannot block registry mutation.
func (r *Registry) Snapshot() []contract.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]contract.Entry, 0, len(r.sessions))
	for id, rec := range r.sessions {
		entries = append(entries, contract.Entry{ID: id, Profile: rec.profile, Peer: rec.peer})
	}
	return entries
}

// SetDnd mutates the do-not-disturb flag of a registered session.
func (r *Registry) SetDnd(id string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[id]
	if !ok {
		return false
	}
	rec.profile.Dnd = enabled
	return true
}

// FindByName resolves a nickname to its entry, optionally ignoring case
// for private-message targeting.
func (r *Registry) FindByName(name string, caseInsensitive bool) (contract.Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, rec := range r.sessions {
		match := rec.profile.Name == name
		if caseInsensitive {
			match = strings.EqualFold(rec.profile.Name, name)
		}
		if match {
			return contract.Entry{ID: id, Profile: rec.profile, Peer: rec.peer}, true
		}
	}
	return contract.Entry{}, false
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
