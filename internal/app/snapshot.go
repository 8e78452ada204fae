/**
 * @description
 * In-memory store for the user snapshot. The snapshot is always replaced
 * wholesale, never partially mutated, so readers cannot observe a torn state.
 * Each refresh attempt takes a generation number; a completion older than the
 * newest installed snapshot is discarded (latest wins), which keeps a slow
 * stale fetch from clobbering a fresher one.
 */

package app

import (
	"sync"

	"github.com/sbf/dashboard-service/internal/domain"
)

// SnapshotStore holds the latest user snapshot and its generation bookkeeping.
type SnapshotStore struct {
	mu        sync.RWMutex
	user      *domain.User
	installed uint64
	issued    uint64
	stale     bool
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Begin issues the generation number for a refresh attempt.
func (s *SnapshotStore) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Install replaces the snapshot if gen is at least as new as the currently
// installed one. It reports whether the snapshot was accepted.
func (s *SnapshotStore) Install(gen uint64, user *domain.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.installed {
		return false
	}
	s.user = user
	s.installed = gen
	s.stale = false
	return true
}

// Current returns the installed snapshot, if any.
func (s *SnapshotStore) Current() (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.user != nil
}

// MarkStale flags the snapshot as needing a refetch (balances changed
// server-side). The stale snapshot remains readable until replaced.
func (s *SnapshotStore) MarkStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = true
}

// Stale reports whether the snapshot has been invalidated since it was
// installed.
func (s *SnapshotStore) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}
