package memory

import (
	"context"
	"sync"
	"time"
)

type pendingRedirect struct {
	path    string
	expires time.Time
}

// PendingRedirectStore keeps parked redirects in memory until taken or expired.
type PendingRedirectStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]pendingRedirect
}

// NewPendingRedirectStore creates a store whose entries expire after ttl (never when ttl <= 0).
func NewPendingRedirectStore(ttl time.Duration) *PendingRedirectStore {
	return &PendingRedirectStore{ttl: ttl, now: time.Now, entries: make(map[string]pendingRedirect)}
}

func (s *PendingRedirectStore) Set(_ context.Context, sessionID, path string) error {
	entry := pendingRedirect{path: path}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.entries[sessionID] = entry
	return nil
}

func (s *PendingRedirectStore) Take(_ context.Context, sessionID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return "", false, nil
	}
	delete(s.entries, sessionID)
	if s.expired(entry) {
		return "", false, nil
	}
	return entry.path, true, nil
}

func (s *PendingRedirectStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

// Len reports the number of parked redirects, including expired ones not yet swept.
func (s *PendingRedirectStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *PendingRedirectStore) expired(e pendingRedirect) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}

func (s *PendingRedirectStore) sweepLocked() {
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
		}
	}
}
