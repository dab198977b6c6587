// Package cache provides the view session stores: an in-memory store for
// single-instance deployments and a Redis store shared between instances.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/coupang-catalog/backend/internal/domain/view"
	"github.com/google/uuid"
)

// DefaultSessionTTL is used when a store is created without a TTL
const DefaultSessionTTL = 24 * time.Hour

type sessionEntry struct {
	session   view.Session
	expiresAt time.Time
}

// InMemorySessionStore keeps sessions in a map. Each Save extends the TTL.
type InMemorySessionStore struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]sessionEntry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySessionStore creates a store and starts its cleanup goroutine
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	store := &InMemorySessionStore{
		entries:  make(map[uuid.UUID]sessionEntry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop(cleanupInterval(ttl))

	return store
}

// Save stores s and resets its expiry
func (s *InMemorySessionStore) Save(ctx context.Context, session view.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[session.ID] = sessionEntry{
		session:   session,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Get returns a live session
func (s *InMemorySessionStore) Get(ctx context.Context, id uuid.UUID) (view.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expiresAt) {
		return view.Session{}, view.ErrSessionNotFound
	}
	return e.session, nil
}

// Delete removes a session
func (s *InMemorySessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return view.ErrSessionNotFound
	}
	delete(s.entries, id)
	if !s.now().Before(e.expiresAt) {
		return view.ErrSessionNotFound
	}
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemorySessionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored entries, expired ones included
func (s *InMemorySessionStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemorySessionStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemorySessionStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval > 5*time.Minute {
		return 5 * time.Minute
	}
	if interval < time.Second {
		return time.Second
	}
	return interval
}

var _ view.SessionStore = (*InMemorySessionStore)(nil)
