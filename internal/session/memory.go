package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a mutex-guarded map.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
}

func NewMemoryStore(ttl time.Duration, opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		ttl:      normalizeTTL(ttl),
		now:      o.now,
		sessions: make(map[string]*Session),
	}
}

func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok || expired(s.CreatedAt, m.now(), m.ttl) {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) TakeOnce(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.sessions, id)
	if expired(s.CreatedAt, m.now(), m.ttl) {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) SweepExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if expired(s.CreatedAt, now, m.ttl) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Count reports the number of stored sessions, expired or not.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}
