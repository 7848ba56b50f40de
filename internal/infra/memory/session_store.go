package memory

import (
	"context"
	"sync"

	"totem-quiz-bot/internal/domain"
)

// SessionStore keeps per-user session contexts in process memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionKey]domain.SessionContext
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionKey]domain.SessionContext),
	}
}

// Load returns the stored context or a fresh one keyed by key.
func (s *SessionStore) Load(_ context.Context, key domain.SessionKey) (domain.SessionContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sc, ok := s.sessions[key]; ok {
		return sc, nil
	}
	return domain.SessionContext{Key: key}, nil
}

func (s *SessionStore) Save(_ context.Context, sc domain.SessionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sc.Key] = sc
	return nil
}

func (s *SessionStore) Delete(_ context.Context, key domain.SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

// Len reports how many contexts are held.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
