package session

import (
	"sync"

	"github.com/barruu/console/internal/core/domain"
)

// MemStore keeps the session in memory. It backs tests and any deployment
// that deliberately does not want a credential on disk.
type MemStore struct {
	mu   sync.Mutex
	sess domain.Session
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Get returns a copy of the current session.
func (s *MemStore) Get() (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sess
	return &sess, nil
}

// SetAuth persists token and user together.
func (s *MemStore) SetAuth(token string, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = domain.Session{Token: token, User: user}
	return nil
}

// SetUser replaces the cached user, preserving the token.
func (s *MemStore) SetUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.User = user
	return nil
}

// Clear wipes the session.
func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = domain.Session{}
	return nil
}
