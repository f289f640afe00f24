package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/user"
)

type sessionStore struct {
	mutex    sync.RWMutex
	sessions map[string]user.Session
}

func NewSessionStore() user.SessionStore {
	return &sessionStore{sessions: make(map[string]user.Session)}
}

func (s *sessionStore) SaveSession(_ context.Context, sess user.Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *sessionStore) GetSession(_ context.Context, id string) (user.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	return user.Session{}, core.ErrNotFound
}

func (s *sessionStore) DeleteSession(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.sessions, id)
	return nil
}
