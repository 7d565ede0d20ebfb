package memory

import (
	"context"
	"sync"
	"time"

	"vet-clinic/internal/ports/session"
)

type sessionEntry struct {
	sess      session.Session
	expiresAt time.Time
}

// SessionStore es el store de sesiones para dev/tests. Las entradas vencidas
// se descartan al leerlas.
type SessionStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	byID map[string]sessionEntry
	now  func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:  ttl,
		byID: make(map[string]sessionEntry),
		now:  time.Now,
	}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	if s.ttl > 0 && !s.now().Before(e.expiresAt) {
		delete(s.byID, id)
		return nil, session.ErrNotFound
	}
	out := e.sess
	return &out, nil
}

// Save guarda una copia y renueva el TTL.
func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[sess.ID] = sessionEntry{sess: *sess, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byID, id)
	return nil
}
