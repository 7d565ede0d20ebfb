package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Session es el estado server-side de un cliente (cookie vetclinic_sid).
// DiagnosisAccessCode vacío = no pedido o expirado.
type Session struct {
	ID                  string    `json:"id"`
	DiagnosisAccessCode string    `json:"diagnosisAccessCode,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// Clone devuelve una copia para mutar sin tocar la sesión original.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Store persiste sesiones con TTL. Save sobreescribe.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext devuelve nil si el request no tiene sesión.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
