package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"vet-clinic/internal/ports/session"

	"github.com/google/uuid"
)

const SessionCookieName = "vetclinic_sid"

type SessionOptions struct {
	TTL    time.Duration
	Secure bool
	Now    func() time.Time
}

// Session carga (o crea) la sesión server-side del cliente y la deja en el
// contexto. Si el store falla el request sigue sin sesión; cada handler decide.
func Session(store session.Store, opts SessionOptions) func(http.Handler) http.Handler {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := LoggerFrom(r.Context())

			var sess *session.Session
			if c, err := r.Cookie(SessionCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
				got, err := store.Get(r.Context(), c.Value)
				switch {
				case err == nil:
					sess = got
				case errors.Is(err, session.ErrNotFound):
				default:
					log.Warn("session load failed", map[string]any{"err": err.Error()})
					next.ServeHTTP(w, r)
					return
				}
			}

			if sess == nil {
				sess = &session.Session{ID: uuid.NewString(), CreatedAt: now()}
				if err := store.Save(r.Context(), sess); err != nil {
					log.Warn("session create failed", map[string]any{"err": err.Error()})
					next.ServeHTTP(w, r)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sess.ID,
					Path:     "/",
					MaxAge:   int(opts.TTL.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	}
}
