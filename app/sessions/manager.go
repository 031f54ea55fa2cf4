package sessions

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultCookieName is the cookie carrying the session id.
const DefaultCookieName = "sessionid"

// Manager binds sessions to requests through a cookie.
type Manager struct {
	store  Store
	logger *slog.Logger

	CookieName string
	Secure     bool
	TTL        time.Duration
}

// NewManager returns a manager with the default cookie name and TTL.
func NewManager(store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:      store,
		logger:     logger,
		CookieName: DefaultCookieName,
		TTL:        DefaultTTL,
	}
}

// Start loads the visitor's session or starts a new one. A new session gets its cookie
// immediately so that follow-up requests carry the id even if nothing is saved yet.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(m.CookieName); err == nil && c.Value != "" {
		sess, err := m.store.Load(r.Context(), c.Value)
		if err == nil {
			return sess
		}
		if !errors.Is(err, ErrSessionNotFound) {
			m.logger.Warn("session load failed, starting a new one", "error", err)
		}
	}

	sess := New(uuid.NewString())
	http.SetCookie(w, &http.Cookie{
		Name:     m.CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(m.TTL / time.Second),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// Save persists sess when it changed.
func (m *Manager) Save(ctx context.Context, sess *Session) error {
	if sess == nil || !sess.Dirty() {
		return nil
	}
	return m.store.Save(ctx, sess)
}

// Handler runs Start for every request and exposes the session through the context.
func (m *Manager) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.Start(w, r)
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
	})
}
