package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

type contextKey struct{}

type bound struct {
	id    string
	state State
}

// WithState attaches a session ID and state to ctx.
func WithState(ctx context.Context, id string, state State) context.Context {
	return context.WithValue(ctx, contextKey{}, bound{id: id, state: state})
}

// FromContext returns the session bound by Manager.Middleware. Requests
// without a session yield an empty ID and the anonymous state.
func FromContext(ctx context.Context) (string, State) {
	b, _ := ctx.Value(contextKey{}).(bound)
	return b.id, b.state
}

// Manager binds HTTP requests to stored session states through a cookie.
type Manager struct {
	store        Store
	cookieName   string
	secureCookie bool
	now          func() time.Time
	logger       *zap.Logger
}

func NewManager(store Store, cookieName string, secureCookie bool, logger *zap.Logger) *Manager {
	return &Manager{
		store:        store,
		cookieName:   cookieName,
		secureCookie: secureCookie,
		now:          time.Now,
		logger:       logger,
	}
}

// Load resolves the request's session. Unknown, expired or unreadable
// sessions resolve to the anonymous state.
func (m *Manager) Load(r *http.Request) (string, State) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return "", State{}
	}

	state, err := m.store.Get(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Error("Failed to load session", zap.Error(err))
		}
		return "", State{}
	}

	if !state.Authenticated(m.now()) {
		return cookie.Value, State{}
	}

	return cookie.Value, state
}

// Middleware loads the session into the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, state := m.Load(r)
		next.ServeHTTP(w, r.WithContext(WithState(r.Context(), id, state)))
	})
}

// Start stores state under a fresh session ID, dropping oldID, and sets
// the cookie. Used on login so a pre-login ID is never reused.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, oldID string, state State) (string, error) {
	if oldID != "" {
		if err := m.store.Delete(ctx, oldID); err != nil {
			m.logger.Warn("Failed to drop previous session", zap.Error(err))
		}
	}

	id := uuid.NewString()
	if err := m.store.Save(ctx, id, state); err != nil {
		return "", err
	}
	m.setCookie(w, id, state.ExpiresAt)

	m.logger.Info("Session started",
		zap.String("user_id", state.Subject()),
		zap.Time("expires_at", state.ExpiresAt),
	)
	return id, nil
}

// Commit persists a transition of the session identified by id. An
// anonymous state ends the session and expires the cookie.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, id string, state State) error {
	if state.User == nil {
		if id != "" {
			if err := m.store.Delete(ctx, id); err != nil {
				return err
			}
		}
		m.clearCookie(w)
		return nil
	}

	if id == "" {
		_, err := m.Start(ctx, w, "", state)
		return err
	}

	return m.store.Save(ctx, id, state)
}

func (m *Manager) cookieOptions(maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// setCookie issues the session cookie, living as long as the session when
// an expiry is known and for the browser session otherwise.
func (m *Manager) setCookie(w http.ResponseWriter, id string, expiresAt time.Time) {
	maxAge := 0
	if !expiresAt.IsZero() {
		maxAge = int(expiresAt.Sub(m.now()).Seconds())
		if maxAge <= 0 {
			maxAge = -1
		}
	}
	http.SetCookie(w, sessions.NewCookie(m.cookieName, id, m.cookieOptions(maxAge)))
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, sessions.NewCookie(m.cookieName, "", m.cookieOptions(-1)))
}
