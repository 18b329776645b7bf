package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Mansoor88-6/timesheet-portal/internal/client"
	"Mansoor88-6/timesheet-portal/internal/device"
	"Mansoor88-6/timesheet-portal/internal/logger"
	"Mansoor88-6/timesheet-portal/internal/models"
	"Mansoor88-6/timesheet-portal/internal/service"
	"Mansoor88-6/timesheet-portal/internal/session"
	"Mansoor88-6/timesheet-portal/internal/views"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// AuthBackend is the part of the REST client behind the auth and
// invitation pages.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*client.LoginResult, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error
	GetInvitation(ctx context.Context, invitationToken string) (*models.Invitation, error)
	AcceptInvitation(ctx context.Context, invitationToken string, req models.AcceptInvitationRequest) (*client.LoginResult, error)
	HealthCheck(ctx context.Context) error
}

type Options struct {
	// SessionTTL applies when the backend token carries no expiry.
	SessionTTL   time.Duration
	SecureCookie bool
	// FlashKey signs the flash cookie.
	FlashKey []byte
}

// Handler serves the portal pages.
type Handler struct {
	auth      AuthBackend
	dashboard *service.DashboardService
	sessions  *session.Manager
	renderer  *views.Renderer
	flashes   *sessions.CookieStore
	opts      Options
	now       func() time.Time
	logger    *zap.Logger
}

func New(
	auth AuthBackend,
	dashboard *service.DashboardService,
	manager *session.Manager,
	renderer *views.Renderer,
	opts Options,
	log *zap.Logger,
) *Handler {
	return &Handler{
		auth:      auth,
		dashboard: dashboard,
		sessions:  manager,
		renderer:  renderer,
		flashes:   NewFlashStore(opts.FlashKey, opts.SecureCookie),
		opts:      opts,
		now:       time.Now,
		logger:    log,
	}
}

// log returns the handler's logger tagged with the request's ID.
func (h *Handler) log(r *http.Request) *zap.Logger {
	return logger.FromContext(r.Context(), h.logger)
}

func locale(r *http.Request) views.Locale {
	return views.MatchLocale(r.Header.Get("Accept-Language"))
}

// layout assembles the chrome for the current request. Pending toasts are
// consumed here.
func (h *Handler) layout(w http.ResponseWriter, r *http.Request, title string, loading bool) views.Layout {
	_, st := session.FromContext(r.Context())
	class := device.FromRequest(r)

	l := views.Layout{
		Title:               title,
		Lang:                locale(r).Lang(),
		CurrentPath:         r.URL.Path,
		User:                st.User,
		Nav:                 views.Navigation(r.URL.Path, st.User),
		Device:              class,
		ShowBottomNav:       device.ShowBottomNav(class),
		Toasts:              h.takeFlash(w, r),
		ForcePasswordChange: st.User != nil && st.MustChangePassword,
		CSRFToken:           csrf.Token(r),
	}
	if loading {
		l.RefreshAfter = 2
	}
	return l
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, content any, loading bool) {
	h.renderer.Render(w, status, name, views.Page{
		Layout:  h.layout(w, r, title, loading),
		Content: content,
	})
}

// endSession drops the session after the backend rejected its token and
// sends the visitor to the login page.
func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, st := session.FromContext(ctx)

	h.log(r).Info("Backend rejected session token",
		zap.String("user_id", st.Subject()),
		zap.String("path", r.URL.Path),
	)

	h.dashboard.Invalidate(ctx, st)
	if err := h.sessions.Commit(ctx, w, id, st.Logout()); err != nil {
		h.log(r).Error("Failed to end session", zap.Error(err))
	}
	h.setFlash(w, r, views.Toast{Kind: views.ToastInfo, Message: "Sessione scaduta, accedi di nuovo."})
	http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusFound)
}

// rejected reports whether any of errs is a backend auth failure.
func rejected(errs ...error) bool {
	for _, err := range errs {
		if client.IsAuthError(err) {
			return true
		}
	}
	return false
}

// logFetchErrors records read failures. The page still renders, with the
// failed widgets in their empty state.
func (h *Handler) logFetchErrors(r *http.Request, errs ...error) {
	for _, err := range errs {
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		h.log(r).Warn("Backend read failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

// LoginURL is the login page remembering where to go afterwards.
func LoginURL(next string) string {
	if next == "" || next == "/" {
		return "/auth"
	}
	return "/auth?next=" + url.QueryEscape(next)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || next[0] != '/' || len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return "/"
	}
	u, err := url.Parse(next)
	// Nothing under /auth is a page to land on
	if err != nil || u.IsAbs() || u.Host != "" || u.Path == "/auth" || strings.HasPrefix(u.Path, "/auth/") {
		return "/"
	}
	return next
}
