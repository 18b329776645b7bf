package router

import (
	"net/http"

	"Mansoor88-6/timesheet-portal/internal/handler"
	"Mansoor88-6/timesheet-portal/internal/models"
	"Mansoor88-6/timesheet-portal/internal/session"
	"Mansoor88-6/timesheet-portal/internal/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Access is who may reach a route.
type Access string

const (
	Public        Access = "public"
	Authenticated Access = "user"
	Admin         Access = "admin"
)

// Route is one entry of the portal's route table.
type Route struct {
	Name    string
	Method  string
	Path    string
	Access  Access
	handler http.HandlerFunc
}

func routes(h *handler.Handler) []Route {
	return []Route{
		{"health", http.MethodGet, "/health", Public, h.Health},
		{"login-form", http.MethodGet, "/auth", Public, h.LoginForm},
		{"login", http.MethodPost, "/auth", Public, h.Login},
		{"logout", http.MethodPost, "/auth/logout", Public, h.Logout},
		{"change-password", http.MethodPost, "/auth/password", Authenticated, h.ChangePassword},
		{"invitation", http.MethodGet, "/invitation/{token}", Public, h.Invitation},
		{"accept-invitation", http.MethodPost, "/invitation/{token}", Public, h.AcceptInvitation},

		{"dashboard", http.MethodGet, "/", Authenticated, h.Dashboard},
		{"timesheet", http.MethodGet, "/timesheet", Authenticated, h.Timesheet},
		{"expenses", http.MethodGet, "/expenses", Authenticated, h.Section("expenses")},
		{"trips", http.MethodGet, "/trips", Authenticated, h.Section("trips")},
		{"timeoff", http.MethodGet, "/timeoff", Authenticated, h.Section("timeoff")},
		{"sickleave", http.MethodGet, "/sickleave", Authenticated, h.Section("sickleave")},
		{"reports", http.MethodGet, "/reports", Authenticated, h.Reports},
		{"settings", http.MethodGet, "/settings", Authenticated, h.Section("settings")},
		{"admin", http.MethodGet, "/admin", Admin, h.Section("admin")},
	}
}

// Describe lists the route table without building a handler.
func Describe() []Route {
	return routes(nil)
}

type Options struct {
	// CSRFKey signs the CSRF cookie; 32 bytes.
	CSRFKey      []byte
	SecureCookie bool
}

// New builds the portal's HTTP handler. Every request, matched or not,
// passes through request logging, session loading and the CSRF check.
func New(h *handler.Handler, sessions *session.Manager, opts Options, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()

	r.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.FS(views.Static()))),
	).Methods(http.MethodGet, http.MethodHead)

	for _, rt := range routes(h) {
		var next http.Handler = rt.handler
		switch rt.Access {
		case Admin:
			next = Protected(RequireRole(models.RoleAdmin, http.HandlerFunc(h.Forbidden))(next))
		case Authenticated:
			next = Protected(next)
		}
		r.Handle(rt.Path, next).Methods(rt.Method).Name(rt.Name)
	}

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	protect := CSRF(opts.CSRFKey, opts.SecureCookie, http.HandlerFunc(h.InvalidForm))

	return Logging(logger)(RequestID(sessions.Middleware(protect(r))))
}
