package router

import (
	"net/http"
	"time"

	"Mansoor88-6/timesheet-portal/internal/handler"
	"Mansoor88-6/timesheet-portal/internal/logger"
	"Mansoor88-6/timesheet-portal/internal/models"
	"Mansoor88-6/timesheet-portal/internal/session"
	"Mansoor88-6/timesheet-portal/internal/views"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request ID back to the client.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request a fresh UUID, available to handlers
// through logger.FromContext.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

// CSRF rejects unsafe requests whose form token does not match the
// visitor's CSRF cookie, serving failure instead. Requests over plain HTTP
// skip the strict Referer check unless secure is set.
func CSRF(key []byte, secure bool, failure http.Handler) func(http.Handler) http.Handler {
	protect := csrf.Protect(key,
		csrf.CookieName("csrf"),
		csrf.FieldName(views.CSRFFieldName),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.Secure(secure),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(failure),
	)
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure && r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// Protected lets authenticated sessions through and redirects everyone
// else to the login page, keeping the requested path in next.
func Protected(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, st := session.FromContext(r.Context())
		if !st.Authenticated(time.Now()) {
			http.Redirect(w, r, handler.LoginURL(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole serves forbidden to sessions lacking role. It expects to run
// behind Protected.
func RequireRole(role models.Role, forbidden http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, st := session.FromContext(r.Context())
			if !st.HasRole(role) {
				forbidden.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging logs one line per request once it has been served.
func Logging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info("HTTP request",
				zap.String("request_id", w.Header().Get(RequestIDHeader)),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
