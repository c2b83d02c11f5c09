package handlers

import (
	"net/http"
	"time"

	"snapfeed/internal/security"
	"snapfeed/internal/web"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// RequireUser is the gate for every handler that acts on behalf of a user.
// Anonymous requests are redirected to the login page before next runs;
// authenticated ones carry their identity in the request context.
func RequireUser(sessions *security.SessionManager, views *web.Renderer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := sessions.Current(r)
			if err != nil {
				serverError(w, views, "failed to resolve session", err)
				return
			}
			if identity == nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(security.WithIdentity(r.Context(), *identity)))
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

// LogRequests logs one line per request.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func serverError(w http.ResponseWriter, views *web.Renderer, msg string, err error) {
	log.Error(msg, "error", err)
	views.Message(w, http.StatusInternalServerError, "An error occurred.", "/feed", "Back to the feed")
}
