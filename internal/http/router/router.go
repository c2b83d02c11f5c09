package router

import (
	"context"
	"net/http"
	"time"

	"snapfeed/internal/accounts"
	"snapfeed/internal/feed"
	"snapfeed/internal/http/handlers"
	"snapfeed/internal/security"
	"snapfeed/internal/storage"
	"snapfeed/internal/web"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps is everything the HTTP surface needs.
type Deps struct {
	DB             Pinger
	Accounts       *accounts.Service
	Feed           *feed.Service
	Sessions       *security.SessionManager
	Intake         *storage.Disk
	Views          *web.Renderer
	MaxUploadBytes int64
	AllowedOrigins []string
}

func Setup(d Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(handlers.LogRequests)

	authHandler := handlers.NewAuthHandler(d.Accounts, d.Sessions, d.Views)
	feedHandler := handlers.NewFeedHandler(d.Feed, d.Sessions, d.Intake, d.Views, d.MaxUploadBytes)
	gate := handlers.RequireUser(d.Sessions, d.Views)

	r.Handle("/", http.RedirectHandler("/feed", http.StatusFound)).Methods("GET")
	r.HandleFunc("/feed", feedHandler.Feed).Methods("GET")
	r.Handle("/dashboard", gate(http.HandlerFunc(feedHandler.Dashboard))).Methods("GET")
	r.Handle("/upload", gate(http.HandlerFunc(feedHandler.Upload))).Methods("POST")

	r.HandleFunc("/login", authHandler.LoginForm).Methods("GET")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/register", authHandler.RegisterForm).Methods("GET")
	r.HandleFunc("/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/logout", authHandler.Logout).Methods("GET")

	r.HandleFunc("/healthz", health(d.DB)).Methods("GET")

	prefix := d.Intake.PublicPrefix()
	r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, noDirListing(http.FileServer(http.Dir(d.Intake.Dir()))))).Methods("GET")

	if len(d.AllowedOrigins) == 0 {
		return r
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}
}

// noDirListing hides the upload directory index.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
