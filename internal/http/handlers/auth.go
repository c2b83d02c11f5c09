package handlers

import (
	"errors"
	"net/http"

	"snapfeed/internal/accounts"
	"snapfeed/internal/security"
	"snapfeed/internal/web"

	"github.com/charmbracelet/log"
)

type AuthHandler struct {
	accounts *accounts.Service
	sessions *security.SessionManager
	views    *web.Renderer
}

func NewAuthHandler(accounts *accounts.Service, sessions *security.SessionManager, views *web.Renderer) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
		views:    views,
	}
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, web.PageLogin, web.PageData{Title: "Log in"})
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, web.PageRegister, web.PageData{Title: "Register"})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.views.Message(w, http.StatusBadRequest, "Invalid request.", "/register", "Try again")
		return
	}

	username := r.PostFormValue("username")
	user, err := h.accounts.Register(r.Context(), username, r.PostFormValue("password"))
	switch {
	case errors.Is(err, accounts.ErrInvalidCredentials):
		h.views.Message(w, http.StatusBadRequest, "Username and password required.", "/register", "Try again")
		return
	case errors.Is(err, accounts.ErrDuplicateUsername):
		h.views.Message(w, http.StatusConflict, "Username already taken.", "/register", "Try again")
		return
	case err != nil:
		serverError(w, h.views, "failed to register user", err)
		return
	}

	log.Info("user registered", "user", user.Username, "id", user.ID)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.views.Message(w, http.StatusBadRequest, "Invalid request.", "/login", "Try again")
		return
	}

	identity, err := h.accounts.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	switch {
	case errors.Is(err, accounts.ErrUserNotFound):
		h.views.Message(w, http.StatusUnauthorized, "User not found.", "/login", "Try again")
		return
	case errors.Is(err, accounts.ErrWrongPassword):
		h.views.Message(w, http.StatusUnauthorized, "Incorrect password.", "/login", "Try again")
		return
	case err != nil:
		serverError(w, h.views, "failed to look up user", err)
		return
	}

	if _, err := h.sessions.Begin(w, r, *identity); err != nil {
		serverError(w, h.views, "failed to create session", err)
		return
	}

	log.Info("user logged in", "user", identity.Username)
	http.Redirect(w, r, "/feed", http.StatusFound)
}

// Logout always ends up on the login page, whether or not there was a
// session to destroy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(w, r); err != nil {
		log.Error("failed to destroy session", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}
