package handlers

import (
	"errors"
	"net/http"

	"snapfeed/internal/feed"
	"snapfeed/internal/security"
	"snapfeed/internal/storage"
	"snapfeed/internal/web"

	"github.com/charmbracelet/log"
)

// multipart parts larger than this spill to temporary files
const maxFormMemory = 8 << 20

type FeedHandler struct {
	feed        *feed.Service
	sessions    *security.SessionManager
	intake      storage.Intake
	views       *web.Renderer
	maxFileSize int64
}

func NewFeedHandler(feed *feed.Service, sessions *security.SessionManager, intake storage.Intake, views *web.Renderer, maxFileSize int64) *FeedHandler {
	return &FeedHandler{
		feed:        feed,
		sessions:    sessions,
		intake:      intake,
		views:       views,
		maxFileSize: maxFileSize,
	}
}

// Feed is open to everyone. The session only decides whether the upload form
// is shown.
func (h *FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	identity, err := h.sessions.Current(r)
	if err != nil {
		log.Warn("failed to resolve session, rendering feed anonymously", "error", err)
	}

	uploads, err := h.feed.PublicFeed(r.Context())
	if err != nil {
		serverError(w, h.views, "failed to load public feed", err)
		return
	}

	h.views.Render(w, http.StatusOK, web.PageFeed, web.PageData{
		Title:   "Feed",
		User:    identity,
		Uploads: uploads,
	})
}

// Dashboard must sit behind RequireUser.
func (h *FeedHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := security.IdentityFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	uploads, err := h.feed.Dashboard(r.Context(), identity)
	if err != nil {
		serverError(w, h.views, "failed to load dashboard", err)
		return
	}

	h.views.Render(w, http.StatusOK, web.PageDashboard, web.PageData{
		Title:   "Dashboard",
		User:    &identity,
		Uploads: uploads,
	})
}

// Upload must sit behind RequireUser.
func (h *FeedHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := security.IdentityFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.views.Message(w, http.StatusRequestEntityTooLarge, "File too large.", "/dashboard", "Back")
			return
		}
		h.views.Message(w, http.StatusBadRequest, "Invalid upload.", "/dashboard", "Back")
		return
	}

	message := r.FormValue("message")
	isPublic := r.FormValue("is_public") == "true"

	var fileRef string
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		fileRef, err = h.intake.Save(file, header)
		if err != nil {
			serverError(w, h.views, "failed to store uploaded file", err)
			return
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// no file attached
	default:
		h.views.Message(w, http.StatusBadRequest, "Failed to get file.", "/dashboard", "Back")
		return
	}

	upload, err := h.feed.Create(r.Context(), identity, message, fileRef, isPublic)
	if err != nil {
		serverError(w, h.views, "failed to save upload", err)
		return
	}

	log.Info("upload created", "user", identity.Username, "id", upload.ID, "public", upload.IsPublic, "file", fileRef != "")
	http.Redirect(w, r, "/feed", http.StatusFound)
}
