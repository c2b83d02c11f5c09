// Package web renders the HTML pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"snapfeed/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageFeed      = "feed"
	PageDashboard = "dashboard"
	PageLogin     = "login"
	PageRegister  = "register"
	PageMessage   = "message"
)

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true, ".svg": true,
}

// PageData is what every page template receives.
type PageData struct {
	Title    string
	User     *models.Identity
	Uploads  []models.Upload
	Message  string
	LinkHref string
	LinkText string
}

type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"ago": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return humanize.Time(t)
		},
		"isImage": func(ref string) bool {
			return imageExtensions[strings.ToLower(path.Ext(ref))]
		},
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	for _, page := range []string{PageFeed, PageDashboard, PageLogin, PageRegister, PageMessage} {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/uploads.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes page with the given status. The page is rendered into a
// buffer first so a template error never produces half a response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data PageData) {
	tmpl, ok := r.pages[page]
	if !ok {
		log.Error("unknown page", "page", page)
		http.Error(w, "An error occurred", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Error("failed to render page", "page", page, "error", err)
		http.Error(w, "An error occurred", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug("failed to write response", "page", page, "error", err)
	}
}

// Message renders a short inline notice with a single link, used for login
// and registration failures and for server errors.
func (r *Renderer) Message(w http.ResponseWriter, status int, text, linkHref, linkText string) {
	r.Render(w, status, PageMessage, PageData{
		Title:    http.StatusText(status),
		Message:  text,
		LinkHref: linkHref,
		LinkText: linkText,
	})
}
