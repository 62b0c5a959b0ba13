package httpx

import (
	"log/slog"
	"net/http"
	"net/url"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
)

// PageData is the view model shared by every page.
type PageData struct {
	Title       string
	Page        string
	CurrentPath string
	Session     *domainauth.Session
	// LoginURL carries the current path so the callback lands the user back here.
	LoginURL string
}

// SignedIn reports whether the page is rendered for a signed-in user.
func (d PageData) SignedIn() bool { return d.Session != nil }

// PageHandlers serves the server-rendered pages.
type PageHandlers struct {
	Renderer *TemplateRenderer
	Title    string
	Logger   *slog.Logger
}

// Page returns a handler rendering the named page.
func (h *PageHandlers) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, http.StatusOK, name)
	}
}

// NotFound renders the not-found page for unmatched browser requests.
func (h *PageHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "not-found")
}

func (h *PageHandlers) render(w http.ResponseWriter, r *http.Request, status int, name string) {
	data := PageData{
		Title:       h.Title,
		Page:        name,
		CurrentPath: r.URL.Path,
		Session:     GetSessionFromContext(r.Context()),
		LoginURL:    "/auth/login?redirect_uri=" + url.QueryEscape(safeRedirectPath(r.URL.RequestURI())),
	}

	var err error
	if IsHTMX(r) {
		err = h.Renderer.RenderPartial(w, status, data)
	} else {
		err = h.Renderer.RenderFull(w, status, data)
	}
	if err != nil {
		h.logger().ErrorContext(r.Context(), "render page failed", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *PageHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
