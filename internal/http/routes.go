package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
	"github.com/target/gatekeeper/internal/observability/statsd"
	"github.com/target/gatekeeper/internal/ports"
)

// RouterServices holds everything the HTTP router serves or wraps.
type RouterServices struct {
	Auth   AuthServiceInterface
	Access AccessService

	// Authorization gate
	Gate              GateChecker
	Pending           ports.PendingRedirectStore
	Verdicts          VerdictCache
	ExemptPaths       []string
	EnforceExemptions bool

	Metrics        statsd.Sink
	MetricsHandler http.Handler      // mounted at /metrics when set
	Ready          map[string]Pinger // dependencies reported by /readyz

	CookieDomain string
	LogoutURL    string
	Title        string
	TemplateFS   fs.FS // layout.tmpl and pages/*.tmpl; pages are disabled when nil
	StaticFS     fs.FS // served under /static/ when set

	// Compression enables gzip responses when non-nil.
	Compression *CompressionConfig
	Logger      *slog.Logger
}

// pages served to every visitor; /app requires sign-in.
var publicPages = map[string]string{ //nolint:gochecknoglobals // read-only route table
	"/{$}":     "home",
	"/sign-in": "sign-in",
	"/sign-up": "sign-up",
	"/privacy": "privacy",
	"/terms":   "terms",
}

// NewRouter creates the HTTP handler: the route table wrapped as
// Recover → Logging → Compression → OptionalAuth → Gate.
func NewRouter(services RouterServices) (http.Handler, error) {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)
	if len(services.Ready) > 0 {
		mux.Handle("GET /readyz", readyHandler(services.Ready))
	}
	if services.MetricsHandler != nil {
		mux.Handle("GET /metrics", services.MetricsHandler)
	}
	if services.StaticFS != nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(services.StaticFS)))
	}

	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{
			Svc:          services.Auth,
			CookieDomain: services.CookieDomain,
			LogoutURL:    services.LogoutURL,
			Logger:       logger,
		})
	}
	if services.Access != nil {
		registerAccessRoutes(mux, &AccessHandlers{Svc: services.Access}, services.Auth)
	}

	var pages *PageHandlers
	if services.TemplateFS != nil {
		renderer, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: services.TemplateFS, Logger: logger})
		if err != nil {
			return nil, err
		}
		pages = &PageHandlers{Renderer: renderer, Title: services.Title, Logger: logger}
		registerPageRoutes(mux, pages, services.Auth)
	}

	var handler http.Handler = &notFoundHandler{mux: mux, pages: pages}
	handler = Gate(GateConfig{
		Gate:              services.Gate,
		Pending:           services.Pending,
		Verdicts:          services.Verdicts,
		ExemptPaths:       services.ExemptPaths,
		EnforceExemptions: services.EnforceExemptions,
		Metrics:           services.Metrics,
		Logger:            logger,
	})(handler)
	handler = OptionalAuth(services.Auth)(handler)
	if services.Compression != nil {
		handler = Compression(*services.Compression)(handler)
	}
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler, nil
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

func registerAccessRoutes(mux *http.ServeMux, h *AccessHandlers, auth AuthServiceInterface) {
	admin := RequireRole(auth, domainauth.RoleAdmin)
	mux.Handle("GET /api/access", admin(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/access/{email}", admin(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/access/{email}/grant", admin(http.HandlerFunc(h.Grant)))
	mux.Handle("PUT /api/access/{email}/revoke", admin(http.HandlerFunc(h.Revoke)))
}

func registerPageRoutes(mux *http.ServeMux, h *PageHandlers, auth AuthServiceInterface) {
	for pattern, name := range publicPages {
		mux.Handle("GET "+pattern, h.Page(name))
	}
	app := h.Page("app")
	if auth != nil {
		mux.Handle("GET /app", RequireAuthBrowser(auth)(app))
		return
	}
	mux.Handle("GET /app", app)
}

// notFoundHandler renders the not-found page for browser requests the mux cannot route.
type notFoundHandler struct {
	mux   *http.ServeMux
	pages *PageHandlers
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, pattern := h.mux.Handler(r)
	if pattern != "" || h.pages == nil || r.Method != http.MethodGet || !acceptsHTML(r) {
		h.mux.ServeHTTP(w, r)
		return
	}
	h.pages.NotFound(w, r)
}

func acceptsHTML(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html") || IsHTMX(r)
}
