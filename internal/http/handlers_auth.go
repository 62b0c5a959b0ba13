package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
	"github.com/target/gatekeeper/internal/service"
)

const (
	stateCookieName    = "oauth_state"
	nonceCookieName    = "oauth_nonce"
	redirectCookieName = "post_login_redirect"
	flowCookieMaxAge   = 10 * time.Minute
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers serves the /auth/* login flow.
// Session events (and with them the authorization gate trigger) are published by the service.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	// LogoutURL, when set, is where the browser goes after the local session ends.
	LogoutURL string
	Logger    *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles GET /auth/login?redirect_uri=<path>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "login_failed", Err: err})
		return
	}

	jar := h.cookies(w, r)
	jar.set(stateCookieName, result.State, flowCookieMaxAge)
	jar.set(nonceCookieName, result.Nonce, flowCookieMaxAge)
	jar.set(redirectCookieName, redirectURI, flowCookieMaxAge)

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code, state := q.Get("code"), q.Get("state")

	switch {
	case code == "":
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_code", Err: errors.New("authorization code is required")})
		return
	case state == "":
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_state", Err: errors.New("state parameter is required")})
		return
	}

	if c, err := r.Cookie(stateCookieName); err != nil || c.Value != state {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_state", Err: errors.New("invalid or missing state parameter")})
		return
	}
	nonce, err := r.Cookie(nonceCookieName)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_nonce", Err: errors.New("missing nonce parameter")})
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{Code: code, State: state, Nonce: nonce.Value})
	if err != nil {
		h.logger().WarnContext(r.Context(), "complete login failed", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "login_completion_failed", Err: err})
		return
	}

	jar := h.cookies(w, r)
	jar.set(sessionCookieName, result.Session.ID, time.Until(result.Session.ExpiresAt))
	jar.clear(stateCookieName)
	jar.clear(nonceCookieName)

	redirectURI := "/"
	if c, err := r.Cookie(redirectCookieName); err == nil {
		redirectURI = safeRedirectPath(c.Value)
		jar.clear(redirectCookieName)
	}
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// Logout handles POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		if logoutErr := h.Svc.Logout(r.Context(), c.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	h.cookies(w, r).clear(sessionCookieName)

	target := "/"
	if h.LogoutURL != "" {
		target = h.LogoutURL
	}

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "success", "redirect_to": target})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Status handles GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	session := sessionFor(r, h.Svc)
	if session == nil {
		if _, err := r.Cookie(sessionCookieName); err == nil {
			h.cookies(w, r).clear(sessionCookieName)
		}
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":         session.UserID,
			"first_name": session.FirstName,
			"last_name":  session.LastName,
			"email":      session.Email,
			"role":       session.Role,
		},
		"expires_at": session.ExpiresAt,
	})
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		IsHTMX(r) ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// cookieJar writes HttpOnly, Lax cookies scoped to the configured domain.
type cookieJar struct {
	w      http.ResponseWriter
	domain string
	secure bool
}

func (h *AuthHandlers) cookies(w http.ResponseWriter, r *http.Request) cookieJar {
	return cookieJar{
		w:      w,
		domain: h.CookieDomain,
		secure: r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https"),
	}
}

func (j cookieJar) set(name, value string, maxAge time.Duration) {
	http.SetCookie(j.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   j.domain,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
}

func (j cookieJar) clear(name string) {
	http.SetCookie(j.w, &http.Cookie{
		Name:     name,
		Path:     "/",
		Domain:   j.domain,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

// safeRedirectPath returns candidate when it is a same-origin path, otherwise "/".
func safeRedirectPath(candidate string) string {
	if candidate == "" || strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, `/\`) {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
