package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
)

const sessionCookieName = "session_id"

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			}
			if loc := ww.Header().Get("Location"); loc != "" && ww.status >= 300 && ww.status < 400 {
				attrs = append(attrs, slog.String("location", loc))
			}
			logger.LogAttrs(r.Context(), slog.LevelInfo, "http", attrs...)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *respWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests without a valid session with 401.
func RequireAuth(authSvc AuthServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessionFor(r, authSvc)
			if session == nil {
				writeAuthRequired(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
		})
	}
}

// RequireRole rejects requests whose session role is below requiredRole.
// Role hierarchy: Guest < User < Admin.
func RequireRole(authSvc AuthServiceInterface, requiredRole domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessionFor(r, authSvc)
			if session == nil {
				writeAuthRequired(w)
				return
			}
			if !hasRequiredRole(session.Role, requiredRole) {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
		})
	}
}

// OptionalAuth adds the session to the request context when one is present.
func OptionalAuth(authSvc AuthServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session := sessionFor(r, authSvc); session != nil {
				r = r.WithContext(SetSessionInContext(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthBrowser sends visitors without a session to the login flow,
// returning to the requested page afterwards.
func RequireAuthBrowser(authSvc AuthServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessionFor(r, authSvc)
			if session == nil {
				redirectToLogin(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
		})
	}
}

// sessionFor returns the session already resolved for this request, or looks it up from the cookie.
func sessionFor(r *http.Request, authSvc AuthServiceInterface) *domainauth.Session {
	if s, ok := GetUserSessionFromContext(r.Context()); ok {
		return s
	}
	if authSvc == nil {
		return nil
	}
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	session, err := authSvc.GetSession(r.Context(), c.Value)
	if err != nil {
		return nil
	}
	return session
}

func writeAuthRequired(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errors.New("authentication required"),
	})
}

var roleLevels = map[domainauth.Role]int{ //nolint:gochecknoglobals // read-only lookup
	domainauth.RoleGuest: 0,
	domainauth.RoleUser:  1,
	domainauth.RoleAdmin: 2,
}

func hasRequiredRole(userRole, requiredRole domainauth.Role) bool {
	have, ok := roleLevels[userRole]
	if !ok {
		return false
	}
	want, ok := roleLevels[requiredRole]
	return ok && have >= want
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	loginURL := "/auth/login?redirect_uri=" + url.QueryEscape(safeRedirectPath(r.URL.RequestURI()))
	if IsHTMX(r) {
		SetHXRedirect(w, loginURL)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}
