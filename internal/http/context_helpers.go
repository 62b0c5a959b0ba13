package httpx

import (
	"context"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
	domainauth "github.com/target/gatekeeper/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the user session from context and a boolean indicating presence.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// GetSessionFromContext retrieves the session from the request context, or nil.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	s, _ := GetUserSessionFromContext(ctx)
	return s
}

// IsGuestUser reports whether the current request context is unauthenticated or a guest session.
func IsGuestUser(ctx context.Context) bool {
	s, ok := GetUserSessionFromContext(ctx)
	return !ok || s.IsGuest()
}

// GateIdentity returns the identity the authorization gate evaluates for ctx, or nil when signed out.
func GateIdentity(ctx context.Context) *domainaccess.Identity {
	return domainaccess.IdentityFromSession(GetSessionFromContext(ctx))
}
