// Package ports defines the interfaces (hexagonal ports) between the gate's
// services and their backends. Implementations live in internal/adapters and
// internal/data; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore persists and retrieves user sessions.
// Get returns an error for unknown or expired ids.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// SessionListener is notified when a session starts or ends. Listeners run on the
// request goroutine and must not block; the gate's listener only triggers a check.
type SessionListener interface {
	OnSessionEvent(ctx context.Context, ev domainauth.SessionEvent)
}

// SessionListenerFunc adapts a function to SessionListener.
type SessionListenerFunc func(ctx context.Context, ev domainauth.SessionEvent)

// OnSessionEvent calls f(ctx, ev).
func (f SessionListenerFunc) OnSessionEvent(ctx context.Context, ev domainauth.SessionEvent) {
	f(ctx, ev)
}
