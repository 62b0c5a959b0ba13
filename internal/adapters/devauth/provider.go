// Package devauth signs every visitor in as one configured identity, for local development.
package devauth

import (
	"context"
	"crypto/rand"
	"errors"
	"net/url"
	"sync"
	"time"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
	"github.com/target/gatekeeper/internal/ports"
)

const defaultSessionDuration = 8 * time.Hour

// Config describes the identity the provider hands out.
type Config struct {
	UserID          string
	Email           string
	Groups          []string
	SessionDuration time.Duration
	// CallbackPath defaults to /auth/callback.
	CallbackPath string
}

// Provider implements ports.AuthProvider without an identity provider:
// Begin points straight back at the callback and Exchange returns the configured identity.
type Provider struct {
	mu       sync.Mutex
	identity domainauth.Identity
	duration time.Duration
	callback string
	now      func() time.Time
}

// NewProvider validates cfg and builds a provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = defaultSessionDuration
	}
	if cfg.CallbackPath == "" {
		cfg.CallbackPath = "/auth/callback"
	}
	return &Provider{
		identity: domainauth.Identity{
			UserID: cfg.UserID,
			Email:  cfg.Email,
			Groups: append([]string(nil), cfg.Groups...),
		},
		duration: cfg.SessionDuration,
		callback: cfg.CallbackPath,
		now:      time.Now,
	}, nil
}

func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, nonce := rand.Text(), rand.Text()
	q := url.Values{"code": {"dev"}, "state": {state}}
	return p.callback + "?" + q.Encode(), state, nonce, nil
}

// Exchange returns the configured identity with a fresh expiry.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.identity
	id.Groups = append([]string(nil), p.identity.Groups...)
	id.ExpiresAt = p.now().Add(p.duration)
	return id, nil
}
