package config

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
//
// The gate keys authorization records by the signed-in user's primary email:
// the ID token's "email" claim unless the provider marks it unverified, then the
// directory "mail" attribute, then "upn". Scope must therefore let the provider
// release at least one of them; a login without any is rejected.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"gatekeeper"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"gatekeeper"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing. Email is the record key
// every dev login is checked against.
type DevAuthConfig struct {
	UserID string   `env:"USER_ID" envDefault:"dev-user"`
	Email  string   `env:"EMAIL"   envDefault:"dev@example.com"`
	Groups []string `env:"GROUPS"  envDefault:"admins"          envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroup is the directory group granted the admin role (access administration).
	AdminGroup string `env:"ADMIN_GROUP" envDefault:"admins"`

	// UserGroup is the directory group granted the user role.
	UserGroup string `env:"USER_GROUP" envDefault:"users"`
}

// Validate reports mode-specific problems. Mock auth is refused outside development.
func (c AuthConfig) Validate(isDev bool) error {
	var errs []error
	switch c.Mode {
	case AuthModeMock:
		if !isDev {
			errs = append(errs, errors.New("AUTH_MODE=mock is only allowed in development"))
		}
		if _, err := mail.ParseAddress(c.DevAuth.Email); err != nil {
			errs = append(errs, fmt.Errorf("DEV_AUTH_EMAIL: %q is not an email address", c.DevAuth.Email))
		}
	case AuthModeOAuth:
		if c.OAuth.DiscoveryURL == "" {
			errs = append(errs, errors.New("OAUTH_DISCOVERY_URL is required when AUTH_MODE=oauth"))
		}
		if !c.OAuth.HasScope("openid") {
			errs = append(errs, errors.New("OAUTH_SCOPE must include openid"))
		}
	}
	return errors.Join(errs...)
}

// HasScope reports whether scope is among the space-separated OAuth scopes.
func (c OAuthConfig) HasScope(scope string) bool {
	for _, s := range strings.Fields(c.Scope) {
		if s == scope {
			return true
		}
	}
	return false
}
