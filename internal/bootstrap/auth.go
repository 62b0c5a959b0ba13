package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/gatekeeper/config"
	"github.com/target/gatekeeper/internal/adapters/authroles"
	"github.com/target/gatekeeper/internal/adapters/devauth"
	"github.com/target/gatekeeper/internal/adapters/oidc"
	redisadapter "github.com/target/gatekeeper/internal/adapters/redis"
	"github.com/target/gatekeeper/internal/ports"
	"github.com/target/gatekeeper/internal/service"
)

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Listeners   []ports.SessionListener
	Logger      *slog.Logger
}

// AuthBundle is the auth service plus what the HTTP layer needs to know about its provider.
type AuthBundle struct {
	Service *service.AuthService
	// LogoutURL is the identity provider end-session endpoint; empty for dev auth.
	LogoutURL string
}

// BuildAuthService creates the auth service for the configured mode.
// Sessions always live in Redis.
func BuildAuthService(cfg AuthConfig) (*AuthBundle, error) {
	if cfg.RedisClient == nil {
		return nil, errors.New("auth: redis client is required for the session store")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessions := redisadapter.NewSessionStore(cfg.RedisClient)
	roles := authroles.StaticRoleMapper{
		AdminGroup: cfg.Auth.AdminGroup,
		UserGroup:  cfg.Auth.UserGroup,
	}

	var (
		provider  ports.AuthProvider
		logoutURL string
	)
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID: cfg.Auth.DevAuth.UserID,
			Email:  cfg.Auth.DevAuth.Email,
			Groups: cfg.Auth.DevAuth.Groups,
		})
		if err != nil {
			return nil, fmt.Errorf("dev auth provider: %w", err)
		}
		logger.Warn("dev auth enabled; every login signs in as the configured identity",
			"email", cfg.Auth.DevAuth.Email)
		provider = prov

	case config.AuthModeOAuth:
		oauth := cfg.Auth.OAuth
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
			LogoutURL:    oauth.LogoutURL,
		})
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		provider = prov
		logoutURL = prov.LogoutURL()

	default:
		return nil, fmt.Errorf("auth: unsupported mode %q", cfg.Auth.Mode)
	}

	return &AuthBundle{
		Service: service.NewAuthService(service.AuthServiceOptions{
			Provider:  provider,
			Sessions:  sessions,
			Roles:     roles,
			Listeners: cfg.Listeners,
		}),
		LogoutURL: logoutURL,
	}, nil
}
