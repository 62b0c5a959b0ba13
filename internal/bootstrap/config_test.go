package bootstrap

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/gatekeeper/config"
)

func validConfig() config.AppConfig {
	return config.AppConfig{
		Auth: config.AuthConfig{
			Mode:  config.AuthModeOAuth,
			OAuth: config.OAuthConfig{DiscoveryURL: "https://idp.example.com", Scope: "openid email"},
		},
		Mongo: config.MongoConfig{URI: "mongodb://localhost:27017"},
		Access: config.AccessConfig{
			Store:       config.AccessStoreMongo,
			ExemptPaths: []string{"/", "/privacy"},
		},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.AppConfig)
		wantErr string
	}{
		{name: "valid"},
		{
			name:    "mongo without uri",
			mutate:  func(c *config.AppConfig) { c.Mongo.URI = "" },
			wantErr: "MONGO_URI",
		},
		{
			name:    "memory store outside dev",
			mutate:  func(c *config.AppConfig) { c.Access.Store = config.AccessStoreMemory },
			wantErr: "ACCESS_STORE=memory",
		},
		{
			name: "memory store in dev",
			mutate: func(c *config.AppConfig) {
				c.IsDev = true
				c.Access.Store = config.AccessStoreMemory
			},
		},
		{
			name:    "mock auth outside dev",
			mutate:  func(c *config.AppConfig) { c.Auth.Mode = config.AuthModeMock },
			wantErr: "AUTH_MODE=mock",
		},
		{
			name:    "oauth without discovery",
			mutate:  func(c *config.AppConfig) { c.Auth.OAuth.DiscoveryURL = "" },
			wantErr: "OAUTH_DISCOVERY_URL",
		},
		{
			name:    "oauth without openid scope",
			mutate:  func(c *config.AppConfig) { c.Auth.OAuth.Scope = "profile email" },
			wantErr: "OAUTH_SCOPE",
		},
		{
			name:    "exempt path with host",
			mutate:  func(c *config.AppConfig) { c.Access.ExemptPaths = []string{"https://example.com/"} },
			wantErr: "not a plain path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := ValidateConfig(&cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	require.Error(t, ValidateConfig(nil))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ACCESS_STORE", "redis")
	t.Setenv("ACCESS_EXEMPT_PATHS", "/, privacy ,")
	t.Setenv("OBSERVABILITY_LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.AccessStoreRedis, cfg.Access.Store)
	assert.Equal(t, []string{"/", "/privacy"}, cfg.Access.ExemptPaths)
	assert.Equal(t, "users", cfg.Access.Collection)
	assert.Equal(t, slog.LevelDebug, cfg.Observability.SlogLevel())
}

func TestSetLogLevel(t *testing.T) {
	logger := InitLogger()
	t.Cleanup(func() { SetLogLevel(slog.LevelInfo) })

	SetLogLevel(slog.LevelWarn)

	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
}
