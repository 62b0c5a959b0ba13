package config

import (
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "oauth")
	t.Setenv("ADMIN_GROUP", "cn=admins,ou=groups,dc=example,dc=org")
	t.Setenv("USER_GROUP", "cn=users,ou=groups,dc=example,dc=org")
	t.Setenv("OAUTH_CLIENT_ID", "app-client")
	t.Setenv("OAUTH_CLIENT_SECRET", "super-secret")
	t.Setenv("OAUTH_REDIRECT_URL", "https://app.example.com/auth/callback")
	t.Setenv("OAUTH_DISCOVERY_URL", "https://login.example.com/.well-known/openid-configuration")
	t.Setenv("OAUTH_SCOPE", "openid profile email")
	t.Setenv("DEV_AUTH_USER_ID", "dev-user")
	t.Setenv("DEV_AUTH_EMAIL", "dev@example.com")
	t.Setenv("DEV_AUTH_GROUPS", "admins;devs")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode: AuthModeOAuth,
		OAuth: OAuthConfig{
			ClientID:     "app-client",
			ClientSecret: "super-secret",
			RedirectURL:  "https://app.example.com/auth/callback",
			Scope:        "openid profile email",
			DiscoveryURL: "https://login.example.com/.well-known/openid-configuration",
		},
		DevAuth: DevAuthConfig{
			UserID: "dev-user",
			Email:  "dev@example.com",
			Groups: []string{"admins", "devs"},
		},
		AdminGroup: "cn=admins,ou=groups,dc=example,dc=org",
		UserGroup:  "cn=users,ou=groups,dc=example,dc=org",
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestAppConfig_InvalidAuthMode(t *testing.T) {
	t.Setenv("AUTH_MODE", "saml")

	var cfg AppConfig
	if err := env.Parse(&cfg); err == nil {
		t.Fatalf("expected error for invalid auth mode")
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	oauth := AuthConfig{
		Mode:  AuthModeOAuth,
		OAuth: OAuthConfig{DiscoveryURL: "https://idp.example.com", Scope: "openid profile email"},
	}
	mock := AuthConfig{Mode: AuthModeMock, DevAuth: DevAuthConfig{Email: "dev@example.com"}}

	tests := []struct {
		name    string
		cfg     AuthConfig
		isDev   bool
		wantErr string
	}{
		{name: "oauth", cfg: oauth},
		{name: "mock in dev", cfg: mock, isDev: true},
		{name: "mock outside dev", cfg: mock, wantErr: "AUTH_MODE=mock"},
		{
			name:    "mock with bad email",
			cfg:     AuthConfig{Mode: AuthModeMock, DevAuth: DevAuthConfig{Email: "dev"}},
			isDev:   true,
			wantErr: "DEV_AUTH_EMAIL",
		},
		{
			name:    "oauth without discovery",
			cfg:     AuthConfig{Mode: AuthModeOAuth, OAuth: OAuthConfig{Scope: "openid"}},
			wantErr: "OAUTH_DISCOVERY_URL",
		},
		{
			name:    "oauth without openid",
			cfg:     AuthConfig{Mode: AuthModeOAuth, OAuth: OAuthConfig{DiscoveryURL: "https://idp.example.com", Scope: "email"}},
			wantErr: "OAUTH_SCOPE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(tt.isDev)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestOAuthConfig_HasScope(t *testing.T) {
	cfg := OAuthConfig{Scope: "openid  profile\temail"}
	for _, scope := range []string{"openid", "profile", "email"} {
		if !cfg.HasScope(scope) {
			t.Errorf("expected scope %q", scope)
		}
	}
	if cfg.HasScope("groups") || cfg.HasScope("open") {
		t.Errorf("unexpected scope match")
	}
}

func TestAppConfig_AccessDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Access.Store != AccessStoreMongo {
		t.Errorf("expected default store mongo, got %q", cfg.Access.Store)
	}
	if cfg.Access.Collection != "users" {
		t.Errorf("expected default collection users, got %q", cfg.Access.Collection)
	}
	if cfg.Access.EnforceExemptions {
		t.Errorf("expected exemptions to be off by default")
	}
	want := []string{"/", "/sign-in", "/sign-up", "/privacy", "/terms"}
	if !reflect.DeepEqual(cfg.Access.ExemptPaths, want) {
		t.Errorf("unexpected exempt paths: %#v", cfg.Access.ExemptPaths)
	}
	if cfg.Access.CheckTimeout != 5*time.Second {
		t.Errorf("unexpected check timeout: %v", cfg.Access.CheckTimeout)
	}
	if !cfg.NeedsMongo() || cfg.NeedsPostgres() {
		t.Errorf("expected mongo to be the only required store")
	}
	if cfg.HTTP.Title != "Gatekeeper" {
		t.Errorf("unexpected title: %q", cfg.HTTP.Title)
	}
}

func TestAppConfig_ParseAccessEnv(t *testing.T) {
	t.Setenv("ACCESS_STORE", "Postgres")
	t.Setenv("ACCESS_EXEMPT_PATHS", " /, privacy ,,/terms,/")
	t.Setenv("ACCESS_ENFORCE_EXEMPTIONS", "true")
	t.Setenv("ACCESS_LOWERCASE_KEYS", "true")
	t.Setenv("ACCESS_VERDICT_CACHE_TTL", "30s")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Access.Store != AccessStorePostgres {
		t.Errorf("expected postgres store, got %q", cfg.Access.Store)
	}
	if !cfg.NeedsPostgres() {
		t.Errorf("expected postgres to be required")
	}
	want := []string{"/", "/privacy", "/terms"}
	if !reflect.DeepEqual(cfg.Access.ExemptPaths, want) {
		t.Errorf("unexpected exempt paths: %#v", cfg.Access.ExemptPaths)
	}
	if !cfg.Access.EnforceExemptions || !cfg.Access.LowercaseKeys {
		t.Errorf("expected boolean flags to be parsed")
	}
	if cfg.Access.VerdictCacheTTL != 30*time.Second {
		t.Errorf("unexpected verdict cache ttl: %v", cfg.Access.VerdictCacheTTL)
	}
}

func TestAppConfig_InvalidAccessStore(t *testing.T) {
	t.Setenv("ACCESS_STORE", "dynamo")

	var cfg AppConfig
	if err := env.Parse(&cfg); err == nil {
		t.Fatalf("expected error for invalid access store")
	}
}

func TestAccessConfig_Sanitize(t *testing.T) {
	cfg := AccessConfig{
		Collection:         " ",
		CheckTimeout:       -1,
		VerdictCacheSize:   -5,
		VerdictCacheTTL:    0,
		PendingRedirectTTL: 0,
	}

	cfg.Sanitize()

	if cfg.Store != AccessStoreMongo {
		t.Errorf("expected store to default to mongo, got %q", cfg.Store)
	}
	if cfg.Collection != "users" {
		t.Errorf("expected collection to default to users, got %q", cfg.Collection)
	}
	if cfg.CheckTimeout != 5*time.Second {
		t.Errorf("unexpected check timeout: %v", cfg.CheckTimeout)
	}
	if cfg.VerdictCacheSize != 0 {
		t.Errorf("expected negative cache size to clamp to 0, got %d", cfg.VerdictCacheSize)
	}
	if cfg.VerdictCacheTTL != time.Minute {
		t.Errorf("unexpected verdict cache ttl: %v", cfg.VerdictCacheTTL)
	}
	if cfg.PendingRedirectTTL != 10*time.Minute {
		t.Errorf("unexpected pending redirect ttl: %v", cfg.PendingRedirectTTL)
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	cfg := HTTPConfig{CompressionLevel: 42, Title: "  "}
	cfg.Sanitize()

	if cfg.CompressionLevel != 9 {
		t.Errorf("expected compression level clamp to 9, got %d", cfg.CompressionLevel)
	}
	if cfg.Title != "Gatekeeper" {
		t.Errorf("expected default title, got %q", cfg.Title)
	}

	cfg = HTTPConfig{CompressionLevel: 0, Title: "Acme"}
	cfg.Sanitize()
	if cfg.CompressionLevel != 1 {
		t.Errorf("expected compression level clamp to 1, got %d", cfg.CompressionLevel)
	}
	if cfg.Title != "Acme" {
		t.Errorf("expected title to be kept, got %q", cfg.Title)
	}
}

func TestMongoConfig_Sanitize(t *testing.T) {
	cfg := MongoConfig{URI: " mongodb://db:27017 ", Database: "", Timeout: 0}
	cfg.Sanitize()

	if cfg.URI != "mongodb://db:27017" {
		t.Errorf("expected uri to be trimmed, got %q", cfg.URI)
	}
	if cfg.Database != "gatekeeper" {
		t.Errorf("expected default database, got %q", cfg.Database)
	}
	if cfg.MaxPoolSize != 20 {
		t.Errorf("expected default pool size, got %d", cfg.MaxPoolSize)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
	if cfg.Backend != MetricsBackendStatsd {
		t.Fatalf("expected statsd backend by default, got %q", cfg.Backend)
	}

	cfg = ObservabilityMetricsConfig{
		Enabled: true,
		Backend: " Prometheus ",
	}

	cfg.Sanitize()

	if cfg.Backend != MetricsBackendPrometheus {
		t.Fatalf("expected prometheus backend, got %q", cfg.Backend)
	}
	if !cfg.IsEnabled() {
		t.Fatalf("expected prometheus metrics to be enabled without a statsd address")
	}
}

func TestObservabilityConfig_SlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for input, want := range tests {
		cfg := ObservabilityConfig{LogLevel: input}
		cfg.Sanitize()
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
