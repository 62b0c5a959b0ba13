package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication configuration
//   - database.go: Redis, PostgreSQL and MongoDB configuration
//   - http.go: HTTP server configuration
//   - access.go: Authorization gate configuration
//   - observability.go: Metrics and logging configuration
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, dev auth defaults).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Storage configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Mongo    MongoConfig `envPrefix:"MONGO_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Authorization gate configuration
	Access AccessConfig `envPrefix:"ACCESS_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Mongo.Sanitize()
	c.Access.Sanitize()
	c.Observability.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// NeedsPostgres reports whether the selected record store requires a PostgreSQL connection.
func (c *AppConfig) NeedsPostgres() bool {
	return c.Access.Store == AccessStorePostgres
}

// NeedsMongo reports whether the selected record store requires a MongoDB connection.
func (c *AppConfig) NeedsMongo() bool {
	return c.Access.Store == AccessStoreMongo
}
