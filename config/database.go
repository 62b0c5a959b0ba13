package config

import (
	"strings"
	"time"
)

// DBConfig contains PostgreSQL database configuration.
// Only used when ACCESS_STORE=postgres.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"gatekeeper"`
	Password string `env:"PASSWORD"                envDefault:"gatekeeper"`
	Name     string `env:"NAME"                    envDefault:"gatekeeper"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelPort       string   `env:"SENTINEL_PORT"        envDefault:"26379"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// MongoConfig contains MongoDB configuration.
// Only used when ACCESS_STORE=mongo.
type MongoConfig struct {
	URI         string        `env:"URI"           envDefault:"mongodb://localhost:27017"`
	Database    string        `env:"DATABASE"      envDefault:"gatekeeper"`
	MaxPoolSize uint64        `env:"MAX_POOL_SIZE" envDefault:"20"`
	Timeout     time.Duration `env:"TIMEOUT"       envDefault:"10s"`
}

// Sanitize applies guardrails to MongoDB configuration values.
func (m *MongoConfig) Sanitize() {
	m.URI = strings.TrimSpace(m.URI)
	m.Database = strings.TrimSpace(m.Database)
	if m.Database == "" {
		m.Database = "gatekeeper"
	}
	if m.MaxPoolSize == 0 {
		m.MaxPoolSize = 20
	}
	if m.Timeout <= 0 {
		m.Timeout = 10 * time.Second
	}
}
