package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// AccessStore selects the backend that holds authorization records.
type AccessStore string

const (
	// AccessStoreMongo keeps records in a MongoDB collection.
	AccessStoreMongo AccessStore = "mongo"
	// AccessStorePostgres keeps records in the access_records table.
	AccessStorePostgres AccessStore = "postgres"
	// AccessStoreRedis keeps records as Redis hashes.
	AccessStoreRedis AccessStore = "redis"
	// AccessStoreMemory keeps records in process memory (development only).
	AccessStoreMemory AccessStore = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for AccessStore.
func (s *AccessStore) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch AccessStore(v) {
	case AccessStoreMongo, AccessStorePostgres, AccessStoreRedis, AccessStoreMemory:
		*s = AccessStore(v)
		return nil
	default:
		return fmt.Errorf("invalid AccessStore: %q (valid options: mongo, postgres, redis, memory)", v)
	}
}

// AccessConfig controls the post-login authorization gate.
type AccessConfig struct {
	// Store selects the record backend.
	Store AccessStore `env:"STORE" envDefault:"mongo"`

	// Collection names the collection (mongo) or key namespace (redis) holding records.
	Collection string `env:"COLLECTION" envDefault:"users"`

	// ExemptPaths lists page routes that bypass the gate when EnforceExemptions is set.
	ExemptPaths []string `env:"EXEMPT_PATHS" envDefault:"/,/sign-in,/sign-up,/privacy,/terms" envSeparator:","`

	// EnforceExemptions makes the gate skip ExemptPaths. Off by default: the gate runs on every page.
	EnforceExemptions bool `env:"ENFORCE_EXEMPTIONS" envDefault:"false"`

	// LowercaseKeys lowercases the email before using it as the record key.
	LowercaseKeys bool `env:"LOWERCASE_KEYS" envDefault:"false"`

	// CheckTimeout bounds a single gate evaluation.
	CheckTimeout time.Duration `env:"CHECK_TIMEOUT" envDefault:"5s"`

	// VerdictCacheSize is the number of sessions whose "allowed" verdict is cached. Zero disables the cache.
	VerdictCacheSize int `env:"VERDICT_CACHE_SIZE" envDefault:"10000"`

	// VerdictCacheTTL is how long an "allowed" verdict is trusted.
	VerdictCacheTTL time.Duration `env:"VERDICT_CACHE_TTL" envDefault:"1m"`

	// PendingRedirectTTL is how long a redirect decided by a background check waits for the next request.
	PendingRedirectTTL time.Duration `env:"PENDING_REDIRECT_TTL" envDefault:"10m"`

	// SlackWebhookURL is told about every record the gate creates. Empty disables notifications.
	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	SlackChannel    string `env:"SLACK_CHANNEL"`
}

// Sanitize applies guardrails to access configuration values.
func (c *AccessConfig) Sanitize() {
	if c.Store == "" {
		c.Store = AccessStoreMongo
	}
	if c.Collection = strings.TrimSpace(c.Collection); c.Collection == "" {
		c.Collection = "users"
	}

	c.ExemptPaths = lo.Uniq(lo.FilterMap(c.ExemptPaths, func(p string, _ int) (string, bool) {
		p = strings.TrimSpace(p)
		if p == "" {
			return "", false
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		return p, true
	}))

	if c.CheckTimeout <= 0 {
		c.CheckTimeout = 5 * time.Second
	}
	if c.VerdictCacheSize < 0 {
		c.VerdictCacheSize = 0
	}
	if c.VerdictCacheTTL <= 0 {
		c.VerdictCacheTTL = time.Minute
	}
	if c.PendingRedirectTTL <= 0 {
		c.PendingRedirectTTL = 10 * time.Minute
	}
	c.SlackWebhookURL = strings.TrimSpace(c.SlackWebhookURL)
	c.SlackChannel = strings.TrimSpace(c.SlackChannel)
}
