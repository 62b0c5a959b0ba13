package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/samber/lo"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
	"github.com/target/gatekeeper/internal/observability/metrics"
	"github.com/target/gatekeeper/internal/observability/statsd"
)

// VerdictCache remembers sessions whose gate check came back allowed, so the
// request path can skip the record store until the entry expires.
// A nil *VerdictCache is valid and caches nothing.
type VerdictCache struct {
	entries *expirable.LRU[string, string] // session id -> record key
	key     domainaccess.KeyFunc
	metrics statsd.Sink
}

// NewVerdictCache returns a cache holding up to size sessions for ttl each,
// or nil when size is not positive.
func NewVerdictCache(size int, ttl time.Duration, key domainaccess.KeyFunc, sink statsd.Sink) *VerdictCache {
	if size <= 0 {
		return nil
	}
	if key == nil {
		key = domainaccess.RawKey
	}
	return &VerdictCache{
		entries: expirable.NewLRU[string, string](size, nil, ttl),
		key:     key,
		metrics: sink,
	}
}

// Allowed reports whether sessionID holds a live allowed verdict for email.
func (c *VerdictCache) Allowed(sessionID, email string) bool {
	if c == nil || sessionID == "" {
		return false
	}
	cached, ok := c.entries.Get(sessionID)
	hit := ok && cached == c.key(email)
	metrics.EmitVerdictCache(c.metrics, lo.Ternary(hit, metrics.CacheHit, metrics.CacheMiss))
	return hit
}

// Remember records an allowed verdict for sessionID.
func (c *VerdictCache) Remember(sessionID, email string) {
	if c == nil || sessionID == "" {
		return
	}
	c.entries.Add(sessionID, c.key(email))
}

// Forget drops the verdict for one session.
func (c *VerdictCache) Forget(sessionID string) {
	if c == nil {
		return
	}
	c.entries.Remove(sessionID)
}

// ForgetEmail drops every cached verdict for email and returns how many were removed.
func (c *VerdictCache) ForgetEmail(email string) int {
	if c == nil {
		return 0
	}
	target := c.key(email)
	removed := 0
	for _, sessionID := range c.entries.Keys() {
		if key, ok := c.entries.Peek(sessionID); ok && key == target {
			c.entries.Remove(sessionID)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries.
func (c *VerdictCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
