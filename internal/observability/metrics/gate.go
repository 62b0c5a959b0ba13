package metrics

import (
	"time"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
	obserrors "github.com/target/gatekeeper/internal/observability/errors"
	"github.com/target/gatekeeper/internal/observability/statsd"
)

// Metric names emitted by the authorization gate.
const (
	GateCheck        = "gate.check"
	GateCheckLatency = "gate.check.duration"
	GateRedirect     = "gate.redirect"
	GateVerdictCache = "gate.verdict_cache"
)

// Cache lookup results for GateVerdictCache.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// GateMetric captures a single gate evaluation for metric emission.
type GateMetric struct {
	Outcome  domainaccess.Outcome
	Mode     string // "sync" (request path) or "detached" (session watcher)
	Duration time.Duration
	Err      error
}

// EmitGateCheck emits the per-outcome counter and latency for one gate evaluation.
func EmitGateCheck(sink statsd.Sink, in GateMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"outcome": string(in.Outcome),
		"mode":    in.Mode,
	}
	sink.Count(GateCheck, 1, tags)

	if in.Duration > 0 {
		sink.Timing(GateCheckLatency, in.Duration, CloneTags(tags))
	}

	if in.Err != nil {
		sink.Count("gate.error", 1, map[string]string{"error_class": obserrors.Classify(in.Err)})
	}
}

// EmitRedirect counts a redirect to path issued by the given navigator kind.
func EmitRedirect(sink statsd.Sink, navigator string) {
	if sink == nil {
		return
	}
	sink.Count(GateRedirect, 1, map[string]string{"navigator": navigator})
}

// EmitVerdictCache counts a verdict cache lookup.
func EmitVerdictCache(sink statsd.Sink, result string) {
	if sink == nil {
		return
	}
	sink.Count(GateVerdictCache, 1, map[string]string{"result": result})
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
