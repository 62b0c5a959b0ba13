package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
	"github.com/target/gatekeeper/internal/observability/statsd"
	"github.com/target/gatekeeper/internal/ports"
)

// GateChecker runs one authorization check for a signed-in identity.
type GateChecker interface {
	Check(ctx context.Context, id *domainaccess.Identity, nav ports.Navigator) domainaccess.Outcome
}

// VerdictCache remembers sessions recently found authorized.
type VerdictCache interface {
	Allowed(sessionID, email string) bool
	Remember(sessionID, email string)
}

// GateConfig configures the Gate middleware.
type GateConfig struct {
	Gate GateChecker
	// Pending holds redirects decided by detached checks; optional.
	Pending ports.PendingRedirectStore
	// Verdicts short-circuits repeat checks for authorized sessions; optional.
	Verdicts VerdictCache
	// ExemptPaths are only consulted when EnforceExemptions is set.
	ExemptPaths       []string
	EnforceExemptions bool
	Metrics           statsd.Sink
	Logger            *slog.Logger
}

// ungatedPrefixes never reach the gate: the API, assets, the login flow and infrastructure endpoints.
var ungatedPrefixes = []string{"/api/", "/static/", "/auth/"} //nolint:gochecknoglobals // read-only

var ungatedPaths = []string{"/healthz", "/readyz", "/metrics", "/favicon.ico"} //nolint:gochecknoglobals // read-only

// Gate sends signed-in users without an authorized record back to the home page.
// It expects the session to already be in the request context (see OptionalAuth);
// anonymous requests pass through untouched.
func Gate(cfg GateConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "gate_middleware")

	return func(next http.Handler) http.Handler {
		if cfg.Gate == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GateIdentity(r.Context())
			if id == nil || !cfg.gated(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// A parked redirect was decided against an older record; re-check before acting on it.
			recheck := cfg.takePending(r.Context(), logger, id)
			if !recheck && cfg.Verdicts != nil && cfg.Verdicts.Allowed(id.SessionID, id.Email) {
				next.ServeHTTP(w, r)
				return
			}

			nav := newResponseNavigator(w, r, cfg.Metrics)
			outcome := cfg.Gate.Check(r.Context(), id, nav)
			if outcome == domainaccess.OutcomeAllowed && cfg.Verdicts != nil {
				cfg.Verdicts.Remember(id.SessionID, id.Email)
			}
			if nav.Redirected() {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (cfg GateConfig) gated(path string) bool {
	if slices.Contains(ungatedPaths, path) {
		return false
	}
	for _, p := range ungatedPrefixes {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	if cfg.EnforceExemptions && slices.Contains(cfg.ExemptPaths, path) {
		return false
	}
	return true
}

// takePending consumes a redirect parked by a detached check and reports whether one was waiting.
func (cfg GateConfig) takePending(ctx context.Context, logger *slog.Logger, id *domainaccess.Identity) bool {
	if cfg.Pending == nil {
		return false
	}
	target, ok, err := cfg.Pending.Take(ctx, id.SessionID)
	if err != nil {
		logger.WarnContext(ctx, "pending redirect lookup failed", "error", err, "session_id", id.SessionID)
		return false
	}
	if ok {
		logger.DebugContext(ctx, "pending redirect found, rechecking", "session_id", id.SessionID, "target", target)
	}
	return ok
}
