package httpx

import (
	"context"
	"net/http"

	"github.com/target/gatekeeper/internal/observability/metrics"
	"github.com/target/gatekeeper/internal/observability/statsd"
)

// responseNavigator implements ports.Navigator for the request being served:
// navigating writes a redirect to the response. Navigating to the page the
// browser is already on is a no-op, so the home page never redirects to itself.
type responseNavigator struct {
	w          http.ResponseWriter
	r          *http.Request
	metrics    statsd.Sink
	redirected bool
}

func newResponseNavigator(w http.ResponseWriter, r *http.Request, sink statsd.Sink) *responseNavigator {
	return &responseNavigator{w: w, r: r, metrics: sink}
}

func (n *responseNavigator) Navigate(_ context.Context, path string) error {
	if n.redirected || path == currentPath(n.r) {
		return nil
	}
	n.redirected = true
	metrics.EmitRedirect(n.metrics, "response")

	if IsHTMX(n.r) {
		SetHXRedirect(n.w, path)
		n.w.WriteHeader(http.StatusOK)
		return nil
	}
	http.Redirect(n.w, n.r, path, http.StatusSeeOther)
	return nil
}

// Redirected reports whether Navigate wrote a redirect.
func (n *responseNavigator) Redirected() bool { return n.redirected }
