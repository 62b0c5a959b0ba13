package service

import (
	"context"
	"fmt"
	"log/slog"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
	domainauth "github.com/target/gatekeeper/internal/domain/auth"
	"github.com/target/gatekeeper/internal/observability/metrics"
	"github.com/target/gatekeeper/internal/observability/statsd"
	"github.com/target/gatekeeper/internal/ports"
)

// GateTrigger starts a gate evaluation without waiting for it.
type GateTrigger interface {
	Trigger(ctx context.Context, id *domainaccess.Identity, nav ports.Navigator)
}

// SessionWatcherOptions groups dependencies for SessionWatcher.
type SessionWatcherOptions struct {
	Gate     GateTrigger
	Pending  ports.PendingRedirectStore
	Verdicts *VerdictCache
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// SessionWatcher re-runs the authorization gate whenever the signed-in identity changes.
type SessionWatcher struct {
	gate     GateTrigger
	pending  ports.PendingRedirectStore
	verdicts *VerdictCache
	metrics  statsd.Sink
	logger   *slog.Logger
}

var _ ports.SessionListener = (*SessionWatcher)(nil)

// NewSessionWatcher constructs a new SessionWatcher.
func NewSessionWatcher(opts SessionWatcherOptions) *SessionWatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionWatcher{
		gate:     opts.Gate,
		pending:  opts.Pending,
		verdicts: opts.Verdicts,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

// OnSessionEvent implements ports.SessionListener.
func (w *SessionWatcher) OnSessionEvent(ctx context.Context, ev domainauth.SessionEvent) {
	switch ev.Kind {
	case domainauth.SessionSignedIn:
		id := domainaccess.IdentityFromSession(&ev.Session)
		if id == nil {
			return
		}
		// A new identity invalidates whatever the previous one left behind.
		w.verdicts.Forget(id.SessionID)
		w.gate.Trigger(ctx, id, w.navigatorFor(id.SessionID))
	case domainauth.SessionSignedOut:
		w.verdicts.Forget(ev.Session.ID)
		if w.pending == nil || ev.Session.ID == "" {
			return
		}
		if err := w.pending.Clear(ctx, ev.Session.ID); err != nil {
			w.logger.WarnContext(ctx, "clear pending redirect", "session_id", ev.Session.ID, "error", err)
		}
	}
}

func (w *SessionWatcher) navigatorFor(sessionID string) ports.Navigator {
	if w.pending == nil {
		return nil
	}
	return &SessionNavigator{SessionID: sessionID, Pending: w.pending, Metrics: w.metrics}
}

// SessionNavigator navigates a session that has no request in flight by parking
// the target until the session's next request.
type SessionNavigator struct {
	SessionID string
	Pending   ports.PendingRedirectStore
	Metrics   statsd.Sink
}

var _ ports.Navigator = (*SessionNavigator)(nil)

// Navigate implements ports.Navigator.
func (n *SessionNavigator) Navigate(ctx context.Context, path string) error {
	if err := n.Pending.Set(ctx, n.SessionID, path); err != nil {
		return fmt.Errorf("park redirect: %w", err)
	}
	metrics.EmitRedirect(n.Metrics, "pending")
	return nil
}
