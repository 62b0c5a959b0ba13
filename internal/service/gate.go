package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
	"github.com/target/gatekeeper/internal/observability/metrics"
	"github.com/target/gatekeeper/internal/observability/notify"
	"github.com/target/gatekeeper/internal/observability/statsd"
	"github.com/target/gatekeeper/internal/ports"
)

const (
	defaultCheckTimeout = 5 * time.Second
	notifyTimeout       = 10 * time.Second

	modeSync     = "sync"
	modeDetached = "detached"
)

// GateOptions groups dependencies for AuthorizationGate.
type GateOptions struct {
	Records ports.RecordStore
	// Key derives the record key from the primary email. Defaults to domainaccess.RawKey.
	Key domainaccess.KeyFunc
	// Timeout bounds a single evaluation. Defaults to 5s.
	Timeout time.Duration
	Metrics statsd.Sink
	// Notifier hears about records the gate creates. Optional.
	Notifier notify.Sink
	Logger   *slog.Logger
	Now      func() time.Time
}

// AuthorizationGate checks the signed-in user's authorization record and sends
// users without an authorized record back to the home page. Store failures fail open.
type AuthorizationGate struct {
	records  ports.RecordStore
	key      domainaccess.KeyFunc
	timeout  time.Duration
	metrics  statsd.Sink
	notifier notify.Sink
	logger   *slog.Logger
	now      func() time.Time

	inflight sync.WaitGroup
}

// NewAuthorizationGate constructs a new AuthorizationGate.
func NewAuthorizationGate(opts GateOptions) *AuthorizationGate {
	g := &AuthorizationGate{
		records:  opts.Records,
		key:      opts.Key,
		timeout:  opts.Timeout,
		metrics:  opts.Metrics,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if g.key == nil {
		g.key = domainaccess.RawKey
	}
	if g.timeout <= 0 {
		g.timeout = defaultCheckTimeout
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// Check evaluates the gate for identity and, when the user is not authorized,
// asks nav to go to the home page. It never returns an error: failures are logged
// and reported as OutcomeFailedOpen.
func (g *AuthorizationGate) Check(ctx context.Context, id *domainaccess.Identity, nav ports.Navigator) domainaccess.Outcome {
	return g.run(ctx, id, nav, modeSync)
}

// Trigger runs Check in its own goroutine and returns immediately.
// The check outlives ctx's cancellation but is still bounded by the gate timeout.
// Overlapping triggers are not sequenced.
func (g *AuthorizationGate) Trigger(ctx context.Context, id *domainaccess.Identity, nav ports.Navigator) {
	detached := context.WithoutCancel(ctx)
	g.inflight.Add(1)
	go func() {
		defer g.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				g.logger.ErrorContext(detached, "authorization check panicked", "panic", fmt.Sprint(r))
			}
		}()
		g.run(detached, id, nav, modeDetached)
	}()
}

// Wait blocks until all triggered checks finish or ctx is done.
func (g *AuthorizationGate) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *AuthorizationGate) run(ctx context.Context, id *domainaccess.Identity, nav ports.Navigator, mode string) domainaccess.Outcome {
	if id == nil || strings.TrimSpace(id.Email) == "" {
		metrics.EmitGateCheck(g.metrics, metrics.GateMetric{Outcome: domainaccess.OutcomeSkipped, Mode: mode})
		return domainaccess.OutcomeSkipped
	}

	start := g.now()
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	key := g.key(id.Email)
	outcome, err := g.evaluate(ctx, key)
	if err != nil {
		g.logger.ErrorContext(ctx, "authorization check failed open",
			"key", key,
			"session_id", id.SessionID,
			"mode", mode,
			"error", err,
		)
	}

	if outcome == domainaccess.OutcomeCreated {
		g.announce(ctx, id, key)
	}

	if outcome.Redirects() && nav != nil {
		if navErr := nav.Navigate(ctx, domainaccess.HomePath); navErr != nil {
			g.logger.ErrorContext(ctx, "authorization redirect failed",
				"key", key,
				"session_id", id.SessionID,
				"error", navErr,
			)
		}
	}

	elapsed := g.now().Sub(start)
	g.logger.DebugContext(ctx, "authorization check",
		"key", key,
		"session_id", id.SessionID,
		"mode", mode,
		"outcome", string(outcome),
		"duration", elapsed,
	)
	metrics.EmitGateCheck(g.metrics, metrics.GateMetric{Outcome: outcome, Mode: mode, Duration: elapsed, Err: err})
	return outcome
}

// announce tells the notifier about a newly created record without holding up the check.
func (g *AuthorizationGate) announce(ctx context.Context, id *domainaccess.Identity, key string) {
	if g.notifier == nil {
		return
	}
	payload := notify.AccessRequestPayload{Email: key, SessionID: id.SessionID, RequestedAt: g.now().UTC()}
	detached := context.WithoutCancel(ctx)
	g.inflight.Add(1)
	go func() {
		defer g.inflight.Done()
		ctx, cancel := context.WithTimeout(detached, notifyTimeout)
		defer cancel()
		if err := g.notifier.SendAccessRequest(ctx, payload); err != nil {
			g.logger.WarnContext(ctx, "access request notification failed", "key", key, "error", err)
		}
	}()
}

// evaluate reads the record at key and creates it unauthorized when absent.
// The read and the conditional write are not transactional; Put overwrites.
func (g *AuthorizationGate) evaluate(ctx context.Context, key string) (domainaccess.Outcome, error) {
	rec, found, err := g.records.Get(ctx, key)
	if err != nil {
		return domainaccess.OutcomeFailedOpen, fmt.Errorf("get record: %w", err)
	}

	if !found {
		now := g.now().UTC()
		if putErr := g.records.Put(ctx, key, domainaccess.Record{
			Email:      key,
			Authorized: false,
			CreatedAt:  now,
			UpdatedAt:  now,
		}); putErr != nil {
			return domainaccess.OutcomeFailedOpen, fmt.Errorf("create record: %w", putErr)
		}
		return domainaccess.OutcomeCreated, nil
	}

	if !rec.Authorized {
		return domainaccess.OutcomeDenied, nil
	}
	return domainaccess.OutcomeAllowed, nil
}
