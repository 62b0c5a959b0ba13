package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/target/gatekeeper/config"
	"github.com/target/gatekeeper/internal/adapters/memory"
	mongostore "github.com/target/gatekeeper/internal/adapters/mongo"
	redisadapter "github.com/target/gatekeeper/internal/adapters/redis"
	"github.com/target/gatekeeper/internal/data"
	domainaccess "github.com/target/gatekeeper/internal/domain/access"
	httpx "github.com/target/gatekeeper/internal/http"
	"github.com/target/gatekeeper/internal/observability/notify"
	"github.com/target/gatekeeper/internal/observability/notify/slack"
	"github.com/target/gatekeeper/internal/observability/prom"
	"github.com/target/gatekeeper/internal/observability/statsd"
	"github.com/target/gatekeeper/internal/ports"
	"github.com/target/gatekeeper/internal/service"
)

// Infrastructure holds the connections the service runs on.
// Redis is always present (sessions); Postgres and Mongo only when they back the record store.
type Infrastructure struct {
	Redis    redis.UniversalClient
	Postgres *sql.DB
	Mongo    *mongostore.DB
}

// ConnectInfrastructure connects everything cfg needs and runs migrations when enabled.
func ConnectInfrastructure(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{}

	client, err := ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	infra.Redis = client

	if cfg.NeedsPostgres() {
		db, dbErr := ConnectPostgres(ctx, cfg.Postgres, logger)
		if dbErr != nil {
			return nil, errors.Join(fmt.Errorf("connect postgres: %w", dbErr), infra.Close(ctx))
		}
		infra.Postgres = db

		if cfg.Postgres.RunMigrationsOnStart {
			if migErr := RunMigrations(ctx, db, logger); migErr != nil {
				return nil, errors.Join(migErr, infra.Close(ctx))
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	}

	if cfg.NeedsMongo() {
		db, mongoErr := ConnectMongo(ctx, cfg.Mongo, logger)
		if mongoErr != nil {
			return nil, errors.Join(fmt.Errorf("connect mongo: %w", mongoErr), infra.Close(ctx))
		}
		infra.Mongo = db
	}

	return infra, nil
}

// Close releases every open connection.
func (i *Infrastructure) Close(ctx context.Context) error {
	if i == nil {
		return nil
	}
	var errs []error
	if i.Mongo != nil {
		if err := i.Mongo.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close mongo: %w", err))
		}
	}
	if i.Postgres != nil {
		if err := i.Postgres.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close postgres: %w", err))
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Pingers reports the connections /readyz checks.
func (i *Infrastructure) Pingers() map[string]httpx.Pinger {
	deps := make(map[string]httpx.Pinger)
	if i == nil {
		return deps
	}
	if i.Redis != nil {
		deps["redis"] = httpx.PingFunc(func(ctx context.Context) error { return i.Redis.Ping(ctx).Err() })
	}
	if i.Postgres != nil {
		deps["postgres"] = httpx.PingFunc(i.Postgres.PingContext)
	}
	if i.Mongo != nil {
		deps["mongo"] = httpx.PingFunc(i.Mongo.Ping)
	}
	return deps
}

// BuildRecordStore selects the authorization record backend.
//
//nolint:ireturn // the backend is a runtime choice.
func BuildRecordStore(cfg config.AccessConfig, infra *Infrastructure) (ports.RecordStore, error) {
	switch cfg.Store {
	case config.AccessStoreMongo:
		if infra == nil || infra.Mongo == nil {
			return nil, errors.New("record store: mongo is not connected")
		}
		return mongostore.NewRecordStore(infra.Mongo.Database, cfg.Collection), nil
	case config.AccessStorePostgres:
		if infra == nil || infra.Postgres == nil {
			return nil, errors.New("record store: postgres is not connected")
		}
		return data.NewAccessRecordRepo(infra.Postgres), nil
	case config.AccessStoreRedis:
		if infra == nil || infra.Redis == nil {
			return nil, errors.New("record store: redis is not connected")
		}
		return redisadapter.NewRecordStore(infra.Redis, cfg.Collection), nil
	case config.AccessStoreMemory:
		return memory.NewRecordStore(), nil
	default:
		return nil, fmt.Errorf("record store: unsupported backend %q", cfg.Store)
	}
}

// BuildPendingRedirects keeps redirects decided outside a request in Redis,
// so any replica can apply them, falling back to process memory.
//
//nolint:ireturn // the backend is a runtime choice.
func BuildPendingRedirects(cfg config.AccessConfig, client redis.UniversalClient) ports.PendingRedirectStore {
	if client != nil {
		return redisadapter.NewPendingRedirectStore(client, cfg.PendingRedirectTTL)
	}
	return memory.NewPendingRedirectStore(cfg.PendingRedirectTTL)
}

// BuildNotifier returns the Slack sink for new access requests, or nil when no webhook is configured.
//
//nolint:ireturn // nil means notifications are off.
func BuildNotifier(cfg *config.AppConfig, logger *slog.Logger) notify.Sink {
	if cfg.Access.SlackWebhookURL == "" {
		return nil
	}
	client, err := slack.NewClient(slack.Config{
		WebhookURL:     cfg.Access.SlackWebhookURL,
		Channel:        cfg.Access.SlackChannel,
		RetryLimit:     2,
		AdminURLPrefix: strings.TrimRight(cfg.HTTP.BaseURL, "/") + "/api/access",
	})
	if err != nil {
		logger.Error("failed to initialise slack notifier", "error", err)
		return nil
	}
	logger.Info("access request notifications enabled", "channel", cfg.Access.SlackChannel)
	return client
}

// Observability groups the metrics sink and its optional scrape handler.
type Observability struct {
	Sink    statsd.Sink
	Handler http.Handler
	close   func() error
}

// Close flushes and releases the sink.
func (o Observability) Close() error {
	if o.close == nil {
		return nil
	}
	return o.close()
}

// BuildObservability configures the metrics backend. Disabled metrics yield a nil sink.
func BuildObservability(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) Observability {
	if !cfg.IsEnabled() {
		return Observability{}
	}

	switch cfg.Backend {
	case config.MetricsBackendPrometheus:
		sink := prom.NewSink(prom.Config{Namespace: "gatekeeper", Logger: logger, WithRuntime: true})
		logger.Info("prometheus metrics enabled", "path", "/metrics")
		return Observability{Sink: sink, Handler: sink.Handler()}
	default:
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.StatsdAddress,
			Prefix:  "gatekeeper",
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to initialise statsd client", "error", err)
			return Observability{}
		}
		return Observability{Sink: client, close: client.Close}
	}
}

// ServiceContainer holds the application services.
type ServiceContainer struct {
	Auth          *AuthBundle
	Access        *service.AccessService
	Gate          *service.AuthorizationGate
	Verdicts      *service.VerdictCache
	Pending       ports.PendingRedirectStore
	Watcher       *service.SessionWatcher
	Observability Observability
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	Infra  *Infrastructure
	Logger *slog.Logger
}

// NewServices wires the record store, the gate and its session watcher, and the auth service.
func NewServices(deps ServiceDeps) (ServiceContainer, error) {
	if deps.Config == nil {
		return ServiceContainer{}, errors.New("services: config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var redisClient redis.UniversalClient
	if deps.Infra != nil {
		redisClient = deps.Infra.Redis
	}

	obs := BuildObservability(cfg.Observability.Metrics, logger)

	records, err := BuildRecordStore(cfg.Access, deps.Infra)
	if err != nil {
		return ServiceContainer{}, err
	}
	key := domainaccess.KeyFuncFor(cfg.Access.LowercaseKeys)
	verdicts := service.NewVerdictCache(cfg.Access.VerdictCacheSize, cfg.Access.VerdictCacheTTL, key, obs.Sink)
	pending := BuildPendingRedirects(cfg.Access, redisClient)

	gate := service.NewAuthorizationGate(service.GateOptions{
		Records:  records,
		Key:      key,
		Timeout:  cfg.Access.CheckTimeout,
		Metrics:  obs.Sink,
		Notifier: BuildNotifier(cfg, logger),
		Logger:   logger.With("component", "authorization_gate"),
	})
	watcher := service.NewSessionWatcher(service.SessionWatcherOptions{
		Gate:     gate,
		Pending:  pending,
		Verdicts: verdicts,
		Metrics:  obs.Sink,
		Logger:   logger,
	})

	auth, err := BuildAuthService(AuthConfig{
		Auth:        cfg.Auth,
		RedisClient: redisClient,
		Listeners:   []ports.SessionListener{watcher},
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, errors.Join(err, obs.Close())
	}

	access := service.NewAccessService(service.AccessServiceOptions{
		Records:  records,
		Key:      key,
		Verdicts: verdicts,
		Logger:   logger.With("component", "access_admin"),
	})

	logger.Info("authorization gate configured",
		"store", cfg.Access.Store,
		"collection", cfg.Access.Collection,
		"lowercase_keys", cfg.Access.LowercaseKeys,
		"enforce_exemptions", cfg.Access.EnforceExemptions,
		"verdict_cache_size", cfg.Access.VerdictCacheSize,
	)

	return ServiceContainer{
		Auth:          auth,
		Access:        access,
		Gate:          gate,
		Verdicts:      verdicts,
		Pending:       pending,
		Watcher:       watcher,
		Observability: obs,
	}, nil
}
