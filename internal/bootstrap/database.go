package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/gatekeeper/config"
	mongostore "github.com/target/gatekeeper/internal/adapters/mongo"
	"github.com/target/gatekeeper/internal/migrate"
)

const connectTimeout = 5 * time.Second

// PostgresDSN builds the pgx connection string, escaping credentials.
func PostgresDSN(cfg config.DBConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnectPostgres opens the pgx pool behind database/sql and verifies it.
func ConnectPostgres(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", PostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if pingErr := db.PingContext(pingCtx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close database connection: %w", closeErr))
		}
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	if logger != nil {
		logger.InfoContext(ctx, "database connected",
			"host", cfg.Host,
			"port", cfg.Port,
			"database", cfg.Name,
		)
	}
	return db, nil
}

// RunMigrations applies the embedded SQL migrations.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	applied, err := migrate.Run(ctx, db, logger)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed", "applied", applied)
	}
	return nil
}

// ConnectMongo dials MongoDB and selects the configured database.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig, logger *slog.Logger) (*mongostore.DB, error) {
	db, err := mongostore.Connect(ctx, mongostore.ConnectOptions{
		URI:         cfg.URI,
		Database:    cfg.Database,
		MaxPoolSize: cfg.MaxPoolSize,
		Timeout:     cfg.Timeout,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// ConnectRedis builds a direct, sentinel or cluster client and verifies it.
//
//nolint:ireturn // returning redis.UniversalClient lets us pick single, sentinel, or cluster clients at runtime.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	client, addrDesc, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.InfoContext(ctx, "redis connected", "addr", redactRedisAddr(addrDesc))
	}
	return client, nil
}

//nolint:ireturn // client flavour is a runtime choice.
func newRedisClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	switch {
	case cfg.UseCluster:
		return newClusterClient(cfg)
	case cfg.UseSentinel:
		return newSentinelClient(cfg)
	default:
		return newDirectClient(cfg)
	}
}

//nolint:ireturn // client flavour is a runtime choice.
func newClusterClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	opts := &redis.ClusterOptions{
		Addrs:    normalizeAddrs(cfg.ClusterNodes),
		Password: cfg.Password,
	}

	if len(opts.Addrs) == 0 {
		seed, err := clusterSeedFromURI(cfg.URI, cfg.Password)
		if err != nil {
			return nil, "", err
		}
		if seed.addr != "" {
			opts.Addrs = []string{seed.addr}
			opts.Username = seed.username
			opts.Password = seed.password
			opts.TLSConfig = seed.tls
		}
	}

	if len(opts.Addrs) == 0 {
		return nil, "", errors.New("redis cluster configuration requires at least one address")
	}
	return redis.NewClusterClient(opts), "cluster:" + strings.Join(opts.Addrs, ","), nil
}

//nolint:ireturn // client flavour is a runtime choice.
func newSentinelClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	nodes := normalizeAddrs(cfg.SentinelNodes)
	if len(nodes) == 0 {
		return nil, "", errors.New("redis sentinel configuration requires at least one sentinel node")
	}

	client := redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:       cfg.SentinelMasterName,
		SentinelAddrs:    nodes,
		Password:         cfg.Password,
		SentinelPassword: cfg.SentinelPassword,
	})
	return client, "sentinel:" + cfg.SentinelMasterName, nil
}

//nolint:ireturn // client flavour is a runtime choice.
func newDirectClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, "", errors.New("redis direct configuration requires a URI")
	}

	if isRedisURL(uri) {
		opt, err := redis.ParseURL(uri)
		if err != nil {
			return nil, "", fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), uri, nil
	}
	return redis.NewClient(&redis.Options{Addr: uri, Password: cfg.Password}), uri, nil
}

func normalizeAddrs(raw []string) []string {
	result := make([]string, 0, len(raw))
	for _, addr := range raw {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

type clusterSeed struct {
	addr     string
	username string
	password string
	tls      *tls.Config
}

// clusterSeedFromURI lets REDIS_URI name a single cluster node when REDIS_CLUSTER_NODES is empty.
func clusterSeedFromURI(uri, defaultPassword string) (clusterSeed, error) {
	seed := clusterSeed{password: defaultPassword}
	trimmed := strings.TrimSpace(uri)
	if trimmed == "" {
		return seed, nil
	}
	if !isRedisURL(trimmed) {
		seed.addr = trimmed
		return seed, nil
	}

	opt, err := redis.ParseURL(trimmed)
	if err != nil {
		return seed, fmt.Errorf("parse redis cluster url: %w", err)
	}
	seed.addr = opt.Addr
	seed.username = opt.Username
	seed.tls = opt.TLSConfig
	if opt.Password != "" {
		seed.password = opt.Password
	}
	return seed, nil
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}

// redactRedisAddr strips credentials from a connection description before logging.
func redactRedisAddr(addr string) string {
	if u, err := url.Parse(addr); err == nil && u.User != nil {
		u.User = url.User("*")
		return u.Redacted()
	}
	if i := strings.LastIndex(addr, "@"); i > -1 {
		return addr[i+1:]
	}
	return addr
}
