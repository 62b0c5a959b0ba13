// Package testutil provides testing utilities and helpers for the gatekeeper record stores.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"
	// Import pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/target/gatekeeper/internal/migrate"
)

// TestingTB is the subset of testing.TB the helpers need.
type TestingTB interface {
	Helper()
	Cleanup(func())
	Skip(args ...any)
	Skipf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

// TestDBConfig holds configuration for test database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig returns default test database configuration.
// Defaults to port 55432 (local test DB from docker-compose test profile).
// CI/CD environments should set TEST_DB_PORT=5432 explicitly.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     getEnvOrDefault("TEST_DB_HOST", "localhost"),
		Port:     getEnvOrDefault("TEST_DB_PORT", "55432"),
		User:     getEnvOrDefault("TEST_DB_USER", "gatekeeper"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "gatekeeper"),
		DBName:   getEnvOrDefault("TEST_DB_NAME", "gatekeeper"),
	}
}

// DSN renders the configuration as a postgres URL.
func (c TestDBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.User, c.Password, net.JoinHostPort(c.Host, c.Port), c.DBName)
}

// SetupTestDB opens the test database, applies migrations and empties access_records.
// The test is skipped when PostgreSQL is unreachable unless TEST_REQUIRE_DB is set.
func SetupTestDB(t TestingTB) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", DefaultTestDBConfig().DSN())
	if err != nil {
		skipOrFail(t, requireDB(), "Test database not available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		skipOrFail(t, requireDB(), "Test database not available (docker-compose up -d): %v", pingErr)
	}

	if _, migrateErr := migrate.Run(ctx, db, nil); migrateErr != nil {
		t.Fatal("Failed to run migrations:", migrateErr)
	}

	CleanupTestDB(t, db)
	t.Cleanup(func() {
		CleanupTestDB(t, db)
		if cerr := db.Close(); cerr != nil {
			t.Logf("test db close failed: %v", cerr)
		}
	})
	return db
}

// CleanupTestDB removes all authorization records.
func CleanupTestDB(t TestingTB, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "DELETE FROM access_records"); err != nil {
		t.Fatalf("Failed to clean up table access_records: %v", err)
	}
}

// SetupTestRedis returns a client for a real Redis when TEST_REDIS_ADDR is set,
// otherwise for an in-process miniredis server. Either way the database starts empty.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	if addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR")); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, DB: envInt("TEST_REDIS_DB", 15)})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			skipOrFail(t, requireRedis(), "Redis not available for testing at %s: %v", addr, err)
		}
		client.FlushDB(ctx)
		t.Cleanup(func() { _ = client.Close() })
		return client
	}

	client, _ := SetupMiniRedis(t)
	return client
}

// SetupMiniRedis starts an in-process Redis server and returns a client for it
// along with the server, which tests can use to fast-forward TTLs.
func SetupMiniRedis(t TestingTB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.NewMiniRedis()
	if err := srv.Start(); err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		srv.Close()
	})
	return client, srv
}

// SetupTestMongo returns a freshly named database on TEST_MONGO_URI that is dropped on cleanup.
// The test is skipped when the variable is unset or the server is unreachable.
func SetupTestMongo(t TestingTB) *mongo.Database {
	t.Helper()

	uri := strings.TrimSpace(os.Getenv("TEST_MONGO_URI"))
	if uri == "" {
		skipOrFail(t, requireMongo(), "TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		skipOrFail(t, requireMongo(), "MongoDB not available: %v", err)
	}
	if pingErr := client.Ping(ctx, nil); pingErr != nil {
		_ = client.Disconnect(context.Background())
		skipOrFail(t, requireMongo(), "MongoDB not available: %v", pingErr)
	}

	db := client.Database("gatekeeper_test_" + randomSuffix())
	t.Cleanup(func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer ccancel()
		if dropErr := db.Drop(cctx); dropErr != nil {
			t.Logf("drop test database: %v", dropErr)
		}
		_ = client.Disconnect(cctx)
	})
	return db
}

// FixedTimeFunc returns a clock that always reports t.
func FixedTimeFunc(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// TestTime returns a fixed, timezone-stable timestamp for tests.
func TestTime() time.Time {
	return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
}

// RunConcurrent runs fns at the same time and returns their errors in call order.
func RunConcurrent(fns ...func() error) []error {
	errs := make([]error, len(fns))
	start := make(chan struct{})
	done := make(chan int, len(fns))

	for i, fn := range fns {
		go func() {
			<-start
			errs[i] = fn()
			done <- i
		}()
	}
	close(start)
	for range fns {
		<-done
	}
	return errs
}

func skipOrFail(t TestingTB, required bool, format string, args ...any) {
	t.Helper()
	if required {
		t.Fatalf(format, args...)
	}
	t.Skipf(format, args...)
}

func randomSuffix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func requireDB() bool    { return envBool("TEST_REQUIRE_DB") || envBool("TEST_REQUIRE_INFRA") }
func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }
func requireMongo() bool { return envBool("TEST_REQUIRE_MONGO") || envBool("TEST_REQUIRE_INFRA") }
