package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/target/gatekeeper/config"
)

//nolint:gochecknoglobals // process-wide level shared by the default logger
var logLevel = new(slog.LevelVar)

// InitLogger initializes the structured logger. The level starts at info;
// call SetLogLevel once configuration is loaded.
func InitLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// SetLogLevel changes the level of loggers created by InitLogger.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// ValidateConfig rejects configurations the service cannot start with.
func ValidateConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("config is required")
	}

	var errs []error
	switch cfg.Access.Store {
	case config.AccessStoreMongo:
		if cfg.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when ACCESS_STORE=mongo"))
		}
	case config.AccessStoreMemory:
		if !cfg.IsDev {
			errs = append(errs, errors.New("ACCESS_STORE=memory is only allowed in development"))
		}
	}

	if err := cfg.Auth.Validate(cfg.IsDev); err != nil {
		errs = append(errs, err)
	}

	for _, p := range cfg.Access.ExemptPaths {
		if u, err := url.Parse(p); err != nil || u.Host != "" || strings.Contains(p, "?") {
			errs = append(errs, fmt.Errorf("ACCESS_EXEMPT_PATHS: %q is not a plain path", p))
		}
	}

	return errors.Join(errs...)
}
