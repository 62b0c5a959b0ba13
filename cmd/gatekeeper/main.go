package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/target/gatekeeper/config"
	"github.com/target/gatekeeper/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	logger := bootstrap.InitLogger()
	err := run(ctx, logger)
	stop()
	if err != nil {
		logger.ErrorContext(context.Background(), "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	bootstrap.SetLogLevel(cfg.Observability.SlogLevel())

	logStartupInfo(ctx, logger, &cfg)

	if err = bootstrap.ValidateConfig(&cfg); err != nil {
		return err
	}

	infra, err := bootstrap.ConnectInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := infra.Close(context.Background()); cerr != nil {
			logger.ErrorContext(ctx, "close infrastructure failed", "error", cerr)
		}
	}()

	services, err := bootstrap.NewServices(bootstrap.ServiceDeps{
		Config: &cfg,
		Infra:  infra,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	handler, err := bootstrap.BuildHTTPHandler(bootstrap.HTTPServerConfig{
		Config:   &cfg,
		Services: services,
		Infra:    infra,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.Serve(ctx, bootstrap.ServeConfig{
		Server:   bootstrap.NewHTTPServer(cfg.HTTP.Addr, handler),
		Services: services,
		Logger:   logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting gatekeeper",
		"addr", cfg.HTTP.Addr,
		"auth_mode", cfg.Auth.Mode,
		"access_store", cfg.Access.Store,
		"dev", cfg.IsDev,
	)
}
