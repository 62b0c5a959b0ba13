package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	gatekeeper "github.com/target/gatekeeper"
	"github.com/target/gatekeeper/config"
	httpx "github.com/target/gatekeeper/internal/http"
)

const (
	shutdownTimeout = 10 * time.Second
	devTemplateDir  = "web/templates"
	devStaticDir    = "web/static"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Infra    *Infrastructure
	Logger   *slog.Logger
}

// BuildHTTPHandler assembles the router and its middleware chain.
func BuildHTTPHandler(cfg HTTPServerConfig) (http.Handler, error) {
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templates, static, err := webAssets(appCfg.IsDev)
	if err != nil {
		return nil, err
	}

	services := httpx.RouterServices{
		Pending:           cfg.Services.Pending,
		Verdicts:          cfg.Services.Verdicts,
		ExemptPaths:       appCfg.Access.ExemptPaths,
		EnforceExemptions: appCfg.Access.EnforceExemptions,
		Metrics:           cfg.Services.Observability.Sink,
		MetricsHandler:    cfg.Services.Observability.Handler,
		Ready:             cfg.Infra.Pingers(),
		CookieDomain:      appCfg.HTTP.CookieDomain,
		Title:             appCfg.HTTP.Title,
		TemplateFS:        templates,
		StaticFS:          static,
		Logger:            logger,
	}
	if cfg.Services.Auth != nil {
		services.Auth = cfg.Services.Auth.Service
		services.LogoutURL = cfg.Services.Auth.LogoutURL
	}
	if cfg.Services.Access != nil {
		services.Access = cfg.Services.Access
	}
	if cfg.Services.Gate != nil {
		services.Gate = cfg.Services.Gate
	}
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		services.Compression = &httpx.CompressionConfig{Level: appCfg.HTTP.CompressionLevel, MinSize: 512, Logger: logger}
	}

	return httpx.NewRouter(services)
}

// webAssets reads templates and static files from disk in dev mode so edits show up
// without a rebuild, and from the embedded copies otherwise.
func webAssets(isDev bool) (fs.FS, fs.FS, error) {
	if isDev {
		if _, err := os.Stat(devTemplateDir); err == nil {
			return os.DirFS(devTemplateDir), os.DirFS(devStaticDir), nil
		}
	}
	templates, err := fs.Sub(gatekeeper.TemplateFS, devTemplateDir)
	if err != nil {
		return nil, nil, fmt.Errorf("templates: %w", err)
	}
	static, err := fs.Sub(gatekeeper.StaticFS, devStaticDir)
	if err != nil {
		return nil, nil, fmt.Errorf("static files: %w", err)
	}
	return templates, static, nil
}

// NewHTTPServer builds the server without starting it.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ServeConfig groups what Serve runs and drains.
type ServeConfig struct {
	Server   *http.Server
	Listener net.Listener // optional; Server.Addr is used when nil
	Services ServiceContainer
	Logger   *slog.Logger
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down and
// waits for background authorization checks to finish.
func Serve(ctx context.Context, cfg ServeConfig) error {
	if cfg.Server == nil {
		return errors.New("serve: server is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error
		if cfg.Listener != nil {
			logger.Info("starting HTTP server", "addr", cfg.Listener.Addr().String())
			err = cfg.Server.Serve(cfg.Listener)
		} else {
			logger.Info("starting HTTP server", "addr", cfg.Server.Addr)
			err = cfg.Server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		return shutdown(cfg, logger)
	})

	return group.Wait()
}

func shutdown(cfg ServeConfig, logger *slog.Logger) error {
	logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if cfg.Services.Gate != nil {
		if err := cfg.Services.Gate.Wait(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("wait for authorization checks: %w", err))
		}
	}
	if err := cfg.Services.Observability.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close metrics: %w", err))
	}

	logger.Info("HTTP server stopped")
	return errors.Join(errs...)
}
