package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/recipebox/internal/adapters/http/api"
	"github.com/okian/recipebox/internal/adapters/http/site"
	"github.com/okian/recipebox/internal/adapters/http/swagger"
	app "github.com/okian/recipebox/internal/app"
	"github.com/okian/recipebox/internal/config"
	"github.com/okian/recipebox/internal/supervisor"
	"github.com/okian/recipebox/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Get().Error(ctx, "log sync failed", logger.Error(err))
		}
	}()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, log)
	defer svc.Stop()

	tree := supervisor.NewTree(logger.Slog(), supervisor.TreeConfig{ShutdownTimeout: shutdownTimeout})
	tree.AddAPIService(supervisor.NewHTTPServerService(newHTTPServer(ctx, cfg, svc), shutdownTimeout))
	tree.AddBackgroundService(supervisor.NewMetricsCollector(svc, systemMetricsInterval, serviceMetricsInterval))

	treeCtx, cancelTree := context.WithCancel(ctx)
	defer cancelTree()
	done := tree.ServeBackground(treeCtx)
	log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))

	// The server answers /healthz with 503 until the dataset is loaded.
	if err := svc.Start(ctx); err != nil {
		cancelTree()
		<-done
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down server...")
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			log.Error(ctx, "supervisor stopped", logger.Error(err))
		}
		return err
	}

	cancelTree()
	<-done
	log.Info(context.Background(), "server stopped")
	return nil
}

// newService builds the recipe service from configuration.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log),
		app.WithDataDir(cfg.DataDir),
		app.WithItemsPerPage(cfg.ItemsPerPage),
		app.WithPageSizes(cfg.PageSizes),
		app.WithLoadDelay(cfg.LoadDelay()),
		app.WithMaxSessions(cfg.MaxSessions),
	)
}

// newHTTPServer wires the API, docs and browser client routes into an http.Server.
func newHTTPServer(ctx context.Context, cfg *config.Config, svc *app.Service) *http.Server {
	router := api.NewServer(svc,
		api.WithRateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow()),
		api.WithCORSOrigins(cfg.CORSAllowedOrigins),
		api.WithPageSizes(cfg.PageSizes),
		api.WithItemsPerPage(cfg.ItemsPerPage),
	).Router()
	swagger.Register(ctx, router)
	site.Register(ctx, router)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
