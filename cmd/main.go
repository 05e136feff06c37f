package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/rankwatch/internal/adapters/http/api"
	"github.com/okian/rankwatch/internal/bootstrap"
	"github.com/okian/rankwatch/internal/config"
	"github.com/okian/rankwatch/pkg/logger"
	"github.com/okian/rankwatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal(ctx, "failed to load config", logger.Error(err))
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal(ctx, "poller failed", logger.Error(err))
	}
}

// run starts the poll loop and the optional status server and blocks until ctx is done.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	c, err := bootstrap.Build(ctx, cfg, log.Named("poller"))
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn(context.Background(), "failed to close state store", logger.Error(err))
		}
	}()

	log.Info(ctx, "starting poller",
		logger.String("player", cfg.Player),
		logger.String("region", cfg.Region),
		logger.String("store", cfg.StoreDriver),
		logger.Duration("interval", cfg.PollInterval),
	)

	if err := c.Service.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer c.Service.Stop()

	go startSystemMetricsUpdater(ctx)

	var srv *http.Server
	if cfg.Addr != "" {
		srv = newStatusServer(cfg.Addr, api.NewServer(c.Store, c.Service))
		go serveStatus(ctx, srv, log)
	}

	<-ctx.Done()
	log.Info(context.Background(), "shutting down...")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "status server shutdown failed", logger.Error(err))
		}
	}

	log.Info(context.Background(), "poller stopped")
	return nil
}

// serveStatus runs srv until it is shut down. A listen failure only loses the
// status surface; the poll loop keeps running.
func serveStatus(ctx context.Context, srv *http.Server, log logger.Logger) {
	log.Info(ctx, "starting status server", logger.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(ctx, "status server stopped, polling continues",
			logger.Error(fmt.Errorf("%w: %w", api.ErrServe, err)),
		)
	}
}

func newStatusServer(addr string, s *api.Server) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	updateSystemMetrics()

	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
