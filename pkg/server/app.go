package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DealPull/internal/domain/repository"
	"DealPull/internal/service/ratelimit"
	"DealPull/internal/usecase"
	"DealPull/pkg/cache"
	"DealPull/pkg/config"
	xhttp "DealPull/pkg/http"
	pkgkafka "DealPull/pkg/kafka"
	applogger "DealPull/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	handler   xhttp.Handler
	limiter   *ratelimit.Limiter
	snapshots *usecase.SnapshotService
	cache     cache.Service
	publisher repository.Publisher
	consumer  *pkgkafka.Consumer
	warmup    pkgkafka.MessageHandler

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	limiter *ratelimit.Limiter,
	snapshots *usecase.SnapshotService,
	cacheSvc cache.Service,
	publisher repository.Publisher,
	consumer *pkgkafka.Consumer,
	warmup pkgkafka.MessageHandler,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		handler:   handler,
		limiter:   limiter,
		snapshots: snapshots,
		cache:     cacheSvc,
		publisher: publisher,
		consumer:  consumer,
		warmup:    warmup,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.limiter.StartJanitor(ctx, a.cfg.RateLimit.Window)

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(a.log),
	)

	// Warm the snapshot so the first reader does not pay for the full
	// aggregation.
	go func() {
		if err := a.snapshots.Refresh(ctx); err != nil {
			a.log.Warn("initial snapshot refresh failed", applogger.Error(err))
		}
	}()

	if a.consumer != nil && a.warmup != nil {
		a.consumer.RegisterHandler(a.warmup)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
		} else {
			a.log.Info("kafka consumer started", applogger.String("topic", a.warmup.Topic()))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if err := a.cache.Close(); err != nil {
		a.log.Warn("cache close error", applogger.Error(err))
	}

	// give in-flight log writes a moment to drain
	time.Sleep(50 * time.Millisecond)

	a.log.Info("shutdown complete")
	return nil
}
