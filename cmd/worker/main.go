package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/aegis-triage/config"
	"github.com/jwalitptl/aegis-triage/internal/app"
	"github.com/jwalitptl/aegis-triage/internal/handler/health"
	promHandler "github.com/jwalitptl/aegis-triage/internal/handler/prometheus"
	"github.com/jwalitptl/aegis-triage/internal/worker"
	"github.com/jwalitptl/aegis-triage/pkg/logger"
	"github.com/jwalitptl/aegis-triage/pkg/metrics"
	pkgworker "github.com/jwalitptl/aegis-triage/pkg/worker"
)

func newHealthServer(port int, reg *prometheus.Registry, checkers []health.Checker) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	health.NewHandler(checkers...).RegisterRoutes(engine.Group(""))
	engine.GET("/metrics", promHandler.New(reg).Handler())

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	baseLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Log.Format == "json",
	}).WithFields(map[string]interface{}{"service": "aegis-worker"})
	log := *baseLogger.Zerolog()

	if cfg.Storage.Broker != config.DriverRedis {
		log.Warn().Msg("in-memory broker selected; the worker will only see events it publishes itself")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	m := metrics.New("aegis", reg)

	deps, err := app.Open(ctx, cfg, m, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open backends")
	}
	defer deps.Close()

	consumer := pkgworker.NewConsumer(deps.Broker, pkgworker.ConsumerConfig{
		RetryAttempts: cfg.Worker.RetryAttempts,
		RetryDelay:    cfg.Worker.RetryDelay,
	}, baseLogger, m)
	worker.NewAlertHandler(deps.Email, cfg.Alerts.Recipients, log).Register(consumer)

	srv := newHealthServer(cfg.Worker.HealthPort, reg, deps.Checkers())
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Health check server failed")
			cancel()
		}
	}()

	var wg sync.WaitGroup
	if cfg.Storage.CaseRetention > 0 {
		retention := worker.NewCaseRetentionWorker(deps.Cases, cfg.Storage.CaseRetention, cfg.Worker.RetentionInterval, m, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			retention.Start(ctx)
		}()
	}

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Event consumer stopped")
		cancel()
	}
	wg.Wait()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Health server forced to shutdown")
	}
	log.Info().Msg("Worker exited")
}
