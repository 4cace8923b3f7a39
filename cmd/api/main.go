package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/aegis-triage/config"
	"github.com/jwalitptl/aegis-triage/internal/app"
	"github.com/jwalitptl/aegis-triage/internal/email"
	casesHandler "github.com/jwalitptl/aegis-triage/internal/handler/cases"
	"github.com/jwalitptl/aegis-triage/internal/handler/health"
	promHandler "github.com/jwalitptl/aegis-triage/internal/handler/prometheus"
	triageHandler "github.com/jwalitptl/aegis-triage/internal/handler/triage"
	wellnessHandler "github.com/jwalitptl/aegis-triage/internal/handler/wellness"
	"github.com/jwalitptl/aegis-triage/internal/middleware"
	"github.com/jwalitptl/aegis-triage/internal/oracle"
	"github.com/jwalitptl/aegis-triage/internal/router"
	"github.com/jwalitptl/aegis-triage/internal/service/notification"
	triageService "github.com/jwalitptl/aegis-triage/internal/service/triage"
	wellnessService "github.com/jwalitptl/aegis-triage/internal/service/wellness"
	"github.com/jwalitptl/aegis-triage/internal/triage"
	"github.com/jwalitptl/aegis-triage/pkg/auth"
	"github.com/jwalitptl/aegis-triage/pkg/circuitbreaker"
	"github.com/jwalitptl/aegis-triage/pkg/logger"
	"github.com/jwalitptl/aegis-triage/pkg/metrics"
	"github.com/jwalitptl/aegis-triage/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := *logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Log.Format == "json",
	}).Zerolog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("aegis", reg)

	deps, err := app.Open(ctx, cfg, m, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open backends")
	}
	defer deps.Close()

	var (
		triageOracle oracle.TriageOracle
		breaker      *circuitbreaker.CircuitBreaker
	)
	if cfg.Oracle.Enabled {
		gemini, err := oracle.NewGeminiOracle(cfg.Oracle.ToGeminiConfig(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create triage oracle")
		}
		triageOracle = gemini
		breaker = circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "triage-oracle",
			MaxFailures: cfg.Oracle.BreakerFailures,
			Timeout:     cfg.Oracle.BreakerCooldown,
			Logger:      &log,
		})
		log.Info().Str("model", cfg.Oracle.Model).Msg("triage oracle enabled")
	}

	// With a shared broker the worker sends alert email.
	var mailer email.Service = deps.Email
	if cfg.Storage.Broker == config.DriverRedis {
		mailer = nil
	}
	notifier := notification.NewService(mailer, deps.Broker, cfg.Alerts.Recipients, log)

	triageSvc := triageService.NewService(triageService.Options{
		Engine:        triage.NewEngine(triage.NewRuleClassifier()),
		Oracle:        triageOracle,
		Breaker:       breaker,
		OracleTimeout: cfg.Oracle.Timeout,
		Cases:         deps.Cases,
		Reports:       deps.Reports,
		Notifier:      notifier,
		Metrics:       m,
		Logger:        log,
	})
	wellnessSvc := wellnessService.NewService(deps.Reports, m, log)

	handlers := router.Handlers{
		Health:   health.NewHandler(deps.Checkers()...),
		Triage:   triageHandler.NewHandler(triageSvc),
		Wellness: wellnessHandler.NewHandler(wellnessSvc),
		Cases:    casesHandler.NewHandler(triageSvc),
	}
	if cfg.Metrics.Enabled {
		handlers.Metrics = promHandler.New(reg)
	}

	routerCfg := router.RouterConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodySize:    cfg.Server.MaxBodyBytes,
		CORSConfig:     middleware.DefaultCORSConfig(),
		MetricsPath:    cfg.Metrics.Path,
		Tracing:        cfg.Tracing.Enabled,
	}
	routerCfg.CORSConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerCfg.RateBurst = cfg.RateLimit.Burst
	}

	jwtSvc := auth.NewJWTService(cfg.Auth.Secret, cfg.Auth.Issuer, time.Duration(cfg.Auth.ExpiryHours)*time.Hour)
	r, err := router.NewRouter(middleware.NewAuthMiddleware(jwtSvc), handlers, m, log, routerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush traces")
	}
	log.Info().Msg("server exited")
}
