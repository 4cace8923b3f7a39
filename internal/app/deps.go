// Package app builds the stores, broker and notifier shared by the API and
// worker binaries from one Config.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/aegis-triage/config"
	"github.com/jwalitptl/aegis-triage/internal/email"
	"github.com/jwalitptl/aegis-triage/internal/handler/health"
	"github.com/jwalitptl/aegis-triage/internal/repository"
	"github.com/jwalitptl/aegis-triage/internal/repository/memory"
	"github.com/jwalitptl/aegis-triage/internal/repository/postgres"
	"github.com/jwalitptl/aegis-triage/internal/repository/redis"
	"github.com/jwalitptl/aegis-triage/pkg/messaging"
	redisBroker "github.com/jwalitptl/aegis-triage/pkg/messaging/redis"
	"github.com/jwalitptl/aegis-triage/pkg/metrics"
)

type Deps struct {
	DB      *sqlx.DB
	Redis   *goredis.Client
	Cases   repository.CaseRepository
	Reports repository.ReportRepository
	Broker  messaging.Broker
	Email   email.Service
}

// Open connects every backend cfg asks for. On error anything already
// opened is closed.
func Open(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) (d *Deps, err error) {
	d = &Deps{}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	if cfg.UsesPostgres() {
		if d.DB, err = postgres.NewDB(cfg.Database.ToPostgresConfig()); err != nil {
			return nil, err
		}
		if err = postgres.Migrate(ctx, d.DB); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	if cfg.UsesRedis() {
		if d.Redis, err = redis.NewClient(ctx, cfg.Redis.ToClientConfig()); err != nil {
			return nil, err
		}
	}

	switch cfg.Storage.Cases {
	case config.DriverPostgres:
		d.Cases = postgres.NewCaseRepository(d.DB)
	default:
		d.Cases = memory.NewCaseRepository(0)
	}
	switch cfg.Storage.Reports {
	case config.DriverPostgres:
		d.Reports = postgres.NewReportRepository(d.DB, cfg.Storage.HistoryLimit)
	case config.DriverRedis:
		d.Reports = redis.NewReportRepository(d.Redis, cfg.Storage.HistoryLimit)
	default:
		d.Reports = memory.NewReportRepository(cfg.Storage.HistoryLimit)
	}
	d.Cases = repository.InstrumentCases(d.Cases, m)
	d.Reports = repository.InstrumentReports(d.Reports, m)

	switch cfg.Storage.Broker {
	case config.DriverRedis:
		d.Broker = redisBroker.NewRedisBroker(d.Redis, &logger)
	default:
		d.Broker = messaging.NewMemoryBroker()
	}

	if cfg.Alerts.Enabled {
		d.Email = email.NewSMTPService(cfg.Alerts.ToSMTPConfig())
	} else {
		d.Email = email.NewLogService(logger)
	}
	return d, nil
}

// Checkers returns a readiness probe per connected backend.
func (d *Deps) Checkers() []health.Checker {
	var checks []health.Checker
	if d.DB != nil {
		checks = append(checks, health.Checker{Name: "database", Check: d.DB.PingContext})
	}
	if d.Redis != nil {
		checks = append(checks, health.Checker{Name: "redis", Check: func(ctx context.Context) error {
			return d.Redis.Ping(ctx).Err()
		}})
	}
	return checks
}

func (d *Deps) Close() {
	if d.Broker != nil {
		d.Broker.Close()
	}
	if d.Redis != nil {
		d.Redis.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
