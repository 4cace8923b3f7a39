package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Config holds connection settings.
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func NewDB(cfg Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS triage_cases (
	id                   UUID PRIMARY KEY,
	patient_id           TEXT NOT NULL,
	patient_alias        TEXT NOT NULL DEFAULT '',
	age                  INTEGER NOT NULL,
	gender               TEXT NOT NULL DEFAULT '',
	chief_complaint      TEXT NOT NULL,
	symptoms             JSONB NOT NULL DEFAULT '[]',
	pain_score           INTEGER NOT NULL,
	duration             TEXT NOT NULL DEFAULT '',
	sbar                 JSONB NOT NULL,
	esi_level            SMALLINT NOT NULL,
	esi_reasoning        TEXT NOT NULL,
	flags                JSONB NOT NULL DEFAULT '[]',
	category             TEXT NOT NULL DEFAULT '',
	source               TEXT NOT NULL,
	status               TEXT NOT NULL,
	assigned_hospital_id TEXT NOT NULL DEFAULT '',
	shared_context       JSONB,
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_triage_cases_queue ON triage_cases (esi_level, created_at);
CREATE INDEX IF NOT EXISTS idx_triage_cases_patient ON triage_cases (patient_id, created_at DESC);

CREATE TABLE IF NOT EXISTS health_reports (
	seq        BIGSERIAL PRIMARY KEY,
	patient_id TEXT NOT NULL,
	report     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_health_reports_patient ON health_reports (patient_id, seq DESC);
`

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
