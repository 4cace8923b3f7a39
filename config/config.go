package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/aegis-triage/internal/email"
	"github.com/jwalitptl/aegis-triage/internal/oracle"
	"github.com/jwalitptl/aegis-triage/internal/repository/postgres"
	"github.com/jwalitptl/aegis-triage/internal/repository/redis"
	"github.com/jwalitptl/aegis-triage/pkg/tracing"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   tracing.Config  `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type OracleConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoint        string        `mapstructure:"endpoint"`
	Model           string        `mapstructure:"model"`
	APIKey          string        `mapstructure:"api_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Temperature     float64       `mapstructure:"temperature"`
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

type StorageConfig struct {
	Cases         string        `mapstructure:"cases"`
	Reports       string        `mapstructure:"reports"`
	Broker        string        `mapstructure:"broker"`
	HistoryLimit  int           `mapstructure:"history_limit"`
	CaseRetention time.Duration `mapstructure:"case_retention"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type AuthConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type AlertsConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Host       string   `mapstructure:"smtp_host"`
	Port       int      `mapstructure:"smtp_port"`
	Username   string   `mapstructure:"smtp_user"`
	Password   string   `mapstructure:"smtp_password"`
	From       string   `mapstructure:"from"`
	Recipients []string `mapstructure:"recipients"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type WorkerConfig struct {
	HealthPort        int           `mapstructure:"health_port"`
	RetentionInterval time.Duration `mapstructure:"retention_interval"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
}

// geminiEnv is read with envconfig so the oracle key never has to live in
// the config file.
type geminiEnv struct {
	APIKey   string `envconfig:"API_KEY"`
	Model    string `envconfig:"MODEL"`
	Endpoint string `envconfig:"ENDPOINT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 12*time.Second)
	v.SetDefault("server.max_body_bytes", 64<<10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("oracle.enabled", false)
	v.SetDefault("oracle.endpoint", "")
	v.SetDefault("oracle.model", "")
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.timeout", 8*time.Second)
	v.SetDefault("oracle.temperature", 0.2)
	v.SetDefault("oracle.breaker_failures", 3)
	v.SetDefault("oracle.breaker_cooldown", 30*time.Second)

	v.SetDefault("storage.cases", DriverMemory)
	v.SetDefault("storage.reports", DriverMemory)
	v.SetDefault("storage.broker", DriverMemory)
	v.SetDefault("storage.history_limit", 10)
	v.SetDefault("storage.case_retention", time.Duration(0))

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "aegis")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "aegis")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "aegis-triage")
	v.SetDefault("auth.expiry_hours", 12)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 2.0)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("alerts.enabled", false)
	v.SetDefault("alerts.smtp_host", "")
	v.SetDefault("alerts.smtp_port", 587)
	v.SetDefault("alerts.smtp_user", "")
	v.SetDefault("alerts.smtp_password", "")
	v.SetDefault("alerts.from", "")
	v.SetDefault("alerts.recipients", []string{})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "aegis-triage")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("worker.health_port", 8081)
	v.SetDefault("worker.retention_interval", time.Hour)
	v.SetDefault("worker.retry_attempts", 3)
	v.SetDefault("worker.retry_delay", 2*time.Second)
}

// LoadConfig reads config.yaml from path (or the usual locations when path is
// empty), then applies AEGIS_* environment overrides and GEMINI_* secrets.
// A missing config file is not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	v.SetEnvPrefix("AEGIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var gemini geminiEnv
	if err := envconfig.Process("gemini", &gemini); err != nil {
		return nil, fmt.Errorf("failed to read gemini environment: %w", err)
	}
	if gemini.APIKey != "" {
		cfg.Oracle.APIKey = gemini.APIKey
	}
	if gemini.Model != "" {
		cfg.Oracle.Model = gemini.Model
	}
	if gemini.Endpoint != "" {
		cfg.Oracle.Endpoint = gemini.Endpoint
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects driver names the binary cannot build.
func (c *Config) Validate() error {
	switch c.Storage.Cases {
	case DriverMemory, DriverPostgres:
	default:
		return fmt.Errorf("unsupported case store %q", c.Storage.Cases)
	}
	switch c.Storage.Reports {
	case DriverMemory, DriverPostgres, DriverRedis:
	default:
		return fmt.Errorf("unsupported report store %q", c.Storage.Reports)
	}
	switch c.Storage.Broker {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("unsupported broker %q", c.Storage.Broker)
	}
	if c.Oracle.Enabled && c.Oracle.APIKey == "" {
		return errors.New("oracle enabled but no API key set (GEMINI_API_KEY)")
	}
	return nil
}

// UsesPostgres reports whether any store needs a database connection.
func (c *Config) UsesPostgres() bool {
	return c.Storage.Cases == DriverPostgres || c.Storage.Reports == DriverPostgres
}

// UsesRedis reports whether any component needs a redis client.
func (c *Config) UsesRedis() bool {
	return c.Storage.Reports == DriverRedis || c.Storage.Broker == DriverRedis
}

func (c *DatabaseConfig) ToPostgresConfig() postgres.Config {
	return postgres.Config{
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		Name:            c.Name,
		SSLMode:         c.SSLMode,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

func (c *RedisConfig) ToClientConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}

func (c *OracleConfig) ToGeminiConfig() oracle.GeminiConfig {
	return oracle.GeminiConfig{
		APIKey:      c.APIKey,
		Model:       c.Model,
		Endpoint:    c.Endpoint,
		Timeout:     c.Timeout,
		Temperature: c.Temperature,
	}
}

func (c *AlertsConfig) ToSMTPConfig() email.SMTPConfig {
	return email.SMTPConfig{
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		From:     c.From,
	}
}
