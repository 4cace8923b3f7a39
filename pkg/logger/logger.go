package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
)

// Config holds logger configuration. JSON output is meant for collectors;
// the console writer is for local runs.
type Config struct {
	Level      Level
	TimeFormat string
	Output     io.Writer
	JSON       bool
}

// Logger wraps zerolog.Logger with key/value helpers for background
// workers. Request paths use the zerolog.Logger from Zerolog directly.
type Logger struct {
	zl zerolog.Logger
}

// ParseLevel converts a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return InfoLevel
	}
	return lvl
}

func NewLogger(cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{Level: InfoLevel}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if !cfg.JSON {
		format := cfg.TimeFormat
		if format == "" {
			format = time.RFC3339
		}
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: format}
	}

	zl := zerolog.New(out).Level(cfg.Level).With().Timestamp().Caller().Logger()
	return &Logger{zl: zl}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{zl: l.zl.With().Fields(fields).Logger()}
}

// Info, Warn and Error take alternating key/value pairs.
func (l *Logger) Info(msg string, kv ...interface{}) {
	l.zl.Info().Fields(kv).Msg(msg)
}

func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.zl.Warn().Fields(kv).Msg(msg)
}

func (l *Logger) Error(err error, msg string, kv ...interface{}) {
	l.zl.Error().Err(err).Fields(kv).Msg(msg)
}
