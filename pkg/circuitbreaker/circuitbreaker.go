package circuitbreaker

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// ErrOpen is returned when the breaker rejects a call without running it.
var ErrOpen = errors.New("circuit breaker is open")

type Settings struct {
	Name string
	// MaxFailures is the number of consecutive failures that trips the breaker.
	MaxFailures int
	// Interval is the cyclic period in the closed state after which counts reset.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	Logger  *zerolog.Logger
}

type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	maxFailures := settings.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}
	logger := settings.Logger

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state change")
			}
		},
	})

	return &CircuitBreaker{cb: cb}
}

// Execute runs fn through the breaker. Calls rejected by an open or
// half-open breaker return ErrOpen.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	_, err := cb.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrOpen
	}
	return err
}

// State reports the current breaker state as "closed", "half-open" or "open".
func (cb *CircuitBreaker) State() string {
	return cb.cb.State().String()
}
