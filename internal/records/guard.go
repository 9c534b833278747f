package records

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
)

// GuardConfig tunes the circuit breaker in front of the database.
type GuardConfig struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// storeGuard fails store calls fast while the database keeps erroring.
type storeGuard struct {
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func newStoreGuard(cfg GuardConfig, logger *zap.Logger) *storeGuard {
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = defaultBreakerFailures
	}
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = defaultBreakerTimeout
	}
	settings := gobreaker.Settings{
		Name:        "records-store",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, gorm.ErrRecordNotFound) || canceled(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("store circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &storeGuard{breaker: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func (g *storeGuard) run(fn func() error) error {
	if g == nil || g.breaker == nil {
		return fn()
	}
	_, err := g.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func breakerRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// canceled reports whether the caller gave up on the call. The store was not at fault.
func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
