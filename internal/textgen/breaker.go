package textgen

import (
	"context"
	"errors"
	"time"

	"github.com/quickemail/email-triage/internal/core"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSettings tunes the circuit breaker around backend calls
type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
	MaxHalfOpen  uint32
}

// Breaker wraps a text generator with a circuit breaker so a struggling
// backend short-circuits to the fallback path instead of being hammered
// by every request.
type Breaker struct {
	inner  core.TextGenerator
	cb     *gobreaker.CircuitBreaker[[]core.GeneratedText]
	logger *zap.Logger
}

// NewBreaker wraps gen with a circuit breaker
func NewBreaker(gen core.TextGenerator, settings BreakerSettings, logger *zap.Logger) *Breaker {
	cb := gobreaker.NewCircuitBreaker[[]core.GeneratedText](gobreaker.Settings{
		Name:        "textgen",
		MaxRequests: settings.MaxHalfOpen,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= settings.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// A canceled caller is not a backend failure
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Breaker{inner: gen, cb: cb, logger: logger}
}

// Generate forwards to the wrapped generator through the breaker
func (b *Breaker) Generate(ctx context.Context, req *core.GenerateRequest) ([]core.GeneratedText, error) {
	return b.cb.Execute(func() ([]core.GeneratedText, error) {
		return b.inner.Generate(ctx, req)
	})
}

// Close releases the wrapped generator if it holds resources
func (b *Breaker) Close() error {
	if closer, ok := b.inner.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
