package textgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quickemail/email-triage/internal/core"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

func testBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MinRequests:  3,
		FailureRatio: 0.6,
		OpenTimeout:  30 * time.Second,
		MaxHalfOpen:  1,
	}
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	gen := &stubGenerator{samples: []core.GeneratedText{{Text: "PRODUTIVO"}}}
	b := NewBreaker(gen, testBreakerSettings(), zap.NewNop())

	samples, err := b.Generate(context.Background(), &core.GenerateRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(samples) != 1 || samples[0].Text != "PRODUTIVO" {
		t.Errorf("Generate() = %v, want the inner generator's output", samples)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	gen := &stubGenerator{err: errors.New("backend down")}
	b := NewBreaker(gen, testBreakerSettings(), zap.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := b.Generate(context.Background(), &core.GenerateRequest{Prompt: "x"}); err == nil {
			t.Fatalf("Generate() call %d error = nil, want failure", i+1)
		}
	}
	if gen.calls != 3 {
		t.Fatalf("inner calls = %d, want 3 before the breaker opens", gen.calls)
	}

	// The fourth call is short-circuited without reaching the backend
	_, err := b.Generate(context.Background(), &core.GenerateRequest{Prompt: "x"})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Generate() error = %v, want ErrOpenState", err)
	}
	if gen.calls != 3 {
		t.Errorf("inner calls = %d, want 3 after the breaker opened", gen.calls)
	}
}

func TestBreakerStaysClosedBelowFailureRatio(t *testing.T) {
	gen := &stubGenerator{}
	b := NewBreaker(gen, testBreakerSettings(), zap.NewNop())

	// Two successes and one failure keep the ratio under the threshold
	for i := 0; i < 2; i++ {
		if _, err := b.Generate(context.Background(), &core.GenerateRequest{Prompt: "x"}); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
	}
	gen.err = errors.New("transient")
	if _, err := b.Generate(context.Background(), &core.GenerateRequest{Prompt: "x"}); err == nil {
		t.Fatal("Generate() error = nil, want the inner failure")
	}

	gen.err = nil
	if _, err := b.Generate(context.Background(), &core.GenerateRequest{Prompt: "x"}); err != nil {
		t.Errorf("Generate() error = %v, want pass-through while closed", err)
	}
	if gen.calls != 4 {
		t.Errorf("inner calls = %d, want 4", gen.calls)
	}
}

func TestBreakerIgnoresCanceledCallers(t *testing.T) {
	gen := &stubGenerator{err: context.Canceled}
	b := NewBreaker(gen, testBreakerSettings(), zap.NewNop())

	// Cancellations do not count as backend failures
	for i := 0; i < 5; i++ {
		if _, err := b.Generate(context.Background(), &core.GenerateRequest{Prompt: "x"}); !errors.Is(err, context.Canceled) {
			t.Fatalf("Generate() error = %v, want context.Canceled", err)
		}
	}
	if gen.calls != 5 {
		t.Errorf("inner calls = %d, want 5 with the breaker still closed", gen.calls)
	}
}

func TestBreakerCloseForwardsToInner(t *testing.T) {
	gen := &stubGenerator{}
	b := NewBreaker(gen, testBreakerSettings(), zap.NewNop())

	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if gen.closed != 1 {
		t.Errorf("inner closed %d times, want 1", gen.closed)
	}
}
