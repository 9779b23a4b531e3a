package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

var testCfg = Config{
	MaxAttempts:     3,
	InitialInterval: 5 * time.Millisecond,
	MaxInterval:     20 * time.Millisecond,
}

func TestDoSuccessFirstAttempt(t *testing.T) {
	called := 0
	err := Do(context.Background(), zap.NewNop().Sugar(), testCfg, func(ctx context.Context) error {
		called++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called != 1 {
		t.Fatalf("expected 1 attempt, got %d", called)
	}
}

func TestDoEventualSuccess(t *testing.T) {
	called := 0
	err := Do(context.Background(), zap.NewNop().Sugar(), testCfg, func(ctx context.Context) error {
		called++
		if called < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if called != 3 {
		t.Fatalf("expected 3 attempts, got %d", called)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	sentinel := errors.New("storage unreachable")
	called := 0
	start := time.Now()
	err := Do(context.Background(), zap.NewNop().Sugar(), testCfg, func(ctx context.Context) error {
		called++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected the final failure unmodified, got %v", err)
	}
	if called != 3 {
		t.Fatalf("expected 3 attempts, got %d", called)
	}
	// Jitter-free schedule: 5ms + 10ms between the three attempts.
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Fatalf("backoff finished too fast: %v", elapsed)
	}
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	called := 0
	err := Do(ctx, zap.NewNop().Sugar(), testCfg, func(ctx context.Context) error {
		called++
		cancel()
		return errors.New("transient")
	})
	if err == nil {
		t.Fatal("expected an error after cancellation")
	}
	if called != 1 {
		t.Fatalf("expected no retries after cancellation, got %d attempts", called)
	}
}

func TestDoAppliesDefaults(t *testing.T) {
	called := 0
	err := Do(context.Background(), zap.NewNop().Sugar(), Config{
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}, func(ctx context.Context) error {
		called++
		return errors.New("always")
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if called != Default.MaxAttempts {
		t.Fatalf("expected default %d attempts, got %d", Default.MaxAttempts, called)
	}
}
