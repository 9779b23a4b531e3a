package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Config controls how many times an operation is attempted and how the
// delay between attempts grows. The schedule is jitter-free exponential
// doubling from InitialInterval up to MaxInterval.
type Config struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Default matches the pipeline's database retry budget: three attempts
// with delays of 2s and 4s between them, capped at 10s.
var Default = Config{
	MaxAttempts:     3,
	InitialInterval: 2 * time.Second,
	MaxInterval:     10 * time.Second,
}

// Do runs op until it succeeds or the attempt budget is spent. Each retry
// is logged with the attempt number and the delay that preceded it. The
// final failure is returned unmodified so callers can wrap it in their
// own error type.
func Do(ctx context.Context, log *zap.SugaredLogger, cfg Config, op func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = Default.MaxAttempts
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = Default.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = Default.MaxInterval
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.RandomizationFactor = 0
	bo.Multiplier = 2.0
	bo.MaxInterval = cfg.MaxInterval
	bo.MaxElapsedTime = 0

	var attempt int
	operation := func() error {
		attempt++
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return op(ctx)
	}

	notify := func(err error, delay time.Duration) {
		log.Warnw("operation failed, retrying",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(cfg.MaxAttempts-1)), ctx)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		log.Errorw("operation failed after exhausting retries",
			"attempts", attempt,
			"error", err,
		)
		return err
	}
	return nil
}
