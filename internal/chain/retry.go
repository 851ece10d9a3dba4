package chain

import (
	"context"
	"time"

	"go.uber.org/zap"

	"auctionScope/internal/model"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 200 * time.Millisecond
)

// Retrier wraps remote reads with bounded attempts and exponential backoff.
// Each logical call gets its own full budget; nothing is shared across calls.
type Retrier struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *zap.Logger
}

// Do runs fn up to MaxAttempts times. The label is purely diagnostic.
// Exhausting the budget returns a *model.RPCUnavailableError carrying the
// last underlying error, never a silent zero value.
func (r Retrier) Do(ctx context.Context, label string, fn func(context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	delay := r.BaseDelay
	if delay <= 0 {
		delay = defaultBaseDelay
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		logger.Warn("rpc call failed",
			zap.String("label", label),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return &model.RPCUnavailableError{Label: label, Attempts: attempt, Err: ctx.Err()}
		case <-timer.C:
		}
		delay *= 2
	}

	return &model.RPCUnavailableError{Label: label, Attempts: attempts, Err: lastErr}
}
