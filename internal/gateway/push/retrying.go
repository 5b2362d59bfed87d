package push

import (
	"context"
	"errors"
	"time"

	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/logx"
)

type gateway interface {
	Broadcast(ctx context.Context, topic domain.Topic, title, body string) error
	RecordForUser(ctx context.Context, rec domain.NotificationRecord) error
}

type counter interface {
	Inc()
}

// RetryConfig configures RetryingGateway.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway retries transient publish failures with capped exponential
// backoff.
type RetryingGateway struct {
	next    gateway
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingGateway returns nil when next is nil.
func NewRetryingGateway(next gateway, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if next == nil {
		return nil
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg}
}

// Broadcast retries next.Broadcast.
func (g *RetryingGateway) Broadcast(ctx context.Context, topic domain.Topic, title, body string) error {
	return g.do(ctx, "Broadcast", topic, func() error {
		return g.next.Broadcast(ctx, topic, title, body)
	})
}

// RecordForUser retries next.RecordForUser.
func (g *RetryingGateway) RecordForUser(ctx context.Context, rec domain.NotificationRecord) error {
	return g.do(ctx, "RecordForUser", rec.Topic, func() error {
		return g.next.RecordForUser(ctx, rec)
	})
}

func (g *RetryingGateway) do(ctx context.Context, method string, topic domain.Topic, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("push gateway retry",
			logx.String("method", method),
			logx.String("channel", string(topic)),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	var pe PermanentError
	switch {
	case errors.As(err, &pe):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
