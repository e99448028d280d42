package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"syscall"
	"time"
)

// RetryPolicy bounds how often and how long transient database faults are retried.
type RetryPolicy struct {
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	CommandTimeout time.Duration
}

// DefaultRetryPolicy mirrors the production settings: five retries, delays capped at 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     5,
		BaseDelay:      100 * time.Millisecond,
		MaxDelay:       30 * time.Second,
		CommandTimeout: 30 * time.Second,
	}
}

func (p RetryPolicy) commandTimeout() time.Duration {
	if p.CommandTimeout <= 0 {
		return 30 * time.Second
	}
	return p.CommandTimeout
}

// WithTimeout derives the per-command context.
func (p RetryPolicy) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.commandTimeout())
}

// Retry runs fn until it succeeds, fails with a non-transient error, the context
// ends, or MaxRetries retries are spent. The delay doubles after each attempt.
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	delay := policy.BaseDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil || !IsTransient(err) || attempt >= policy.MaxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		delay *= 2
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}
}

// IsTransient reports whether err is a connection-level fault worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
