package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{MaxRetries: retries, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func TestRetry_RetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(5), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return driver.ErrBadConn
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsAfterMaxRetries(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(2), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("query: %w", driver.ErrBadConn)
	})

	assert.ErrorIs(t, err, driver.ErrBadConn)
	assert.Equal(t, 3, calls, "one attempt plus two retries")
}

func TestRetry_DoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(5), func(ctx context.Context) error {
		calls++
		return gorm.ErrRecordNotFound
	})

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, 1, calls)
}

func TestRetry_StopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	policy := RetryPolicy{MaxRetries: 5, BaseDelay: time.Hour}
	err := Retry(ctx, policy, func(ctx context.Context) error {
		calls++
		return driver.ErrBadConn
	})

	assert.ErrorIs(t, err, driver.ErrBadConn)
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(driver.ErrBadConn))
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(errors.New("syntax error")))
	assert.False(t, IsTransient(gorm.ErrDuplicatedKey))
}
