package repository

import (
	"context"

	"gorm.io/gorm"

	"taskmanager/internal/db"
)

// runner executes statements with a per-command timeout, retrying transient
// connection faults according to policy.
type runner struct {
	conn   *gorm.DB
	policy db.RetryPolicy
}

func (r runner) run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return db.Retry(ctx, r.policy, func(ctx context.Context) error {
		cmdCtx, cancel := r.policy.WithTimeout(ctx)
		defer cancel()
		return fn(r.conn.WithContext(cmdCtx))
	})
}

// transaction is run with every statement of fn inside a single transaction.
func (r runner) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.run(ctx, func(tx *gorm.DB) error {
		return tx.Transaction(fn)
	})
}
