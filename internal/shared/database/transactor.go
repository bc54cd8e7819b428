package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type txKey struct{}

// Transactor runs fn inside a single database transaction. Repositories
// called with the ctx handed to fn join that transaction through Conn.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormTransactor struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewTransactor returns a Transactor over db. A positive lockTimeout bounds
// how long any row lock inside the transaction may be waited on.
func NewTransactor(db *gorm.DB, lockTimeout time.Duration) Transactor {
	return &gormTransactor{db: db, lockTimeout: lockTimeout}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested calls join the outer transaction
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if t.lockTimeout > 0 {
			if err := tx.Exec(lockTimeoutStatement(t.lockTimeout)).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// lockTimeoutStatement rounds d up to whole milliseconds. Postgres reads
// '0ms' as no timeout at all.
func lockTimeoutStatement(d time.Duration) string {
	ms := d.Milliseconds()
	if d%time.Millisecond != 0 {
		ms++
	}
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms)
}

// Conn returns the transaction bound to ctx, or db when there is none
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// InTransaction reports whether ctx carries an open transaction
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}
