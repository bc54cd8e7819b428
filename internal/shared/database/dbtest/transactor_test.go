package dbtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int }

func (c *counter) Snapshot() func() {
	saved := c.n
	return func() { c.n = saved }
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	c := &counter{}
	tx := NewTransactor(c)

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		c.n = 5
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 0, c.n)
	assert.Equal(t, 1, tx.Aborts())

	err = tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		c.n = 7
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, c.n)
	assert.Equal(t, 1, tx.Commits())
}

func TestTransactor_NestedJoinsOuter(t *testing.T) {
	c := &counter{}
	tx := NewTransactor(c)

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		c.n = 1
		return tx.WithinTransaction(ctx, func(ctx context.Context) error {
			c.n = 2
			return errors.New("inner failed")
		})
	})
	require.Error(t, err)
	assert.Equal(t, 0, c.n)
	assert.Equal(t, 1, tx.Aborts())
}

func TestTransactor_CancelledContext(t *testing.T) {
	tx := NewTransactor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
