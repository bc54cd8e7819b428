package purchases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func takenSet(ids ...string) func(context.Context, string) (bool, error) {
	taken := make(map[string]bool, len(ids))
	for _, id := range ids {
		taken[id] = true
	}
	return func(_ context.Context, id string) (bool, error) {
		return taken[id], nil
	}
}

func TestOrderIDGenerator_PadsDigits(t *testing.T) {
	g := NewOrderIDGenerator("AII", 3)
	g.digits = sequenceDigits(42)

	id, err := g.Generate(context.Background(), takenSet())
	require.NoError(t, err)
	assert.Equal(t, "AII000042", id)
}

func TestOrderIDGenerator_RedrawsOnCollision(t *testing.T) {
	g := NewOrderIDGenerator("AII", 3)
	g.digits = sequenceDigits(7, 7, 123456)

	id, err := g.Generate(context.Background(), takenSet("AII000007"))
	require.NoError(t, err)
	assert.Equal(t, "AII123456", id)
}

func TestOrderIDGenerator_FallsBackToTimestamp(t *testing.T) {
	g := NewOrderIDGenerator("AII", 2)
	g.digits = sequenceDigits(1)
	g.now = func() time.Time { return time.Unix(1_700_123_456, 0) }

	id, err := g.Generate(context.Background(), takenSet("AII000001"))
	require.NoError(t, err)
	assert.Equal(t, "AII123456", id)
}

func TestOrderIDGenerator_Exhausted(t *testing.T) {
	g := NewOrderIDGenerator("AII", 2)
	g.digits = sequenceDigits(1)
	g.now = func() time.Time { return time.Unix(1_700_000_001, 0) }

	_, err := g.Generate(context.Background(), takenSet("AII000001"))
	assert.ErrorIs(t, err, ErrOrderIDExhausted)
}

func TestOrderIDGenerator_PropagatesLookupError(t *testing.T) {
	g := NewOrderIDGenerator("AII", 2)
	boom := errors.New("connection reset")

	_, err := g.Generate(context.Background(), func(context.Context, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestOrderIDGenerator_DrawError(t *testing.T) {
	g := NewOrderIDGenerator("AII", 2)
	g.digits = func() (int64, error) { return 0, errors.New("entropy") }

	_, err := g.Generate(context.Background(), takenSet())
	assert.ErrorContains(t, err, "failed to draw order id")
}
