package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seatView struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

func TestNewServiceWithoutClientIsNoop(t *testing.T) {
	svc := NewService(nil)

	var dest seatView
	assert.ErrorIs(t, svc.Get(context.Background(), "k", &dest), ErrCacheMiss)
	assert.NoError(t, svc.Set(context.Background(), "k", seatView{ID: 1}, time.Minute))
	assert.NoError(t, svc.DeletePattern(context.Background(), "servetix:*"))
}

func TestGetOrSetFallsThroughToFetcher(t *testing.T) {
	svc := NewNoopService()
	calls := 0

	var dest []seatView
	err := svc.GetOrSet(context.Background(), "seats", time.Minute, func() (interface{}, error) {
		calls++
		return []seatView{{ID: 1, Label: "C11"}, {ID: 2, Label: "C12"}}, nil
	}, &dest)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "C12", dest[1].Label)
}

func TestGetOrSetPropagatesFetcherError(t *testing.T) {
	svc := NewNoopService()
	boom := errors.New("db down")

	var dest []seatView
	err := svc.GetOrSet(context.Background(), "seats", time.Minute, func() (interface{}, error) {
		return nil, boom
	}, &dest)

	assert.ErrorIs(t, err, boom)
}
