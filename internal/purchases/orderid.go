package purchases

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"servetix/pkg/metrics"
)

// ErrOrderIDExhausted means every random draw and the timestamp fallback
// were already taken
var ErrOrderIDExhausted = errors.New("order id generation exhausted")

const orderIDDigits = 6

// OrderIDGenerator produces human readable order ids: a fixed prefix
// followed by six digits
type OrderIDGenerator struct {
	prefix      string
	maxAttempts int
	digits      func() (int64, error)
	now         func() time.Time
}

func NewOrderIDGenerator(prefix string, maxAttempts int) *OrderIDGenerator {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &OrderIDGenerator{
		prefix:      prefix,
		maxAttempts: maxAttempts,
		digits:      randomDigits,
		now:         time.Now,
	}
}

func randomDigits() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// Generate draws up to maxAttempts random ids and returns the first one
// exists reports as free. After that it tries the last six digits of the
// current unix time once before giving up with ErrOrderIDExhausted.
func (g *OrderIDGenerator) Generate(ctx context.Context, exists func(ctx context.Context, orderID string) (bool, error)) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		n, err := g.digits()
		if err != nil {
			return "", fmt.Errorf("failed to draw order id: %w", err)
		}

		candidate := g.format(n)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		metrics.OrderIDCollisionsTotal.Inc()
	}

	fallback := g.format(g.now().Unix() % 1_000_000)
	taken, err := exists(ctx, fallback)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrOrderIDExhausted
	}
	return fallback, nil
}

func (g *OrderIDGenerator) format(n int64) string {
	return fmt.Sprintf("%s%0*d", g.prefix, orderIDDigits, n)
}
