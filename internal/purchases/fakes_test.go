package purchases

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"servetix/internal/notifications"
	"servetix/internal/seats"
	"servetix/internal/seats/seatstest"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// memRepo is an in-memory Repository. Pair it with dbtest.Transactor.
type memRepo struct {
	mu     sync.Mutex
	rows   map[uint]Purchase
	links  map[uint][]uint
	nextID uint
	seats  *seatstest.Repository

	// createFailures makes the next Create calls fail with a unique violation
	createFailures int
}

func newMemRepo(seatRepo *seatstest.Repository) *memRepo {
	return &memRepo{rows: make(map[uint]Purchase), links: make(map[uint][]uint), seats: seatRepo}
}

func (r *memRepo) Snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make(map[uint]Purchase, len(r.rows))
	for k, v := range r.rows {
		rows[k] = v
	}
	links := make(map[uint][]uint, len(r.links))
	for k, v := range r.links {
		links[k] = append([]uint(nil), v...)
	}
	nextID := r.nextID
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.rows, r.links, r.nextID = rows, links, nextID
	}
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *memRepo) Create(_ context.Context, p *Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createFailures > 0 {
		r.createFailures--
		return fmt.Errorf("create purchase: %w", &pgconn.PgError{Code: "23505", Message: "duplicate order id"})
	}
	for _, existing := range r.rows {
		if existing.OrderID == p.OrderID {
			return &pgconn.PgError{Code: "23505", Message: "duplicate order id"}
		}
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	for i := range p.Passengers {
		p.Passengers[i].PurchaseID = p.ID
	}
	stored := *p
	stored.Seats = nil
	r.rows[p.ID] = stored
	return nil
}

func (r *memRepo) AttachSeats(_ context.Context, purchaseID uint, seatIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[purchaseID] = append(r.links[purchaseID], seatIDs...)
	return nil
}

func (r *memRepo) DetachSeats(_ context.Context, purchaseID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, purchaseID)
	return nil
}

func (r *memRepo) OrderIDExists(_ context.Context, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) Update(_ context.Context, p *Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *p
	stored.Seats = nil
	r.rows[p.ID] = stored
	return nil
}

func (r *memRepo) find(orderID string) (*Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.OrderID == orderID {
			found := p
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) GetByOrderID(ctx context.Context, orderID string) (*Purchase, error) {
	p, err := r.find(orderID)
	if err != nil {
		return nil, err
	}
	ids, _ := r.SeatIDs(ctx, p.ID)
	p.Seats, _ = r.seats.GetByIDs(ctx, ids)
	return p, nil
}

func (r *memRepo) LockByOrderID(_ context.Context, orderID string) (*Purchase, error) {
	return r.find(orderID)
}

func (r *memRepo) SeatIDs(_ context.Context, purchaseID uint) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := append([]uint(nil), r.links[purchaseID]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *memRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Purchase
	for _, p := range r.rows {
		if p.UserID != nil && *p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) LockExpiredPending(_ context.Context, now time.Time, limit int) ([]Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Purchase
	for _, p := range r.rows {
		if p.HoldExpired(now) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) ReminderTargets(context.Context, time.Time, time.Time) ([]notifications.ReminderTarget, error) {
	return nil, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []*notifications.Notification
}

func (p *recordingPublisher) Publish(_ context.Context, n *notifications.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []notifications.NotificationType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notifications.NotificationType, len(p.sent))
	for i, n := range p.sent {
		out[i] = n.Type
	}
	return out
}

// fixedDiscount is a PricingHook that always returns the same discount
type fixedDiscount struct {
	amount int64
	err    error
	calls  int
}

func (f *fixedDiscount) ApplyDiscount(context.Context, int64, string, Buyer) (int64, error) {
	f.calls++
	return f.amount, f.err
}

type usageRecorder struct {
	codes []string
}

func (u *usageRecorder) RecordUsage(_ context.Context, code, _ string, _ uint) error {
	u.codes = append(u.codes, code)
	return nil
}

type fakeQR struct {
	content string
}

func (q *fakeQR) PNG(content string, _ int) ([]byte, error) {
	q.content = content
	return []byte("png:" + content), nil
}

type fakeSeatMaps struct {
	mu      sync.Mutex
	matches []uint
}

func (f *fakeSeatMaps) InvalidateSeatMap(_ context.Context, matchID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = append(f.matches, matchID)
}

// sequenceDigits returns the given draws in order, then repeats the last
func sequenceDigits(draws ...int64) func() (int64, error) {
	var mu sync.Mutex
	i := 0
	return func() (int64, error) {
		mu.Lock()
		defer mu.Unlock()
		d := draws[i]
		if i < len(draws)-1 {
			i++
		}
		return d, nil
	}
}

var _ seats.Repository = (*seatstest.Repository)(nil)
