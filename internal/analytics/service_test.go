package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"servetix/internal/shared/apperror"
	"servetix/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepo struct {
	matches    map[uint]MatchHeader
	upcoming   int64
	totals     map[uint][]StatusTotal
	seats      map[uint][2]int64
	categories map[uint][]CategorySales
	sold       map[uint]map[uint]int64
	daily      []DailySales
	err        error

	dailySince time.Time
	calls      int
}

func (f *fakeRepo) CountMatches(_ context.Context, _ time.Time) (int64, int64, error) {
	f.calls++
	return int64(len(f.matches)), f.upcoming, f.err
}

func (f *fakeRepo) GetMatch(_ context.Context, matchID uint) (*MatchHeader, error) {
	m, ok := f.matches[matchID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (f *fakeRepo) PurchaseTotals(_ context.Context, matchID uint) ([]StatusTotal, error) {
	return f.totals[matchID], f.err
}

func (f *fakeRepo) SeatTotals(_ context.Context, matchID uint) (int64, int64, error) {
	s := f.seats[matchID]
	return s[0], s[1], f.err
}

func (f *fakeRepo) DailySales(_ context.Context, since time.Time) ([]DailySales, error) {
	f.dailySince = since
	return f.daily, f.err
}

func (f *fakeRepo) CategoryBreakdown(_ context.Context, matchID uint) ([]CategorySales, error) {
	f.calls++
	return f.categories[matchID], f.err
}

func (f *fakeRepo) SoldByCategory(_ context.Context, matchID uint) (map[uint]int64, error) {
	return f.sold[matchID], f.err
}

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newFixture() *fakeRepo {
	return &fakeRepo{
		matches: map[uint]MatchHeader{
			1: {ID: 1, Title: "Persija vs Persib", StartTime: fixedNow.Add(72 * time.Hour)},
			2: {ID: 2, Title: "Arema vs Bali United", StartTime: fixedNow.Add(-24 * time.Hour)},
		},
		upcoming: 1,
		totals: map[uint][]StatusTotal{
			0: {
				{Status: "PENDING", Count: 2, Revenue: 150000},
				{Status: "CONFIRMED", Count: 5, Revenue: 900000, Discount: 50000},
				{Status: "CANCELLED", Count: 1, Revenue: 100000},
			},
			1: {
				{Status: "CONFIRMED", Count: 2, Revenue: 300000},
				{Status: "PENDING", Count: 1, Revenue: 100000},
			},
		},
		seats: map[uint][2]int64{0: {40, 13}},
		categories: map[uint][]CategorySales{
			1: {
				{CategoryID: 1, Category: "VIP", Price: 100000, TotalSeats: 4, BookedSeats: 3},
				{CategoryID: 2, Category: "Regular", Price: 50000, TotalSeats: 8, BookedSeats: 0},
			},
		},
		sold: map[uint]map[uint]int64{1: {1: 2}},
		daily: []DailySales{
			{Date: "2026-02-27", Purchases: 2, Revenue: 300000},
			{Date: "2026-02-28", Purchases: 3, Revenue: 600000},
		},
	}
}

func newTestService(repo Repository) *service {
	svc := NewService(repo, nil).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestGetDashboard(t *testing.T) {
	repo := newFixture()
	svc := newTestService(repo)

	dashboard, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), dashboard.TotalMatches)
	assert.Equal(t, int64(1), dashboard.UpcomingMatches)
	assert.Equal(t, PurchaseOverview{
		Total:            8,
		Pending:          2,
		Confirmed:        5,
		Cancelled:        1,
		CancellationRate: 12.5,
		ConfirmedRevenue: 900000,
		DiscountGiven:    50000,
	}, dashboard.Purchases)
	assert.Equal(t, int64(40), dashboard.SeatsTotal)
	assert.Equal(t, int64(13), dashboard.SeatsBooked)
	assert.Equal(t, 32.5, dashboard.Occupancy)
	assert.Len(t, dashboard.DailySales, 2)
	assert.True(t, dashboard.GeneratedAt.Equal(fixedNow))
	assert.True(t, repo.dailySince.Equal(fixedNow.Add(-dailySalesWindow)))
}

func TestGetDashboardEmptyStore(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	dashboard, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)

	assert.Zero(t, dashboard.Purchases.CancellationRate)
	assert.Zero(t, dashboard.Occupancy)
	assert.NotNil(t, dashboard.DailySales)
	assert.Empty(t, dashboard.DailySales)
}

func TestGetDashboardRepositoryFailure(t *testing.T) {
	repo := newFixture()
	repo.err = errors.New("connection reset")
	svc := newTestService(repo)

	_, err := svc.GetDashboard(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.KindUnexpected, apperror.KindOf(err))
}

func TestGetMatchSales(t *testing.T) {
	svc := newTestService(newFixture())

	sales, err := svc.GetMatchSales(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Persija vs Persib", sales.Match.Title)
	require.Len(t, sales.Categories, 2)

	vip := sales.Categories[0]
	assert.Equal(t, "VIP", vip.Category)
	assert.Equal(t, int64(2), vip.SoldSeats)
	assert.Equal(t, 75.0, vip.Occupancy)
	assert.Equal(t, int64(200000), vip.GrossRevenue)

	regular := sales.Categories[1]
	assert.Zero(t, regular.SoldSeats)
	assert.Zero(t, regular.Occupancy)
	assert.Zero(t, regular.GrossRevenue)

	assert.Equal(t, int64(12), sales.TotalSeats)
	assert.Equal(t, int64(3), sales.BookedSeats)
	assert.Equal(t, int64(2), sales.SoldSeats)
	assert.Equal(t, 25.0, sales.Occupancy)
	assert.Equal(t, int64(3), sales.Purchases.Total)
	assert.Equal(t, int64(1), sales.Purchases.Pending)
	assert.Equal(t, int64(300000), sales.Purchases.ConfirmedRevenue)
}

func TestGetMatchSalesWithoutSeats(t *testing.T) {
	svc := newTestService(newFixture())

	sales, err := svc.GetMatchSales(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, sales.Categories)
	assert.Zero(t, sales.Occupancy)
}

func TestGetMatchSalesErrors(t *testing.T) {
	svc := newTestService(newFixture())

	_, err := svc.GetMatchSales(context.Background(), 99)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.GetMatchSales(context.Background(), 0)
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
}

// memCache keeps JSON in memory so cache hits can be observed
type memCache struct {
	cache.Service
	entries map[string]interface{}
}

func (m *memCache) GetOrSet(_ context.Context, key string, _ time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if v, ok := m.entries[key]; ok {
		*dest.(*MatchSales) = *v.(*MatchSales)
		return nil
	}
	v, err := fetcher()
	if err != nil {
		return err
	}
	m.entries[key] = v
	*dest.(*MatchSales) = *v.(*MatchSales)
	return nil
}

func TestGetMatchSalesIsCached(t *testing.T) {
	repo := newFixture()
	svc := NewService(repo, &memCache{Service: cache.NewNoopService(), entries: map[string]interface{}{}})

	_, err := svc.GetMatchSales(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.GetMatchSales(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
}

func TestPercentage(t *testing.T) {
	assert.Zero(t, percentage(5, 0))
	assert.Equal(t, 33.33, percentage(1, 3))
	assert.Equal(t, 100.0, percentage(7, 7))
}
