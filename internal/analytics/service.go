package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"servetix/internal/shared/apperror"
	"servetix/internal/shared/constants"
	"servetix/pkg/cache"

	"gorm.io/gorm"
)

// dailySalesWindow is how far back the dashboard chart reaches
const dailySalesWindow = 30 * 24 * time.Hour

type Service interface {
	GetDashboard(ctx context.Context) (*DashboardAnalytics, error)
	GetMatchSales(ctx context.Context, matchID uint) (*MatchSales, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	now   func() time.Time
}

func NewService(repo Repository, cacheService cache.Service) Service {
	if cacheService == nil {
		cacheService = cache.NewNoopService()
	}
	return &service{repo: repo, cache: cacheService, now: time.Now}
}

func (s *service) GetDashboard(ctx context.Context) (*DashboardAnalytics, error) {
	var dashboard DashboardAnalytics
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_ANALYTICS_DASHBOARD, constants.TTL_ANALYTICS, func() (interface{}, error) {
		return s.buildDashboard(ctx)
	}, &dashboard)
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *service) buildDashboard(ctx context.Context) (*DashboardAnalytics, error) {
	now := s.now()

	// Match counts
	total, upcoming, err := s.repo.CountMatches(ctx, now)
	if err != nil {
		return nil, apperror.Unexpected("failed to count matches", err)
	}
	// Purchase totals by status
	totals, err := s.repo.PurchaseTotals(ctx, 0)
	if err != nil {
		return nil, apperror.Unexpected("failed to aggregate purchases", err)
	}
	// Seat occupancy
	seatsTotal, seatsBooked, err := s.repo.SeatTotals(ctx, 0)
	if err != nil {
		return nil, apperror.Unexpected("failed to count seats", err)
	}
	daily, err := s.repo.DailySales(ctx, now.Add(-dailySalesWindow))
	if err != nil {
		return nil, apperror.Unexpected("failed to aggregate daily sales", err)
	}
	if daily == nil {
		daily = []DailySales{}
	}

	return &DashboardAnalytics{
		TotalMatches:    total,
		UpcomingMatches: upcoming,
		Purchases:       summarize(totals),
		SeatsTotal:      seatsTotal,
		SeatsBooked:     seatsBooked,
		Occupancy:       percentage(seatsBooked, seatsTotal),
		DailySales:      daily,
		GeneratedAt:     now,
	}, nil
}

func (s *service) GetMatchSales(ctx context.Context, matchID uint) (*MatchSales, error) {
	if matchID == 0 {
		return nil, apperror.InvalidField("id", "invalid match id")
	}

	var sales MatchSales
	err := s.cache.GetOrSet(ctx, constants.BuildMatchSalesKey(matchID), constants.TTL_ANALYTICS, func() (interface{}, error) {
		return s.buildMatchSales(ctx, matchID)
	}, &sales)
	if err != nil {
		return nil, err
	}
	return &sales, nil
}

func (s *service) buildMatchSales(ctx context.Context, matchID uint) (*MatchSales, error) {
	header, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(fmt.Sprintf("match %d not found", matchID))
		}
		return nil, apperror.FromDB(err, "failed to load match")
	}

	categories, err := s.repo.CategoryBreakdown(ctx, matchID)
	if err != nil {
		return nil, apperror.Unexpected("failed to aggregate seats", err)
	}
	sold, err := s.repo.SoldByCategory(ctx, matchID)
	if err != nil {
		return nil, apperror.Unexpected("failed to count sold seats", err)
	}
	totals, err := s.repo.PurchaseTotals(ctx, matchID)
	if err != nil {
		return nil, apperror.Unexpected("failed to aggregate purchases", err)
	}

	sales := &MatchSales{
		Match:       *header,
		Categories:  make([]CategorySales, 0, len(categories)),
		Purchases:   summarize(totals),
		GeneratedAt: s.now(),
	}
	// Fill sold seats and revenue per category
	for _, c := range categories {
		c.SoldSeats = sold[c.CategoryID]
		c.Occupancy = percentage(c.BookedSeats, c.TotalSeats)
		c.GrossRevenue = c.SoldSeats * c.Price

		sales.TotalSeats += c.TotalSeats
		sales.BookedSeats += c.BookedSeats
		sales.SoldSeats += c.SoldSeats
		sales.Categories = append(sales.Categories, c)
	}
	sales.Occupancy = percentage(sales.BookedSeats, sales.TotalSeats)
	return sales, nil
}

func summarize(totals []StatusTotal) PurchaseOverview {
	var overview PurchaseOverview
	for _, t := range totals {
		overview.Total += t.Count
		switch t.Status {
		case "PENDING":
			overview.Pending = t.Count
		case "CONFIRMED":
			overview.Confirmed = t.Count
			overview.ConfirmedRevenue = t.Revenue
			overview.DiscountGiven = t.Discount
		case "CANCELLED":
			overview.Cancelled = t.Count
		}
	}
	overview.CancellationRate = percentage(overview.Cancelled, overview.Total)
	return overview
}

// percentage rounds to two decimals; an empty base yields 0
func percentage(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
