package analytics

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CountMatches(ctx context.Context, from time.Time) (total, upcoming int64, err error)
	GetMatch(ctx context.Context, matchID uint) (*MatchHeader, error)

	// PurchaseTotals groups purchases by status; matchID 0 covers every match
	PurchaseTotals(ctx context.Context, matchID uint) ([]StatusTotal, error)
	// SeatTotals counts seats; matchID 0 covers every match
	SeatTotals(ctx context.Context, matchID uint) (total, booked int64, err error)
	DailySales(ctx context.Context, since time.Time) ([]DailySales, error)

	CategoryBreakdown(ctx context.Context, matchID uint) ([]CategorySales, error)
	SoldByCategory(ctx context.Context, matchID uint) (map[uint]int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountMatches(ctx context.Context, from time.Time) (int64, int64, error) {
	var total, upcoming int64
	if err := r.db.WithContext(ctx).Table("matches").Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count matches: %w", err)
	}
	if err := r.db.WithContext(ctx).Table("matches").Where("start_time >= ?", from).Count(&upcoming).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count upcoming matches: %w", err)
	}
	return total, upcoming, nil
}

func (r *repository) GetMatch(ctx context.Context, matchID uint) (*MatchHeader, error) {
	var header MatchHeader
	err := r.db.WithContext(ctx).
		Table("matches").
		Select("id, title, start_time").
		Where("id = ?", matchID).
		Take(&header).Error
	if err != nil {
		return nil, err
	}
	return &header, nil
}

func (r *repository) PurchaseTotals(ctx context.Context, matchID uint) ([]StatusTotal, error) {
	var totals []StatusTotal
	query := r.db.WithContext(ctx).
		Table("purchases").
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_price), 0) AS revenue, COALESCE(SUM(discount_amount), 0) AS discount")
	if matchID != 0 {
		query = query.Where("match_id = ?", matchID)
	}
	if err := query.Group("status").Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate purchases: %w", err)
	}
	return totals, nil
}

func (r *repository) SeatTotals(ctx context.Context, matchID uint) (int64, int64, error) {
	var row struct {
		Total  int64
		Booked int64
	}
	query := r.db.WithContext(ctx).
		Table("seats").
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE is_booked) AS booked")
	if matchID != 0 {
		query = query.Where("match_id = ?", matchID)
	}
	if err := query.Scan(&row).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count seats: %w", err)
	}
	return row.Total, row.Booked, nil
}

func (r *repository) DailySales(ctx context.Context, since time.Time) ([]DailySales, error) {
	var days []DailySales
	err := r.db.WithContext(ctx).
		Table("purchases").
		Select("TO_CHAR(DATE(confirmed_at), 'YYYY-MM-DD') AS date, COUNT(*) AS purchases, COALESCE(SUM(total_price), 0) AS revenue").
		Where("status = ? AND confirmed_at >= ?", "CONFIRMED", since).
		Group("DATE(confirmed_at)").
		Order("DATE(confirmed_at) ASC").
		Scan(&days).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily sales: %w", err)
	}
	return days, nil
}

// CategoryBreakdown counts all and booked seats per category; booked
// includes PENDING holds
func (r *repository) CategoryBreakdown(ctx context.Context, matchID uint) ([]CategorySales, error) {
	var rows []CategorySales
	err := r.db.WithContext(ctx).
		Table("seats AS s").
		Select(`c.id AS category_id, c.name AS category, c.price AS price,
			COUNT(s.id) AS total_seats,
			COUNT(s.id) FILTER (WHERE s.is_booked) AS booked_seats`).
		Joins("JOIN seat_categories c ON c.id = s.category_id").
		Where("s.match_id = ?", matchID).
		Group("c.id, c.name, c.price").
		Order("c.price DESC, c.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate seats by category: %w", err)
	}
	return rows, nil
}

// SoldByCategory counts seats linked to CONFIRMED purchases
func (r *repository) SoldByCategory(ctx context.Context, matchID uint) (map[uint]int64, error) {
	var rows []struct {
		CategoryID uint
		Sold       int64
	}
	err := r.db.WithContext(ctx).
		Table("purchase_seats AS ps").
		Select("s.category_id AS category_id, COUNT(*) AS sold").
		Joins("JOIN purchases p ON p.id = ps.purchase_id").
		Joins("JOIN seats s ON s.id = ps.seat_id").
		Where("p.match_id = ? AND p.status = ?", matchID, "CONFIRMED").
		Group("s.category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count sold seats: %w", err)
	}

	// Index by category
	sold := make(map[uint]int64, len(rows))
	for _, row := range rows {
		sold[row.CategoryID] = row.Sold
	}
	return sold, nil
}
