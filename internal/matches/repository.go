package matches

import (
	"context"
	"fmt"
	"time"

	"servetix/internal/shared/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, match *Match) error
	Update(ctx context.Context, match *Match) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Match, error)
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]Match, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)

	SaveCapacities(ctx context.Context, capacities []MatchSeatCapacity) error
	ListCapacities(ctx context.Context, matchID uint) ([]MatchSeatCapacity, error)
	DeleteCapacities(ctx context.Context, matchID uint) error

	// CountActivePurchases counts purchases of the match that still hold seats
	CountActivePurchases(ctx context.Context, matchID uint) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, match *Match) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(match).Error
}

func (r *repository) Update(ctx context.Context, match *Match) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Save(match).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return database.Conn(ctx, r.db).Delete(&Match{}, id).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Match, error) {
	var match Match
	err := database.Conn(ctx, r.db).
		Preload("Venue").
		Preload("TeamA").
		Preload("TeamB").
		First(&match, id).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *repository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]Match, error) {
	var list []Match
	err := database.Conn(ctx, r.db).
		Preload("Venue").
		Preload("TeamA").
		Preload("TeamB").
		Where("start_time >= ?", from).
		Order("start_time ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list upcoming matches: %w", err)
	}
	return list, nil
}

func (r *repository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	query := database.Conn(ctx, r.db).Model(&Match{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveCapacities upserts on (match_id, category_id)
func (r *repository) SaveCapacities(ctx context.Context, capacities []MatchSeatCapacity) error {
	if len(capacities) == 0 {
		return nil
	}
	return database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_id"}, {Name: "category_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"capacity"}),
		}).
		Create(&capacities).Error
}

func (r *repository) ListCapacities(ctx context.Context, matchID uint) ([]MatchSeatCapacity, error) {
	var list []MatchSeatCapacity
	err := database.Conn(ctx, r.db).
		Where("match_id = ?", matchID).
		Order("category_id ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) DeleteCapacities(ctx context.Context, matchID uint) error {
	return database.Conn(ctx, r.db).Where("match_id = ?", matchID).Delete(&MatchSeatCapacity{}).Error
}

func (r *repository) CountActivePurchases(ctx context.Context, matchID uint) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).
		Table("purchases").
		Where("match_id = ? AND status <> ?", matchID, "CANCELLED").
		Count(&count).Error
	return count, err
}
