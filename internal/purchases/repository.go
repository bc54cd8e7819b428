package purchases

import (
	"context"
	"fmt"
	"time"

	"servetix/internal/notifications"
	"servetix/internal/shared/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, purchase *Purchase) error
	AttachSeats(ctx context.Context, purchaseID uint, seatIDs []uint) error
	DetachSeats(ctx context.Context, purchaseID uint) error
	OrderIDExists(ctx context.Context, orderID string) (bool, error)
	Update(ctx context.Context, purchase *Purchase) error

	GetByOrderID(ctx context.Context, orderID string) (*Purchase, error)
	// LockByOrderID reads the purchase row FOR UPDATE, without associations
	LockByOrderID(ctx context.Context, orderID string) (*Purchase, error)
	SeatIDs(ctx context.Context, purchaseID uint) ([]uint, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Purchase, error)

	// LockExpiredPending locks PENDING purchases whose hold ended, skipping
	// rows another sweeper already holds
	LockExpiredPending(ctx context.Context, now time.Time, limit int) ([]Purchase, error)

	ReminderTargets(ctx context.Context, from, to time.Time) ([]notifications.ReminderTarget, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, purchase *Purchase) error {
	if err := database.Conn(ctx, r.db).Omit("Seats").Create(purchase).Error; err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}
	return nil
}

func (r *repository) AttachSeats(ctx context.Context, purchaseID uint, seatIDs []uint) error {
	if len(seatIDs) == 0 {
		return nil
	}
	rows := make([]PurchaseSeat, len(seatIDs))
	for i, id := range seatIDs {
		rows[i] = PurchaseSeat{PurchaseID: purchaseID, SeatID: id}
	}
	if err := database.Conn(ctx, r.db).Create(&rows).Error; err != nil {
		return fmt.Errorf("attach seats: %w", err)
	}
	return nil
}

func (r *repository) DetachSeats(ctx context.Context, purchaseID uint) error {
	err := database.Conn(ctx, r.db).
		Where("purchase_id = ?", purchaseID).
		Delete(&PurchaseSeat{}).Error
	if err != nil {
		return fmt.Errorf("detach seats: %w", err)
	}
	return nil
}

func (r *repository) OrderIDExists(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).
		Model(&Purchase{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check order id: %w", err)
	}
	return count > 0, nil
}

func (r *repository) Update(ctx context.Context, purchase *Purchase) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Save(purchase).Error
}

func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*Purchase, error) {
	var purchase Purchase
	err := database.Conn(ctx, r.db).
		Preload("Seats", func(db *gorm.DB) *gorm.DB { return db.Order("seats.id ASC") }).
		Preload("Passengers").
		Where("order_id = ?", orderID).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repository) LockByOrderID(ctx context.Context, orderID string) (*Purchase, error) {
	var purchase Purchase
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// SeatIDs returns the seats linked to a purchase, ordered by id
func (r *repository) SeatIDs(ctx context.Context, purchaseID uint) ([]uint, error) {
	var ids []uint
	err := database.Conn(ctx, r.db).
		Model(&PurchaseSeat{}).
		Where("purchase_id = ?", purchaseID).
		Order("seat_id ASC").
		Pluck("seat_id", &ids).Error
	return ids, err
}

func (r *repository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Purchase, error) {
	var purchases []Purchase
	err := database.Conn(ctx, r.db).
		Preload("Seats", func(db *gorm.DB) *gorm.DB { return db.Order("seats.id ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&purchases).Error
	return purchases, err
}

// SKIP LOCKED lets concurrent sweepers split the work
func (r *repository) LockExpiredPending(ctx context.Context, now time.Time, limit int) ([]Purchase, error) {
	var purchases []Purchase
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", StatusPending, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&purchases).Error
	return purchases, err
}

// ReminderTargets lists CONFIRMED buyers of matches starting in [from, to)
func (r *repository) ReminderTargets(ctx context.Context, from, to time.Time) ([]notifications.ReminderTarget, error) {
	var targets []notifications.ReminderTarget
	err := database.Conn(ctx, r.db).
		Table("purchases AS p").
		Select(`p.order_id, p.buyer_name, p.buyer_email, m.id AS match_id, m.title AS match_title,
			m.start_time, COALESCE(v.name, '') AS venue_name`).
		Joins("JOIN matches m ON m.id = p.match_id").
		Joins("LEFT JOIN venues v ON v.id = m.venue_id").
		Where("p.status = ? AND m.start_time >= ? AND m.start_time < ?", StatusConfirmed, from, to).
		Order("m.start_time ASC, p.id ASC").
		Scan(&targets).Error
	return targets, err
}
