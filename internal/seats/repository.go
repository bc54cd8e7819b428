package seats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"servetix/internal/shared/apperror"
	"servetix/internal/shared/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockMode selects how locking reads behave when a row is already locked
type LockMode string

const (
	// LockWait blocks until the lock is released or lock_timeout fires
	LockWait LockMode = "wait"
	// LockNoWait fails immediately
	LockNoWait LockMode = "nowait"
	// LockSkipLocked skips rows another transaction holds
	LockSkipLocked LockMode = "skip_locked"
)

// ParseLockMode falls back to LockWait for unknown values
func ParseLockMode(s string) LockMode {
	switch LockMode(strings.ToLower(strings.TrimSpace(s))) {
	case LockNoWait:
		return LockNoWait
	case LockSkipLocked:
		return LockSkipLocked
	default:
		return LockWait
	}
}

func (m LockMode) locking() clause.Locking {
	switch m {
	case LockNoWait:
		return clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}
	case LockSkipLocked:
		return clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}
	default:
		return clause.Locking{Strength: "UPDATE"}
	}
}

// Repository is the seat store. Locking reads must run inside a
// transaction opened by database.Transactor; the locks are held until it
// commits or rolls back.
type Repository interface {
	LockAvailableSeats(ctx context.Context, matchID, categoryID uint, limit int) ([]Seat, error)
	LockAvailableSeatsByID(ctx context.Context, matchID uint, seatIDs []uint) ([]Seat, error)
	MarkBooked(ctx context.Context, seatIDs []uint) error
	Release(ctx context.Context, seatIDs []uint) error
	SetQRCodeData(ctx context.Context, seatID uint, data string) error

	CreateSeats(ctx context.Context, seats []Seat) error
	ListByMatch(ctx context.Context, matchID uint) ([]Seat, error)
	GetByIDs(ctx context.Context, seatIDs []uint) ([]Seat, error)
	CountByCategory(ctx context.Context, matchID, categoryID uint) (int64, error)
	DeleteByMatch(ctx context.Context, matchID uint) error

	CreateCategory(ctx context.Context, category *SeatCategory) error
	ListCategories(ctx context.Context) ([]SeatCategory, error)
	GetCategoryByID(ctx context.Context, id uint) (*SeatCategory, error)
	GetCategoryByName(ctx context.Context, name string) (*SeatCategory, error)
	GetCategoriesByIDs(ctx context.Context, ids []uint) ([]SeatCategory, error)
}

type repository struct {
	db       *gorm.DB
	lockMode LockMode
}

func NewRepository(db *gorm.DB, lockMode LockMode) Repository {
	return &repository{db: db, lockMode: lockMode}
}

var errNoTransaction = errors.New("locking read outside of a transaction")

// LOCKING READS

// LockAvailableSeats locks up to limit free seats of a category, lowest id
// first. Fewer seats than limit means the category is short.
func (r *repository) LockAvailableSeats(ctx context.Context, matchID, categoryID uint, limit int) ([]Seat, error) {
	if !database.InTransaction(ctx) {
		return nil, errNoTransaction
	}
	if limit <= 0 {
		return nil, nil
	}

	var seats []Seat
	err := database.Conn(ctx, r.db).
		Clauses(r.lockMode.locking()).
		Where("match_id = ? AND category_id = ? AND is_booked = ?", matchID, categoryID, false).
		Order("id ASC").
		Limit(limit).
		Find(&seats).Error
	if err != nil {
		return nil, fmt.Errorf("lock available seats: %w", err)
	}
	return seats, nil
}

// LockAvailableSeatsByID returns only the requested seats that are still free
func (r *repository) LockAvailableSeatsByID(ctx context.Context, matchID uint, seatIDs []uint) ([]Seat, error) {
	if !database.InTransaction(ctx) {
		return nil, errNoTransaction
	}
	if len(seatIDs) == 0 {
		return nil, nil
	}

	var seats []Seat
	err := database.Conn(ctx, r.db).
		Clauses(r.lockMode.locking()).
		Where("match_id = ? AND id IN ? AND is_booked = ?", matchID, seatIDs, false).
		Order("id ASC").
		Find(&seats).Error
	if err != nil {
		return nil, fmt.Errorf("lock seats by id: %w", err)
	}
	return seats, nil
}

// MarkBooked flips exactly seatIDs to booked. Fewer affected rows than ids
// means a seat changed under us and the caller's transaction must abort.
func (r *repository) MarkBooked(ctx context.Context, seatIDs []uint) error {
	if len(seatIDs) == 0 {
		return nil
	}

	result := database.Conn(ctx, r.db).
		Model(&Seat{}).
		Where("id IN ? AND is_booked = ?", seatIDs, false).
		Update("is_booked", true)
	if result.Error != nil {
		return fmt.Errorf("mark seats booked: %w", result.Error)
	}
	if result.RowsAffected != int64(len(seatIDs)) {
		return apperror.IntegrityConflict("seat state changed during reservation",
			fmt.Errorf("marked %d of %d seats", result.RowsAffected, len(seatIDs)))
	}
	return nil
}

// Release returns seats to availability and drops their ticket data
func (r *repository) Release(ctx context.Context, seatIDs []uint) error {
	if len(seatIDs) == 0 {
		return nil
	}

	err := database.Conn(ctx, r.db).
		Model(&Seat{}).
		Where("id IN ?", seatIDs).
		Updates(map[string]interface{}{"is_booked": false, "qr_code_data": nil}).Error
	if err != nil {
		return fmt.Errorf("release seats: %w", err)
	}
	return nil
}

func (r *repository) SetQRCodeData(ctx context.Context, seatID uint, data string) error {
	return database.Conn(ctx, r.db).
		Model(&Seat{}).
		Where("id = ?", seatID).
		Update("qr_code_data", data).Error
}

// SEAT CRUD

func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	if len(seats) == 0 {
		return nil
	}
	return database.Conn(ctx, r.db).CreateInBatches(&seats, 500).Error
}

func (r *repository) ListByMatch(ctx context.Context, matchID uint) ([]Seat, error) {
	var seats []Seat
	err := database.Conn(ctx, r.db).
		Where("match_id = ?", matchID).
		Order("category_id ASC, seat_col ASC, id ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetByIDs(ctx context.Context, seatIDs []uint) ([]Seat, error) {
	var seats []Seat
	if len(seatIDs) == 0 {
		return seats, nil
	}
	err := database.Conn(ctx, r.db).
		Where("id IN ?", seatIDs).
		Order("id ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) CountByCategory(ctx context.Context, matchID, categoryID uint) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).
		Model(&Seat{}).
		Where("match_id = ? AND category_id = ?", matchID, categoryID).
		Count(&count).Error
	return count, err
}

func (r *repository) DeleteByMatch(ctx context.Context, matchID uint) error {
	return database.Conn(ctx, r.db).Delete(&Seat{}, "match_id = ?", matchID).Error
}

// CATEGORIES

func (r *repository) CreateCategory(ctx context.Context, category *SeatCategory) error {
	return database.Conn(ctx, r.db).Create(category).Error
}

func (r *repository) ListCategories(ctx context.Context) ([]SeatCategory, error) {
	var categories []SeatCategory
	err := database.Conn(ctx, r.db).Order("price DESC, id ASC").Find(&categories).Error
	return categories, err
}

func (r *repository) GetCategoryByID(ctx context.Context, id uint) (*SeatCategory, error) {
	var category SeatCategory
	if err := database.Conn(ctx, r.db).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) GetCategoryByName(ctx context.Context, name string) (*SeatCategory, error) {
	var category SeatCategory
	err := database.Conn(ctx, r.db).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) GetCategoriesByIDs(ctx context.Context, ids []uint) ([]SeatCategory, error) {
	var categories []SeatCategory
	if len(ids) == 0 {
		return categories, nil
	}
	err := database.Conn(ctx, r.db).Where("id IN ?", ids).Find(&categories).Error
	return categories, err
}
