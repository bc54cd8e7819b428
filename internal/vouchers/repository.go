package vouchers

import (
	"context"
	"fmt"

	"servetix/internal/shared/database"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, voucher *Voucher) error
	List(ctx context.Context) ([]Voucher, error)
	GetByCode(ctx context.Context, code string) (*Voucher, error)
	CountUsages(ctx context.Context, voucherID uint) (int64, error)
	HasUsage(ctx context.Context, voucherID uint, userID string) (bool, error)
	CreateUsage(ctx context.Context, usage *VoucherUsage) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, voucher *Voucher) error {
	return database.Conn(ctx, r.db).Create(voucher).Error
}

func (r *repository) List(ctx context.Context) ([]Voucher, error) {
	var list []Voucher
	if err := database.Conn(ctx, r.db).Order("valid_until DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	return list, nil
}

// GetByCode matches case-insensitively
func (r *repository) GetByCode(ctx context.Context, code string) (*Voucher, error) {
	var voucher Voucher
	err := database.Conn(ctx, r.db).
		Where("UPPER(code) = ?", NormalizeCode(code)).
		First(&voucher).Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *repository) CountUsages(ctx context.Context, voucherID uint) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).
		Model(&VoucherUsage{}).
		Where("voucher_id = ?", voucherID).
		Count(&count).Error
	return count, err
}

func (r *repository) HasUsage(ctx context.Context, voucherID uint, userID string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).
		Model(&VoucherUsage{}).
		Where("voucher_id = ? AND user_id = ?", voucherID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateUsage(ctx context.Context, usage *VoucherUsage) error {
	return database.Conn(ctx, r.db).Create(usage).Error
}
