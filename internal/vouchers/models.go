package vouchers

import (
	"fmt"
	"strings"
	"time"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFixed   DiscountType = "FIXED"
)

// Voucher is a discount code. MaxUseCount of 0 means unlimited.
type Voucher struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	Code              string       `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	DiscountType      DiscountType `gorm:"type:varchar(7);not null;default:'FIXED';check:discount_type IN ('PERCENT','FIXED')" json:"discount_type"`
	Value             int64        `gorm:"not null;check:value >= 0" json:"value"`
	MinPurchaseAmount int64        `gorm:"not null;default:0" json:"min_purchase_amount"`
	MaxUseCount       int          `gorm:"not null;default:1" json:"max_use_count"`
	ValidFrom         time.Time    `gorm:"not null" json:"valid_from"`
	ValidUntil        time.Time    `gorm:"not null" json:"valid_until"`
	IsActive          bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// VoucherUsage records one user redeeming a voucher. A user may redeem a
// voucher once.
type VoucherUsage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	VoucherID  uint      `gorm:"not null;index" json:"voucher_id"`
	UserID     string    `gorm:"type:varchar(64);not null" json:"user_id"`
	PurchaseID uint      `gorm:"not null" json:"purchase_id"`
	UsedAt     time.Time `gorm:"not null" json:"used_at"`
}

func (Voucher) TableName() string {
	return "vouchers"
}

func (VoucherUsage) TableName() string {
	return "voucher_usages"
}

// NormalizeCode is the form codes are stored and compared in
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ActiveAt reports whether the voucher may be redeemed at now
func (v *Voucher) ActiveAt(now time.Time) bool {
	return v.IsActive && !now.Before(v.ValidFrom) && !now.After(v.ValidUntil)
}

// Discount is the amount taken off base. Percentages round half up and a
// fixed value never exceeds base.
func (v *Voucher) Discount(base int64) int64 {
	if base <= 0 {
		return 0
	}
	switch v.DiscountType {
	case DiscountPercent:
		return (base*v.Value + 50) / 100
	case DiscountFixed:
		if v.Value > base {
			return base
		}
		return v.Value
	default:
		return 0
	}
}

func (v Voucher) String() string {
	return fmt.Sprintf("%s (%s: %d)", v.Code, v.DiscountType, v.Value)
}
