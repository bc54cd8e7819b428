package vouchers

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"servetix/internal/purchases"
	"servetix/internal/shared/apperror"
	"servetix/internal/shared/validation"
	"servetix/pkg/logger"

	"gorm.io/gorm"
)

const (
	generatedCodeLength  = 8
	generatedCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type CreateVoucherRequest struct {
	Code              string       `json:"code" validate:"omitempty,max=20"`
	DiscountType      DiscountType `json:"discount_type" validate:"required,oneof=PERCENT FIXED"`
	Value             int64        `json:"value" validate:"gte=0"`
	MinPurchaseAmount int64        `json:"min_purchase_amount" validate:"gte=0"`
	// MaxUseCount defaults to 1; 0 means unlimited
	MaxUseCount *int      `json:"max_use_count" validate:"omitempty,gte=0"`
	ValidFrom   time.Time `json:"valid_from" validate:"required"`
	ValidUntil  time.Time `json:"valid_until" validate:"required"`
	IsActive    *bool     `json:"is_active"`
}

type ValidateRequest struct {
	Code   string `json:"code" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

type ValidateResponse struct {
	Code           string `json:"code"`
	DiscountType   string `json:"discount_type"`
	DiscountAmount int64  `json:"discount_amount"`
	FinalAmount    int64  `json:"final_amount"`
}

// Service owns the voucher rules. It is the purchase flow's PricingHook
// and VoucherRecorder.
type Service interface {
	ApplyDiscount(ctx context.Context, baseAmount int64, code string, buyer purchases.Buyer) (int64, error)
	RecordUsage(ctx context.Context, code, userID string, purchaseID uint) error
	Validate(ctx context.Context, req ValidateRequest, userID string) (*ValidateResponse, error)

	Create(ctx context.Context, req CreateVoucherRequest) (*Voucher, error)
	List(ctx context.Context) ([]Voucher, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

var (
	_ purchases.PricingHook     = (*service)(nil)
	_ purchases.VoucherRecorder = (*service)(nil)
)

// ApplyDiscount returns 0 for an empty code. Every other rejection is an
// InvalidInput error on voucher_code, which aborts the reservation.
func (s *service) ApplyDiscount(ctx context.Context, baseAmount int64, code string, buyer purchases.Buyer) (int64, error) {
	if strings.TrimSpace(code) == "" {
		return 0, nil
	}

	voucher, err := s.redeemable(ctx, code, buyer.UserID, baseAmount)
	if err != nil {
		return 0, err
	}
	return voucher.Discount(baseAmount), nil
}

func (s *service) redeemable(ctx context.Context, code, userID string, amount int64) (*Voucher, error) {
	voucher, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rejected("voucher code not found")
		}
		return nil, apperror.FromDB(err, "failed to load voucher")
	}

	// Check active flag and validity window
	if !voucher.ActiveAt(s.now()) {
		return nil, rejected("voucher is inactive or has expired")
	}

	// Global usage limit
	if voucher.MaxUseCount > 0 {
		used, err := s.repo.CountUsages(ctx, voucher.ID)
		if err != nil {
			return nil, apperror.FromDB(err, "failed to count voucher usage")
		}
		if used >= int64(voucher.MaxUseCount) {
			return nil, rejected("voucher has reached its usage limit")
		}
	}

	// Minimum purchase
	if amount < voucher.MinPurchaseAmount {
		return nil, rejected(fmt.Sprintf("minimum purchase for this voucher is Rp %d", voucher.MinPurchaseAmount))
	}

	// One use per user
	if userID != "" {
		used, err := s.repo.HasUsage(ctx, voucher.ID, userID)
		if err != nil {
			return nil, apperror.FromDB(err, "failed to check voucher usage")
		}
		if used {
			return nil, rejected("you have already used this voucher")
		}
	}

	return voucher, nil
}

func rejected(message string) error {
	return apperror.InvalidField("voucher_code", message)
}

// RecordUsage runs inside the payment confirmation transaction
func (s *service) RecordUsage(ctx context.Context, code, userID string, purchaseID uint) error {
	voucher, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted after the reservation; nothing to record against
			logger.GetDefault().WarnContext(ctx, "Voucher disappeared before usage was recorded",
				slog.String("code", code), slog.Uint64("purchase_id", uint64(purchaseID)))
			return nil
		}
		return apperror.FromDB(err, "failed to load voucher")
	}

	usage := &VoucherUsage{
		VoucherID:  voucher.ID,
		UserID:     userID,
		PurchaseID: purchaseID,
		UsedAt:     s.now(),
	}
	if err := s.repo.CreateUsage(ctx, usage); err != nil {
		if apperror.IsUniqueViolation(err) {
			return apperror.IntegrityConflict(fmt.Sprintf("voucher %s was already used by this account", voucher.Code), err)
		}
		return apperror.FromDB(err, "failed to record voucher usage")
	}
	return nil
}

func (s *service) Validate(ctx context.Context, req ValidateRequest, userID string) (*ValidateResponse, error) {
	if req.Amount <= 0 {
		return nil, apperror.InvalidField("amount", "amount must be greater than zero")
	}

	voucher, err := s.redeemable(ctx, req.Code, userID, req.Amount)
	if err != nil {
		return nil, err
	}

	// Preview only, nothing is recorded
	discount := voucher.Discount(req.Amount)
	return &ValidateResponse{
		Code:           voucher.Code,
		DiscountType:   string(voucher.DiscountType),
		DiscountAmount: discount,
		FinalAmount:    req.Amount - discount,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreateVoucherRequest) (*Voucher, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if !req.ValidUntil.After(req.ValidFrom) {
		return nil, apperror.InvalidField("valid_until", "valid_until must be after valid_from")
	}
	if req.DiscountType == DiscountPercent && req.Value > 100 {
		return nil, apperror.InvalidField("value", "percentage discount cannot exceed 100")
	}

	// Generate a code when none is given
	code := NormalizeCode(req.Code)
	if code == "" {
		generated, err := generateCode()
		if err != nil {
			return nil, apperror.Unexpected("failed to generate voucher code", err)
		}
		code = generated
	}

	voucher := &Voucher{
		Code:              code,
		DiscountType:      req.DiscountType,
		Value:             req.Value,
		MinPurchaseAmount: req.MinPurchaseAmount,
		MaxUseCount:       1, // single use unless overridden
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		IsActive:          true,
	}
	if req.MaxUseCount != nil {
		voucher.MaxUseCount = *req.MaxUseCount
	}
	if req.IsActive != nil {
		voucher.IsActive = *req.IsActive
	}

	// Save voucher
	if err := s.repo.Create(ctx, voucher); err != nil {
		if apperror.IsUniqueViolation(err) {
			return nil, apperror.IntegrityConflict(fmt.Sprintf("voucher %s already exists", code), err)
		}
		return nil, apperror.FromDB(err, "failed to create voucher")
	}

	logger.GetDefault().InfoContext(ctx, "Voucher created",
		slog.String("code", voucher.Code),
		slog.String("discount_type", string(voucher.DiscountType)),
		slog.Int64("value", voucher.Value))
	return voucher, nil
}

func (s *service) List(ctx context.Context) ([]Voucher, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.FromDB(err, "failed to list vouchers")
	}
	return list, nil
}

func generateCode() (string, error) {
	var b strings.Builder
	charsetSize := big.NewInt(int64(len(generatedCodeCharset)))
	for i := 0; i < generatedCodeLength; i++ {
		n, err := rand.Int(rand.Reader, charsetSize)
		if err != nil {
			return "", err
		}
		b.WriteByte(generatedCodeCharset[n.Int64()])
	}
	return b.String(), nil
}
