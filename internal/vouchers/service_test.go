package vouchers

import (
	"context"
	"sync"
	"testing"
	"time"

	"servetix/internal/purchases"
	"servetix/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memRepo struct {
	mu       sync.Mutex
	vouchers []Voucher
	usages   []VoucherUsage
}

func (r *memRepo) Create(_ context.Context, v *Voucher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.vouchers {
		if existing.Code == v.Code {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	v.ID = uint(len(r.vouchers) + 1)
	r.vouchers = append(r.vouchers, *v)
	return nil
}

func (r *memRepo) List(context.Context) ([]Voucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Voucher(nil), r.vouchers...), nil
}

func (r *memRepo) GetByCode(_ context.Context, code string) (*Voucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vouchers {
		if v.Code == NormalizeCode(code) {
			found := v
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) CountUsages(_ context.Context, voucherID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.usages {
		if u.VoucherID == voucherID {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) HasUsage(_ context.Context, voucherID uint, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.usages {
		if u.VoucherID == voucherID && u.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) CreateUsage(_ context.Context, usage *VoucherUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.usages {
		if u.VoucherID == usage.VoucherID && u.UserID == usage.UserID {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	usage.ID = uint(len(r.usages) + 1)
	r.usages = append(r.usages, *usage)
	return nil
}

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, vouchers ...Voucher) (*service, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	for i := range vouchers {
		require.NoError(t, repo.Create(context.Background(), &vouchers[i]))
	}
	svc := NewService(repo).(*service)
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func voucher(code string, discountType DiscountType, value int64) Voucher {
	return Voucher{
		Code:         code,
		DiscountType: discountType,
		Value:        value,
		MaxUseCount:  10,
		ValidFrom:    testNow.Add(-24 * time.Hour),
		ValidUntil:   testNow.Add(24 * time.Hour),
		IsActive:     true,
	}
}

func TestVoucher_Discount(t *testing.T) {
	tests := []struct {
		name    string
		voucher Voucher
		base    int64
		want    int64
	}{
		{"fixed", voucher("A", DiscountFixed, 20000), 200000, 20000},
		{"fixed above base", voucher("A", DiscountFixed, 300000), 200000, 200000},
		{"percent", voucher("A", DiscountPercent, 15), 150000, 22500},
		{"percent rounds half up", voucher("A", DiscountPercent, 10), 995, 100},
		{"percent rounds down", voucher("A", DiscountPercent, 10), 994, 99},
		{"zero base", voucher("A", DiscountPercent, 50), 0, 0},
		{"unknown type", voucher("A", DiscountType("BOGO"), 50), 1000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.voucher.Discount(tt.base))
		})
	}
}

func TestVoucher_ActiveAt(t *testing.T) {
	v := voucher("A", DiscountFixed, 1)
	assert.True(t, v.ActiveAt(testNow))
	assert.True(t, v.ActiveAt(v.ValidUntil))
	assert.False(t, v.ActiveAt(v.ValidUntil.Add(time.Second)))
	assert.False(t, v.ActiveAt(v.ValidFrom.Add(-time.Second)))

	v.IsActive = false
	assert.False(t, v.ActiveAt(testNow))
}

func TestApplyDiscount(t *testing.T) {
	svc, _ := newTestService(t,
		voucher("HEMAT20", DiscountFixed, 20000),
		voucher("PERSEN10", DiscountPercent, 10),
	)
	buyer := purchases.Buyer{UserID: "user-1"}

	discount, err := svc.ApplyDiscount(context.Background(), 200000, "", buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(0), discount)

	discount, err = svc.ApplyDiscount(context.Background(), 200000, " hemat20 ", buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), discount)

	discount, err = svc.ApplyDiscount(context.Background(), 200000, "PERSEN10", purchases.Buyer{})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), discount)
}

func TestApplyDiscount_Rejections(t *testing.T) {
	inactive := voucher("OFF", DiscountFixed, 1000)
	inactive.IsActive = false
	expired := voucher("OLD", DiscountFixed, 1000)
	expired.ValidUntil = testNow.Add(-time.Hour)
	upcoming := voucher("SOON", DiscountFixed, 1000)
	upcoming.ValidFrom = testNow.Add(time.Hour)
	minimum := voucher("BIG", DiscountFixed, 1000)
	minimum.MinPurchaseAmount = 500000
	single := voucher("ONCE", DiscountFixed, 1000)
	single.MaxUseCount = 1

	svc, repo := newTestService(t, inactive, expired, upcoming, minimum, single)
	require.NoError(t, repo.CreateUsage(context.Background(), &VoucherUsage{VoucherID: 5, UserID: "someone"}))

	tests := []struct {
		code    string
		message string
	}{
		{"MISSING", "voucher code not found"},
		{"OFF", "voucher is inactive or has expired"},
		{"OLD", "voucher is inactive or has expired"},
		{"SOON", "voucher is inactive or has expired"},
		{"BIG", "minimum purchase for this voucher is Rp 500000"},
		{"ONCE", "voucher has reached its usage limit"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := svc.ApplyDiscount(context.Background(), 200000, tt.code, purchases.Buyer{UserID: "user-1"})
			require.Error(t, err)
			assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestApplyDiscount_OncePerUser(t *testing.T) {
	svc, _ := newTestService(t, voucher("HEMAT20", DiscountFixed, 20000))

	require.NoError(t, svc.RecordUsage(context.Background(), "hemat20", "user-1", 7))

	_, err := svc.ApplyDiscount(context.Background(), 200000, "HEMAT20", purchases.Buyer{UserID: "user-1"})
	assert.EqualError(t, err, "you have already used this voucher")

	_, err = svc.ApplyDiscount(context.Background(), 200000, "HEMAT20", purchases.Buyer{UserID: "user-2"})
	assert.NoError(t, err)

	err = svc.RecordUsage(context.Background(), "HEMAT20", "user-1", 8)
	assert.Equal(t, apperror.KindIntegrityConflict, apperror.KindOf(err))
}

func TestRecordUsage_MissingVoucherIsIgnored(t *testing.T) {
	svc, repo := newTestService(t)
	assert.NoError(t, svc.RecordUsage(context.Background(), "GONE", "user-1", 1))
	assert.Empty(t, repo.usages)
}

func TestValidate(t *testing.T) {
	svc, _ := newTestService(t, voucher("PERSEN10", DiscountPercent, 10))

	res, err := svc.Validate(context.Background(), ValidateRequest{Code: "persen10", Amount: 150000}, "")
	require.NoError(t, err)
	assert.Equal(t, "PERSEN10", res.Code)
	assert.Equal(t, int64(15000), res.DiscountAmount)
	assert.Equal(t, int64(135000), res.FinalAmount)

	_, err = svc.Validate(context.Background(), ValidateRequest{Code: "PERSEN10"}, "")
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)
	base := CreateVoucherRequest{
		DiscountType: DiscountPercent,
		Value:        25,
		ValidFrom:    testNow,
		ValidUntil:   testNow.Add(72 * time.Hour),
	}

	generated, err := svc.Create(context.Background(), base)
	require.NoError(t, err)
	assert.Len(t, generated.Code, generatedCodeLength)
	assert.Equal(t, 1, generated.MaxUseCount)
	assert.True(t, generated.IsActive)

	named := base
	named.Code = " merdeka "
	unlimited := 0
	named.MaxUseCount = &unlimited
	created, err := svc.Create(context.Background(), named)
	require.NoError(t, err)
	assert.Equal(t, "MERDEKA", created.Code)
	assert.Equal(t, 0, created.MaxUseCount)

	_, err = svc.Create(context.Background(), named)
	assert.Equal(t, apperror.KindIntegrityConflict, apperror.KindOf(err))

	tooMuch := base
	tooMuch.Value = 150
	_, err = svc.Create(context.Background(), tooMuch)
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))

	backwards := base
	backwards.ValidUntil = testNow.Add(-time.Hour)
	_, err = svc.Create(context.Background(), backwards)
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))

	badType := base
	badType.DiscountType = "BOGO"
	_, err = svc.Create(context.Background(), badType)
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
}
