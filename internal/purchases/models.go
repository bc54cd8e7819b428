package purchases

import (
	"strconv"
	"strings"
	"time"

	"servetix/internal/seats"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether s may move to next. PENDING may be
// confirmed or cancelled, CONFIRMED may only be cancelled and CANCELLED is
// terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

type PaymentMethod string

const (
	PaymentBRI     PaymentMethod = "BRI"
	PaymentBCA     PaymentMethod = "BCA"
	PaymentMandiri PaymentMethod = "Mandiri"
	PaymentGopay   PaymentMethod = "Gopay"
	PaymentQRIS    PaymentMethod = "QRIS"
)

var paymentMethods = []PaymentMethod{PaymentBRI, PaymentBCA, PaymentMandiri, PaymentGopay, PaymentQRIS}

// ParsePaymentMethod matches case-insensitively
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	s = strings.TrimSpace(s)
	for _, m := range paymentMethods {
		if strings.EqualFold(string(m), s) {
			return m, true
		}
	}
	return "", false
}

// RequiresProof is true for bank transfers, which are checked by hand
func (m PaymentMethod) RequiresProof() bool {
	return m == PaymentBRI || m == PaymentBCA || m == PaymentMandiri
}

// Purchase binds a buyer to the seats allocated for one checkout
type Purchase struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	OrderID string  `gorm:"type:varchar(16);uniqueIndex;not null" json:"order_id"`
	UserID  *string `gorm:"type:varchar(64);index" json:"user_id,omitempty"`
	MatchID uint    `gorm:"not null;index" json:"match_id"`

	BuyerName  string `gorm:"type:varchar(100);not null" json:"buyer_name"`
	BuyerEmail string `gorm:"type:varchar(254);not null" json:"buyer_email"`
	BuyerPhone string `gorm:"type:varchar(20);not null" json:"buyer_phone"`

	BaseAmount     int64  `gorm:"not null;check:base_amount >= 0" json:"base_amount"`
	DiscountAmount int64  `gorm:"not null;default:0;check:discount_amount >= 0" json:"discount_amount"`
	TotalPrice     int64  `gorm:"not null;check:total_price >= 0" json:"total_price"`
	VoucherCode    string `gorm:"type:varchar(50)" json:"voucher_code,omitempty"`

	Status          Status        `gorm:"type:varchar(10);not null;default:'PENDING';check:status IN ('PENDING','CONFIRMED','CANCELLED')" json:"status"`
	PaymentMethod   PaymentMethod `gorm:"type:varchar(10)" json:"payment_method,omitempty"`
	PaymentProofURL string        `gorm:"type:varchar(500)" json:"payment_proof_url,omitempty"`

	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// ReleasedSeats keeps the seat labels of a cancelled purchase, whose
	// seat links are removed so the seats can belong to a new order
	ReleasedSeats string `gorm:"type:varchar(500)" json:"released_seats,omitempty"`

	Seats      []seats.Seat `gorm:"many2many:purchase_seats;" json:"seats,omitempty"`
	Passengers []Passenger  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE;" json:"passengers,omitempty"`
}

// PurchaseSeat is a row of the purchase_seats join table
type PurchaseSeat struct {
	PurchaseID uint `gorm:"primaryKey"`
	SeatID     uint `gorm:"primaryKey"`
}

// Passenger is the named holder of one seat of a purchase
type Passenger struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PurchaseID uint   `gorm:"not null;index" json:"purchase_id"`
	SeatID     uint   `gorm:"not null" json:"seat_id"`
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
	Email      string `gorm:"type:varchar(254)" json:"email,omitempty"`
}

func (Purchase) TableName() string {
	return "purchases"
}

func (PurchaseSeat) TableName() string {
	return "purchase_seats"
}

func (Passenger) TableName() string {
	return "purchase_passengers"
}

func (p *Purchase) IsPending() bool {
	return p.Status == StatusPending
}

func (p *Purchase) IsConfirmed() bool {
	return p.Status == StatusConfirmed
}

func (p *Purchase) IsCancelled() bool {
	return p.Status == StatusCancelled
}

// HoldExpired is true when a PENDING purchase has outlived its hold
func (p *Purchase) HoldExpired(now time.Time) bool {
	return p.IsPending() && p.ExpiresAt != nil && !now.Before(*p.ExpiresAt)
}

func (p *Purchase) Confirm(method PaymentMethod, proofURL string, now time.Time) {
	p.Status = StatusConfirmed
	p.PaymentMethod = method
	p.PaymentProofURL = proofURL
	p.ConfirmedAt = &now
	p.UpdatedAt = now
}

func (p *Purchase) Cancel(now time.Time) {
	p.Status = StatusCancelled
	p.CancelledAt = &now
	p.UpdatedAt = now
}

// OwnedBy reports whether actor may see or act on the purchase
func (p *Purchase) OwnedBy(actor Actor) bool {
	if actor.Admin {
		return true
	}
	if p.UserID != nil && actor.UserID != "" {
		return *p.UserID == actor.UserID
	}
	return actor.Email != "" && strings.EqualFold(p.BuyerEmail, actor.Email)
}

// QRCodeData is the payload printed on the e-ticket of one seat
func QRCodeData(orderID string, seatID uint) string {
	return "SERVETIX-" + orderID + "-" + strconv.FormatUint(uint64(seatID), 10)
}
