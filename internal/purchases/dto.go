package purchases

import (
	"strings"
	"time"

	"servetix/internal/seats"
)

type PassengerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Category string `json:"category"`
}

type BuyerRequest struct {
	BuyerName  string `json:"buyer_name" binding:"required"`
	BuyerEmail string `json:"buyer_email" binding:"required"`
	BuyerPhone string `json:"buyer_phone" binding:"required"`
}

// BookByIDsRequest reserves seats picked on the seat map
type BookByIDsRequest struct {
	MatchID uint   `json:"match_id" binding:"required"`
	SeatIDs []uint `json:"seat_ids" binding:"required"`
	BuyerRequest
	Passengers  []PassengerRequest `json:"passengers"`
	VoucherCode string             `json:"voucher_code"`
}

// BookQuantityRequest reserves by category and quantity, or one seat per
// passenger when each passenger names a category
type BookQuantityRequest struct {
	MatchID      uint   `json:"match_id" binding:"required"`
	CategoryName string `json:"category_name"`
	Quantity     int    `json:"quantity"`
	BuyerRequest
	Passengers  []PassengerRequest `json:"passengers"`
	VoucherCode string             `json:"voucher_code"`
}

// CreatePurchaseRequest is the authenticated checkout; the buyer's name
// and email come from the token
type CreatePurchaseRequest struct {
	MatchID     uint   `json:"match_id" binding:"required"`
	CategoryID  uint   `json:"category_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
	BuyerPhone  string `json:"buyer_phone" binding:"required"`
	VoucherCode string `json:"voucher_code"`
}

type ConfirmPaymentRequest struct {
	PaymentMethod   string `json:"payment_method" form:"payment_method" binding:"required"`
	PaymentProofURL string `json:"payment_proof_url" form:"payment_proof_url"`
}

// ReservationResponse is the reservation payload, success or failure
type ReservationResponse struct {
	OK             bool              `json:"ok"`
	OrderID        string            `json:"order_id,omitempty"`
	Status         Status            `json:"status,omitempty"`
	TotalPrice     int64             `json:"total_price"`
	DiscountAmount int64             `json:"discount_amount"`
	Assigned       []AssignedSeat    `json:"assigned,omitempty"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
	Msg            string            `json:"msg,omitempty"`
	Errors         map[string]string `json:"errors,omitempty"`
}

func (b BuyerRequest) buyer(userID string) Buyer {
	return Buyer{UserID: userID, Name: b.BuyerName, Email: b.BuyerEmail, Phone: b.BuyerPhone}
}

func passengerInputs(list []PassengerRequest) []PassengerInput {
	if len(list) == 0 {
		return nil
	}
	out := make([]PassengerInput, len(list))
	for i, p := range list {
		out[i] = PassengerInput{Name: p.Name, Email: p.Email}
	}
	return out
}

func (r BookByIDsRequest) toInput(userID string) ReserveInput {
	return ReserveInput{
		MatchID:     r.MatchID,
		Request:     seats.ByIDs{SeatIDs: r.SeatIDs},
		Buyer:       r.buyer(userID),
		Passengers:  passengerInputs(r.Passengers),
		VoucherCode: r.VoucherCode,
	}
}

func (r BookQuantityRequest) toInput(userID string) ReserveInput {
	in := ReserveInput{
		MatchID:     r.MatchID,
		Buyer:       r.buyer(userID),
		VoucherCode: r.VoucherCode,
	}

	if strings.TrimSpace(r.CategoryName) == "" && len(r.Passengers) > 0 {
		mixed := seats.ByPassengerCategories{}
		for _, p := range r.Passengers {
			mixed.Passengers = append(mixed.Passengers, seats.PassengerCategory{Name: p.Name, Category: p.Category})
		}
		in.Request = mixed
		in.Passengers = passengerInputs(r.Passengers)
		return in
	}

	in.Request = seats.ByQuantity{Category: r.CategoryName, Quantity: r.Quantity}
	in.Passengers = passengerInputs(r.Passengers)
	return in
}

func newReservationResponse(res *Reservation) ReservationResponse {
	p := res.Purchase
	return ReservationResponse{
		OK:             true,
		OrderID:        p.OrderID,
		Status:         p.Status,
		TotalPrice:     p.TotalPrice,
		DiscountAmount: p.DiscountAmount,
		Assigned:       res.Assigned,
		ExpiresAt:      p.ExpiresAt,
		Msg:            "Seats reserved, complete payment to receive your e-ticket",
	}
}

func quantityRequest(r CreatePurchaseRequest) seats.AllocationRequest {
	return seats.ByQuantity{CategoryID: r.CategoryID, Quantity: r.Quantity}
}
