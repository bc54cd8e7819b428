package purchases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"servetix/internal/notifications"
	"servetix/internal/seats"
	"servetix/internal/shared/apperror"
	"servetix/internal/shared/database"
	"servetix/internal/shared/validation"
	"servetix/pkg/logger"
	"servetix/pkg/metrics"

	"gorm.io/gorm"
)

// Buyer is the contact the purchase is issued to. UserID is empty for
// guest checkouts.
type Buyer struct {
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"buyer_name" validate:"required,max=100"`
	Email  string `json:"buyer_email" validate:"required,email,max=254"`
	Phone  string `json:"buyer_phone" validate:"required,max=20"`
}

// Actor is the authenticated caller of a purchase operation
type Actor struct {
	UserID string
	Email  string
	Admin  bool
}

// PricingHook computes the discount for a voucher code. Any error aborts
// the reservation.
type PricingHook interface {
	ApplyDiscount(ctx context.Context, baseAmount int64, voucherCode string, buyer Buyer) (int64, error)
}

// VoucherRecorder records that a buyer used a voucher
type VoucherRecorder interface {
	RecordUsage(ctx context.Context, voucherCode, userID string, purchaseID uint) error
}

// MatchInfo is what the purchase flow needs to know about a match
type MatchInfo struct {
	ID        uint
	Title     string
	StartTime time.Time
}

type MatchLookup interface {
	LookupMatch(ctx context.Context, matchID uint) (*MatchInfo, error)
}

// MatchLookupFunc adapts a function to MatchLookup
type MatchLookupFunc func(ctx context.Context, matchID uint) (*MatchInfo, error)

func (f MatchLookupFunc) LookupMatch(ctx context.Context, matchID uint) (*MatchInfo, error) {
	return f(ctx, matchID)
}

type SeatMapInvalidator interface {
	InvalidateSeatMap(ctx context.Context, matchID uint)
}

type QREncoder interface {
	PNG(content string, size int) ([]byte, error)
}

type ProofUploader interface {
	UploadPaymentProof(ctx context.Context, orderID string, file io.Reader) (string, error)
}

type PassengerInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
}

// ReserveInput is one checkout. Passengers is optional for ByIDs and
// ByQuantity; when given it must name one passenger per seat.
type ReserveInput struct {
	MatchID     uint                    `json:"match_id" validate:"required"`
	Request     seats.AllocationRequest `json:"-"`
	Buyer       Buyer                   `json:"buyer"`
	Passengers  []PassengerInput        `json:"passengers" validate:"dive"`
	VoucherCode string                  `json:"voucher_code" validate:"max=50"`
}

type AssignedSeat struct {
	SeatID    uint   `json:"seat_id"`
	SeatLabel string `json:"seat_label"`
	Category  string `json:"category"`
	Price     int64  `json:"price"`
}

// Reservation is the committed result of Reserve
type Reservation struct {
	Purchase *Purchase
	Assigned []AssignedSeat
}

type ConfirmInput struct {
	OrderID       string
	PaymentMethod string
	ProofURL      string
	// Proof, when set, is uploaded and replaces ProofURL
	Proof io.Reader
}

type Service interface {
	Reserve(ctx context.Context, in ReserveInput) (*Reservation, error)
	Confirm(ctx context.Context, actor Actor, in ConfirmInput) (*Purchase, error)
	Cancel(ctx context.Context, actor Actor, orderID string) (*Purchase, error)
	ExpirePending(ctx context.Context, now time.Time, limit int) (int, error)

	GetByOrderID(ctx context.Context, actor Actor, orderID string) (*Purchase, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Purchase, error)
	TicketQR(ctx context.Context, actor Actor, orderID string, seatID uint, size int) ([]byte, error)
}

// Deps are the collaborators of the purchase service. Pricing, Vouchers,
// SeatMaps, QR and Proofs are optional.
type Deps struct {
	Repo       Repository
	Seats      seats.Repository
	Transactor database.Transactor
	OrderIDs   *OrderIDGenerator
	Matches    MatchLookup
	Pricing    PricingHook
	Vouchers   VoucherRecorder
	Notifier   notifications.Publisher
	SeatMaps   SeatMapInvalidator
	QR         QREncoder
	Proofs     ProofUploader
}

type Options struct {
	// ReservationTimeout bounds the whole reservation, lock waits included
	ReservationTimeout time.Duration
	// HoldTTL > 0 gives every PENDING purchase an expiry
	HoldTTL time.Duration
	// MaxAttempts is how often a reservation that hit an integrity
	// conflict is run again
	MaxAttempts int
}

type service struct {
	Deps
	allocator *seats.Allocator
	opts      Options
	now       func() time.Time
}

func NewService(deps Deps, opts Options) Service {
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewLogPublisher()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	return &service{
		Deps:      deps,
		allocator: seats.NewAllocator(deps.Seats),
		opts:      opts,
		now:       time.Now,
	}
}

// RESERVATION

func (s *service) Reserve(ctx context.Context, in ReserveInput) (*Reservation, error) {
	start := time.Now()
	kind := "unknown"
	if in.Request != nil {
		kind = string(in.Request.Kind())
	}

	res, err := s.reserve(ctx, in)

	// Record metrics
	metrics.ReservationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	metrics.ReservationsTotal.WithLabelValues(kind, outcome(err)).Inc()

	if err != nil {
		logger.GetDefault().LogReservationRejected(ctx, in.MatchID, string(apperror.KindOf(err)), err.Error())
		return nil, err
	}

	p := res.Purchase
	metrics.SeatsBookedTotal.Add(float64(len(res.Assigned)))
	logger.GetDefault().LogPurchaseReserved(ctx, p.OrderID, p.MatchID, len(res.Assigned), p.TotalPrice)
	s.invalidateSeatMap(ctx, p.MatchID)

	// Send reservation notification
	n := s.purchaseNotification(ctx, notifications.TypePurchaseReserved, p).
		With("seats", seatLabels(res.Assigned)).
		With("total_price", fmt.Sprintf("%d", p.TotalPrice))
	if p.ExpiresAt != nil {
		n.With("expires_at", p.ExpiresAt.Format(time.RFC1123))
	}
	s.publish(ctx, n)

	return res, nil
}

func (s *service) reserve(ctx context.Context, in ReserveInput) (*Reservation, error) {
	// Validate request
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := seats.Validate(in.Request); err != nil {
		return nil, err
	}

	passengers, err := passengerList(in)
	if err != nil {
		return nil, err
	}

	// Check match exists
	if s.Matches != nil {
		if _, err := s.Matches.LookupMatch(ctx, in.MatchID); err != nil {
			return nil, apperror.FromDB(err, "failed to load match")
		}
	}

	if s.opts.ReservationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ReservationTimeout)
		defer cancel()
	}

	var res *Reservation
	for attempt := 1; ; attempt++ {
		res, err = s.reserveOnce(ctx, in, passengers)
		if err == nil || apperror.KindOf(err) != apperror.KindIntegrityConflict ||
			attempt >= s.opts.MaxAttempts || ctx.Err() != nil {
			break
		}
		logger.GetDefault().WarnContext(ctx, "Retrying reservation after integrity conflict",
			slog.Int("attempt", attempt), slog.Any("error", err))
	}
	return res, err
}

// reserveOnce is one all-or-nothing attempt: any error rolls back the
// seat locks, the purchase row and the booked flags together
func (s *service) reserveOnce(ctx context.Context, in ReserveInput, passengers []PassengerInput) (*Reservation, error) {
	var res *Reservation

	err := s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		// Lock the seats the request asks for
		allocated, err := s.allocator.Allocate(ctx, in.MatchID, in.Request)
		if err != nil {
			return err
		}

		categories, err := s.categoriesOf(ctx, allocated)
		if err != nil {
			return err
		}

		// Price seats by category
		var base int64
		assigned := make([]AssignedSeat, len(allocated))
		for i, seat := range allocated {
			category := categories[seat.CategoryID]
			base += category.Price
			assigned[i] = AssignedSeat{
				SeatID:    seat.ID,
				SeatLabel: seat.Label(),
				Category:  category.Name,
				Price:     category.Price,
			}
		}

		discount, err := s.discount(ctx, base, in.VoucherCode, in.Buyer)
		if err != nil {
			return err
		}

		// Generate order id
		orderID, err := s.OrderIDs.Generate(ctx, s.Repo.OrderIDExists)
		if err != nil {
			if errors.Is(err, ErrOrderIDExhausted) {
				return apperror.IntegrityConflict("could not allocate a unique order id", err)
			}
			return apperror.FromDB(err, "failed to generate order id")
		}

		purchase := &Purchase{
			OrderID:        orderID,
			MatchID:        in.MatchID,
			BuyerName:      strings.TrimSpace(in.Buyer.Name),
			BuyerEmail:     strings.TrimSpace(in.Buyer.Email),
			BuyerPhone:     strings.TrimSpace(in.Buyer.Phone),
			BaseAmount:     base,
			DiscountAmount: discount,
			TotalPrice:     base - discount,
			VoucherCode:    strings.TrimSpace(in.VoucherCode),
			Status:         StatusPending,
		}
		if in.Buyer.UserID != "" {
			userID := in.Buyer.UserID
			purchase.UserID = &userID
		}
		if s.opts.HoldTTL > 0 {
			expires := s.now().Add(s.opts.HoldTTL)
			purchase.ExpiresAt = &expires
		}
		for i, p := range passengers {
			purchase.Passengers = append(purchase.Passengers, Passenger{
				SeatID: allocated[i].ID,
				Name:   strings.TrimSpace(p.Name),
				Email:  strings.TrimSpace(p.Email),
			})
		}

		// Create purchase
		if err := s.Repo.Create(ctx, purchase); err != nil {
			return apperror.FromDB(err, "failed to create purchase")
		}

		// Link and book seats
		seatIDs := seats.IDs(allocated)
		if err := s.Repo.AttachSeats(ctx, purchase.ID, seatIDs); err != nil {
			return apperror.FromDB(err, "failed to attach seats")
		}
		if err := s.Seats.MarkBooked(ctx, seatIDs); err != nil {
			return apperror.FromDB(err, "failed to mark seats booked")
		}

		purchase.Seats = allocated
		res = &Reservation{Purchase: purchase, Assigned: assigned}
		return nil
	})
	if err != nil {
		return nil, apperror.FromDB(err, "reservation failed")
	}
	return res, nil
}

// passengerList returns one passenger per requested seat, or none
func passengerList(in ReserveInput) ([]PassengerInput, error) {
	if r, ok := in.Request.(seats.ByPassengerCategories); ok {
		if len(in.Passengers) > 0 && len(in.Passengers) != len(r.Passengers) {
			return nil, apperror.InvalidField("passengers", "number of passengers must match number of seats")
		}
		list := make([]PassengerInput, len(r.Passengers))
		for i, p := range r.Passengers {
			list[i] = PassengerInput{Name: p.Name}
			if len(in.Passengers) > 0 {
				list[i].Email = in.Passengers[i].Email
			}
			if strings.TrimSpace(list[i].Name) == "" {
				return nil, apperror.InvalidField(fmt.Sprintf("passengers[%d].name", i), "passenger name is required")
			}
		}
		return list, nil
	}

	if len(in.Passengers) > 0 && len(in.Passengers) != in.Request.Count() {
		return nil, apperror.InvalidField("passengers", "number of passengers must match number of seats")
	}
	return in.Passengers, nil
}

func (s *service) categoriesOf(ctx context.Context, allocated []seats.Seat) (map[uint]seats.SeatCategory, error) {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, seat := range allocated {
		if _, ok := seen[seat.CategoryID]; !ok {
			seen[seat.CategoryID] = struct{}{}
			ids = append(ids, seat.CategoryID)
		}
	}

	list, err := s.Seats.GetCategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.FromDB(err, "failed to load seat prices")
	}
	byID := make(map[uint]seats.SeatCategory, len(list))
	for _, c := range list {
		byID[c.ID] = c
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, apperror.NotFound(fmt.Sprintf("seat category %d not found", id))
		}
	}
	return byID, nil
}

// discount asks the pricing hook and clamps its answer to [0, base]
func (s *service) discount(ctx context.Context, base int64, code string, buyer Buyer) (int64, error) {
	if s.Pricing == nil {
		return 0, nil
	}
	d, err := s.Pricing.ApplyDiscount(ctx, base, strings.TrimSpace(code), buyer)
	if err != nil {
		return 0, err
	}
	return clampDiscount(d, base), nil
}

func clampDiscount(discount, base int64) int64 {
	if discount < 0 {
		return 0
	}
	if discount > base {
		return base
	}
	return discount
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeReserved
	}
	switch apperror.KindOf(err) {
	case apperror.KindInvalidInput:
		return metrics.OutcomeInvalid
	case apperror.KindNotFound:
		return metrics.OutcomeNotFound
	case apperror.KindSeatsUnavailable:
		return metrics.OutcomeUnavailable
	case apperror.KindIntegrityConflict:
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}

// PAYMENT CONFIRMATION

func (s *service) Confirm(ctx context.Context, actor Actor, in ConfirmInput) (*Purchase, error) {
	method, ok := ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return nil, apperror.InvalidField("payment_method", "payment method must be one of BRI, BCA, Mandiri, Gopay, QRIS")
	}

	// Upload proof file if provided
	proofURL := strings.TrimSpace(in.ProofURL)
	if in.Proof != nil {
		if s.Proofs == nil {
			return nil, apperror.InvalidField("payment_proof", "file upload is not configured, send payment_proof_url instead")
		}
		// Reject settled orders before anything is uploaded
		p, err := s.loadOwned(ctx, actor, in.OrderID)
		if err != nil {
			return nil, err
		}
		if !p.Status.CanTransitionTo(StatusConfirmed) {
			return nil, apperror.IntegrityConflict(fmt.Sprintf("purchase %s is already %s", p.OrderID, p.Status), nil)
		}
		url, err := s.Proofs.UploadPaymentProof(ctx, in.OrderID, in.Proof)
		if err != nil {
			return nil, apperror.Unexpected("failed to upload payment proof", err)
		}
		proofURL = url
	}
	if method.RequiresProof() && proofURL == "" {
		return nil, apperror.InvalidField("payment_proof", fmt.Sprintf("payment proof is required for %s transfers", method))
	}

	var purchase *Purchase
	err := s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.lockOwned(ctx, actor, in.OrderID)
		if err != nil {
			return err
		}
		if !p.Status.CanTransitionTo(StatusConfirmed) {
			return apperror.IntegrityConflict(fmt.Sprintf("purchase %s is already %s", p.OrderID, p.Status), nil)
		}
		if p.HoldExpired(s.now()) {
			return apperror.IntegrityConflict(fmt.Sprintf("seat hold for %s has expired", p.OrderID), nil)
		}

		// Update purchase status
		p.Confirm(method, proofURL, s.now())
		if err := s.Repo.Update(ctx, p); err != nil {
			return apperror.FromDB(err, "failed to confirm purchase")
		}

		// Issue ticket data per seat
		seatIDs, err := s.Repo.SeatIDs(ctx, p.ID)
		if err != nil {
			return apperror.FromDB(err, "failed to load purchase seats")
		}
		for _, id := range seatIDs {
			if err := s.Seats.SetQRCodeData(ctx, id, QRCodeData(p.OrderID, id)); err != nil {
				return apperror.FromDB(err, "failed to store ticket data")
			}
		}

		// Record voucher usage
		if p.VoucherCode != "" && p.UserID != nil && s.Vouchers != nil {
			if err := s.Vouchers.RecordUsage(ctx, p.VoucherCode, *p.UserID, p.ID); err != nil {
				return err
			}
		}

		purchase = p
		return nil
	})
	if err != nil {
		return nil, apperror.FromDB(err, "payment confirmation failed")
	}

	logger.GetDefault().LogPurchaseConfirmed(ctx, purchase.OrderID, string(method))

	// Reload with seats and their ticket data
	if full, err := s.Repo.GetByOrderID(ctx, purchase.OrderID); err == nil {
		purchase = full
	}
	s.publish(ctx, s.purchaseNotification(ctx, notifications.TypePurchaseConfirmed, purchase).
		With("payment_method", string(method)))
	return purchase, nil
}

// CANCELLATION AND EXPIRY

func (s *service) Cancel(ctx context.Context, actor Actor, orderID string) (*Purchase, error) {
	var (
		purchase *Purchase
		released int
	)
	err := s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.lockOwned(ctx, actor, orderID)
		if err != nil {
			return err
		}
		if !p.Status.CanTransitionTo(StatusCancelled) {
			return apperror.IntegrityConflict(fmt.Sprintf("purchase %s is already %s", p.OrderID, p.Status), nil)
		}

		released, err = s.cancelLocked(ctx, p)
		if err != nil {
			return err
		}
		purchase = p
		return nil
	})
	if err != nil {
		return nil, apperror.FromDB(err, "cancellation failed")
	}

	metrics.SeatsReleasedTotal.WithLabelValues("cancelled").Add(float64(released))
	logger.GetDefault().LogPurchaseCancelled(ctx, purchase.OrderID, "cancelled", released)
	s.invalidateSeatMap(ctx, purchase.MatchID)
	s.publish(ctx, s.purchaseNotification(ctx, notifications.TypePurchaseCancelled, purchase))
	return purchase, nil
}

// ExpirePending cancels up to limit PENDING purchases whose hold ended
// before now and releases their seats
func (s *service) ExpirePending(ctx context.Context, now time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}

	type expiredPurchase struct {
		purchase Purchase
		released int
	}
	var expired []expiredPurchase

	err := s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		pending, err := s.Repo.LockExpiredPending(ctx, now, limit)
		if err != nil {
			return apperror.FromDB(err, "failed to load expired holds")
		}
		for i := range pending {
			p := &pending[i]
			released, err := s.cancelLocked(ctx, p)
			if err != nil {
				return err
			}
			expired = append(expired, expiredPurchase{purchase: *p, released: released})
		}
		return nil
	})
	if err != nil {
		return 0, apperror.FromDB(err, "hold expiry failed")
	}

	matches := make(map[uint]struct{})
	for _, e := range expired {
		p := e.purchase
		metrics.SeatsReleasedTotal.WithLabelValues("expired").Add(float64(e.released))
		logger.GetDefault().LogPurchaseCancelled(ctx, p.OrderID, "expired", e.released)
		s.publish(ctx, s.purchaseNotification(ctx, notifications.TypePurchaseExpired, &p))
		matches[p.MatchID] = struct{}{}
	}
	for matchID := range matches {
		s.invalidateSeatMap(ctx, matchID)
	}
	return len(expired), nil
}

// cancelLocked cancels a purchase whose row is already locked, releases
// its seats and unlinks them in the same transaction. Only the seat labels
// stay on the cancelled purchase.
func (s *service) cancelLocked(ctx context.Context, p *Purchase) (int, error) {
	seatIDs, err := s.Repo.SeatIDs(ctx, p.ID)
	if err != nil {
		return 0, apperror.FromDB(err, "failed to load purchase seats")
	}
	held, err := s.Seats.GetByIDs(ctx, seatIDs)
	if err != nil {
		return 0, apperror.FromDB(err, "failed to load purchase seats")
	}

	p.Cancel(s.now())
	p.ReleasedSeats = joinSeatLabels(held)
	if err := s.Repo.Update(ctx, p); err != nil {
		return 0, apperror.FromDB(err, "failed to cancel purchase")
	}

	// Free the seats, then drop the links so a later order owns them alone
	if err := s.Seats.Release(ctx, seatIDs); err != nil {
		return 0, apperror.FromDB(err, "failed to release seats")
	}
	if err := s.Repo.DetachSeats(ctx, p.ID); err != nil {
		return 0, apperror.FromDB(err, "failed to unlink released seats")
	}
	p.Seats = nil
	return len(seatIDs), nil
}

// READS

func (s *service) GetByOrderID(ctx context.Context, actor Actor, orderID string) (*Purchase, error) {
	return s.loadOwned(ctx, actor, orderID)
}

func (s *service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Purchase, error) {
	if userID == "" {
		return nil, apperror.InvalidInput("user id is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.Repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperror.FromDB(err, "failed to list purchases")
	}
	return list, nil
}

// TicketQR renders the QR code of one seat of a confirmed purchase
func (s *service) TicketQR(ctx context.Context, actor Actor, orderID string, seatID uint, size int) ([]byte, error) {
	if s.QR == nil {
		return nil, apperror.Unexpected("QR encoding is not configured", nil)
	}

	p, err := s.loadOwned(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if !p.IsConfirmed() {
		return nil, apperror.InvalidInput(fmt.Sprintf("purchase %s is %s, tickets are issued after payment", p.OrderID, p.Status))
	}

	for _, seat := range p.Seats {
		if seat.ID != seatID {
			continue
		}
		data := QRCodeData(p.OrderID, seat.ID)
		if seat.QRCodeData != nil {
			data = *seat.QRCodeData
		}
		png, err := s.QR.PNG(data, size)
		if err != nil {
			return nil, apperror.Unexpected("failed to render QR code", err)
		}
		return png, nil
	}
	return nil, apperror.NotFound(fmt.Sprintf("seat %d is not part of purchase %s", seatID, p.OrderID))
}

func (s *service) loadOwned(ctx context.Context, actor Actor, orderID string) (*Purchase, error) {
	p, err := s.Repo.GetByOrderID(ctx, strings.TrimSpace(orderID))
	return s.checkOwned(p, err, actor, orderID)
}

func (s *service) lockOwned(ctx context.Context, actor Actor, orderID string) (*Purchase, error) {
	p, err := s.Repo.LockByOrderID(ctx, strings.TrimSpace(orderID))
	return s.checkOwned(p, err, actor, orderID)
}

func (s *service) checkOwned(p *Purchase, err error, actor Actor, orderID string) (*Purchase, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(fmt.Sprintf("purchase %s not found", orderID))
		}
		return nil, apperror.FromDB(err, "failed to load purchase")
	}
	if !p.OwnedBy(actor) {
		return nil, apperror.Forbidden("you do not have access to this purchase")
	}
	return p, nil
}

// SIDE EFFECTS

func (s *service) purchaseNotification(ctx context.Context, notType notifications.NotificationType, p *Purchase) *notifications.Notification {
	n := notifications.New(notType, p.BuyerEmail, p.BuyerName).WithOrder(p.OrderID, p.MatchID)
	if s.Matches != nil {
		// Best effort, the message is still useful without the title
		if m, err := s.Matches.LookupMatch(ctx, p.MatchID); err == nil {
			n.With("match_title", m.Title)
		}
	}
	switch {
	case len(p.Seats) > 0:
		n.With("seats", joinSeatLabels(p.Seats))
	case p.ReleasedSeats != "":
		n.With("seats", p.ReleasedSeats)
	}
	return n
}

// publish runs after commit; a broker failure never undoes a purchase
func (s *service) publish(ctx context.Context, n *notifications.Notification) {
	if err := s.Notifier.Publish(ctx, n); err != nil {
		logger.GetDefault().WarnContext(ctx, "Failed to publish notification",
			slog.String("type", string(n.Type)),
			slog.String("order_id", n.OrderID),
			slog.Any("error", err))
	}
}

func (s *service) invalidateSeatMap(ctx context.Context, matchID uint) {
	if s.SeatMaps != nil {
		s.SeatMaps.InvalidateSeatMap(ctx, matchID)
	}
}

func joinSeatLabels(list []seats.Seat) string {
	labels := make([]string, len(list))
	for i, seat := range list {
		labels[i] = seat.Label()
	}
	return strings.Join(labels, ", ")
}

func seatLabels(assigned []AssignedSeat) string {
	labels := make([]string, len(assigned))
	for i, a := range assigned {
		labels[i] = a.SeatLabel
	}
	sort.Strings(labels)
	return strings.Join(labels, ", ")
}
