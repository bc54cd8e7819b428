package purchases

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"servetix/internal/shared/apperror"
	"servetix/internal/shared/middleware"
	"servetix/internal/shared/utils/response"
	"servetix/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	defaultQRSize = 256
	maxProofBytes = 5 << 20
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// BookByIDs handles POST /api/v1/matches/book
func (c *Controller) BookByIDs(ctx *gin.Context) {
	var req BookByIDsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondReservationError(ctx, apperror.InvalidInput(err.Error()))
		return
	}
	c.reserve(ctx, req.toInput(optionalUserID(ctx)))
}

// BookQuantity handles POST /api/v1/matches/book-quantity
func (c *Controller) BookQuantity(ctx *gin.Context) {
	var req BookQuantityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondReservationError(ctx, apperror.InvalidInput(err.Error()))
		return
	}
	c.reserve(ctx, req.toInput(optionalUserID(ctx)))
}

// CreatePurchase handles POST /api/v1/purchases
func (c *Controller) CreatePurchase(ctx *gin.Context) {
	// Get user from context
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreatePurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondReservationError(ctx, apperror.InvalidInput(err.Error()))
		return
	}

	// Fall back to email when the token carries no name
	name := identity.Name
	if name == "" {
		name = identity.Email
	}
	c.reserve(ctx, ReserveInput{
		MatchID:     req.MatchID,
		Request:     quantityRequest(req),
		Buyer:       Buyer{UserID: identity.UserID, Name: name, Email: identity.Email, Phone: req.BuyerPhone},
		VoucherCode: req.VoucherCode,
	})
}

func (c *Controller) reserve(ctx *gin.Context, in ReserveInput) {
	res, err := c.service.Reserve(ctx.Request.Context(), in)
	if err != nil {
		respondReservationError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, newReservationResponse(res))
}

func respondReservationError(ctx *gin.Context, err error) {
	kind := apperror.KindOf(err)
	code := apperror.HTTPStatus(kind)
	logger.GetDefault().LogHTTPError(ctx, err, code)

	body := ReservationResponse{OK: false, Msg: "internal server error"}
	var appErr *apperror.Error
	if errors.As(err, &appErr) && kind != apperror.KindUnexpected {
		body.Msg = appErr.Message
		body.Errors = appErr.Fields
	}
	ctx.JSON(code, body)
}

// GetPurchase handles GET /api/v1/purchases/:order_id
func (c *Controller) GetPurchase(ctx *gin.Context) {
	purchase, err := c.service.GetByOrderID(ctx.Request.Context(), actorOf(ctx), ctx.Param("order_id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Purchase retrieved successfully", purchase, nil)
}

// GetTicketQR handles GET /api/v1/purchases/:order_id/seats/:seat_id/qr.png
func (c *Controller) GetTicketQR(ctx *gin.Context) {
	seatID, err := strconv.ParseUint(ctx.Param("seat_id"), 10, 64)
	if err != nil || seatID == 0 {
		response.RespondError(ctx, apperror.InvalidField("seat_id", "invalid seat id"))
		return
	}

	// Parse optional size
	size := defaultQRSize
	if s, err := strconv.Atoi(ctx.Query("size")); err == nil && s >= 64 && s <= 1024 {
		size = s
	}

	png, err := c.service.TicketQR(ctx.Request.Context(), actorOf(ctx), ctx.Param("order_id"), uint(seatID), size)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "image/png", png)
}

// ConfirmPayment handles POST /api/v1/purchases/:order_id/pay. It accepts
// JSON, or multipart with the transfer receipt in the payment_proof field.
func (c *Controller) ConfirmPayment(ctx *gin.Context) {
	var req ConfirmPaymentRequest
	in := ConfirmInput{OrderID: ctx.Param("order_id")}

	// Bind multipart or JSON body
	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		if err := ctx.ShouldBind(&req); err != nil {
			response.RespondError(ctx, apperror.InvalidInput(err.Error()))
			return
		}
		if header, err := ctx.FormFile("payment_proof"); err == nil {
			if header.Size > maxProofBytes {
				response.RespondError(ctx, apperror.InvalidField("payment_proof", "payment proof must be at most 5MB"))
				return
			}
			file, err := header.Open()
			if err != nil {
				response.RespondError(ctx, apperror.InvalidField("payment_proof", "could not read uploaded file"))
				return
			}
			defer file.Close()
			in.Proof = file
		}
	} else if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, apperror.InvalidInput(err.Error()))
		return
	}

	in.PaymentMethod = req.PaymentMethod
	in.ProofURL = req.PaymentProofURL

	purchase, err := c.service.Confirm(ctx.Request.Context(), actorOf(ctx), in)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Payment confirmed, your e-ticket is ready", purchase, nil)
}

// CancelPurchase handles POST /api/v1/purchases/:order_id/cancel
func (c *Controller) CancelPurchase(ctx *gin.Context) {
	purchase, err := c.service.Cancel(ctx.Request.Context(), actorOf(ctx), ctx.Param("order_id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Purchase cancelled and seats released", purchase, nil)
}

// GetUserPurchases handles GET /api/v1/users/purchases
func (c *Controller) GetUserPurchases(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	// Parse pagination parameters
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	list, err := c.service.ListByUser(ctx.Request.Context(), identity.UserID, limit, offset)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Purchases retrieved successfully", list, nil)
}

// ExpireHolds handles POST /api/v1/admin/purchases/expire
func (c *Controller) ExpireHolds(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "100"))
	count, err := c.service.ExpirePending(ctx.Request.Context(), time.Now(), limit)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Expired holds released", gin.H{"expired": count}, nil)
}

func optionalUserID(ctx *gin.Context) string {
	if identity, ok := middleware.CurrentIdentity(ctx); ok {
		return identity.UserID
	}
	return ""
}

func actorOf(ctx *gin.Context) Actor {
	identity, _ := middleware.CurrentIdentity(ctx)
	return Actor{UserID: identity.UserID, Email: identity.Email, Admin: identity.IsAdmin()}
}
