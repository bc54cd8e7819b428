package vouchers

import (
	"net/http"

	"servetix/internal/shared/middleware"
	"servetix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ValidateVoucher handles POST /api/v1/vouchers/validate
func (c *Controller) ValidateVoucher(ctx *gin.Context) {
	var req ValidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID := ""
	if identity, ok := middleware.CurrentIdentity(ctx); ok {
		userID = identity.UserID
	}

	result, err := c.service.Validate(ctx.Request.Context(), req, userID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Voucher applied", result, nil)
}

// CreateVoucher handles POST /api/v1/admin/vouchers
func (c *Controller) CreateVoucher(ctx *gin.Context) {
	var req CreateVoucherRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	voucher, err := c.service.Create(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Voucher created successfully", voucher, nil)
}

// ListVouchers handles GET /api/v1/admin/vouchers
func (c *Controller) ListVouchers(ctx *gin.Context) {
	list, err := c.service.List(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Vouchers retrieved successfully", list, nil)
}
