package seats

import (
	"net/http"
	"strconv"

	"servetix/internal/shared/apperror"
	"servetix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetSeatMap handles GET /api/v1/matches/:id/seats
func (c *Controller) GetSeatMap(ctx *gin.Context) {
	matchID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || matchID == 0 {
		response.RespondError(ctx, apperror.InvalidField("id", "invalid match id"))
		return
	}

	seatMap, err := c.service.GetSeatMap(ctx.Request.Context(), uint(matchID))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map retrieved successfully", seatMap, nil)
}

// ListCategories handles GET /api/v1/categories
func (c *Controller) ListCategories(ctx *gin.Context) {
	categories, err := c.service.ListCategories(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Categories retrieved successfully", categories, nil)
}

// CreateCategory handles POST /api/v1/admin/categories
func (c *Controller) CreateCategory(ctx *gin.Context) {
	var req CreateCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	category, err := c.service.CreateCategory(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Category created successfully", category, nil)
}
