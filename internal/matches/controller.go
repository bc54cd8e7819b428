package matches

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

func parseMatchID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.RespondError(ctx, apperror.InvalidField("id", "invalid match id"))
		return 0, false
	}
	return uint(id), true
}

// ListUpcoming handles GET /api/v1/matches?limit=
func (c *Controller) ListUpcoming(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	result, err := c.service.ListUpcoming(ctx.Request.Context(), limit)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Matches retrieved successfully", result, nil)
}

func (c *Controller) GetMatch(ctx *gin.Context) {
	id, ok := parseMatchID(ctx)
	if !ok {
		return
	}

	match, err := c.service.GetMatch(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Match retrieved successfully", match, nil)
}

func (c *Controller) CreateMatch(ctx *gin.Context) {
	var req CreateMatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	match, err := c.service.CreateMatch(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Match created successfully", match, nil)
}

func (c *Controller) UpdateMatch(ctx *gin.Context) {
	id, ok := parseMatchID(ctx)
	if !ok {
		return
	}

	var req UpdateMatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	match, err := c.service.UpdateMatch(ctx.Request.Context(), id, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Match updated successfully", match, nil)
}

func (c *Controller) DeleteMatch(ctx *gin.Context) {
	id, ok := parseMatchID(ctx)
	if !ok {
		return
	}

	if err := c.service.DeleteMatch(ctx.Request.Context(), id); err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Match deleted successfully", nil, nil)
}
