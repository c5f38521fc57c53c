package part

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/partstock/inventory-api/internal/handler"
	"github.com/partstock/inventory-api/internal/model"
	"github.com/partstock/inventory-api/internal/repository"
	partService "github.com/partstock/inventory-api/internal/service/part"
	apperrors "github.com/partstock/inventory-api/pkg/errors"
)

type Handler struct {
	service *partService.Service
}

func NewHandler(service *partService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	parts := r.Group("/parts")
	{
		parts.POST("", h.CreatePart)
		parts.GET("", h.ListParts)
		parts.GET("/stats", h.GetStats)
		parts.GET("/:id", h.GetPart)
		parts.PUT("/:id", h.UpdatePart)
		parts.DELETE("/:id", h.DeletePart)
		parts.POST("/:id/adjust", h.AdjustQuantity)
	}
}

type partRequest struct {
	Name      string `json:"name" binding:"required"`
	Quantity  int    `json:"quantity" binding:"min=0"`
	Threshold int    `json:"threshold" binding:"min=0"`
	Supplier  string `json:"supplier"`
}

type adjustRequest struct {
	Action   string `json:"action" binding:"required,oneof=use restock set"`
	Quantity int    `json:"quantity" binding:"min=0"`
}

type partResponse struct {
	Part      *model.Part `json:"part"`
	AlertSent bool        `json:"alert_sent"`
}

func (h *Handler) CreatePart(c *gin.Context) {
	var req partRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	part := &model.Part{
		Name:      req.Name,
		Quantity:  req.Quantity,
		Threshold: req.Threshold,
		Supplier:  req.Supplier,
	}

	alertSent, err := h.service.CreatePart(c.Request.Context(), part)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(partResponse{Part: part, AlertSent: alertSent}))
}

func (h *Handler) GetPart(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid part ID"))
		return
	}

	part, err := h.service.GetPart(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(part))
}

func (h *Handler) ListParts(c *gin.Context) {
	parts, err := h.service.ListParts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(parts))
}

func (h *Handler) UpdatePart(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid part ID"))
		return
	}

	var req partRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	part, err := h.service.GetPart(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	part.Name = req.Name
	part.Quantity = req.Quantity
	part.Threshold = req.Threshold
	part.Supplier = req.Supplier

	alertSent, err := h.service.UpdatePart(c.Request.Context(), part)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(partResponse{Part: part, AlertSent: alertSent}))
}

func (h *Handler) DeletePart(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid part ID"))
		return
	}

	if err := h.service.DeletePart(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) AdjustQuantity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid part ID"))
		return
	}

	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	part, alertSent, err := h.service.AdjustQuantity(c.Request.Context(), id, model.AdjustAction(req.Action), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(partResponse{Part: part, AlertSent: alertSent}))
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func respondError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("part not found"))
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.ErrBadRequest {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(appErr.Message))
		return
	}

	c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
}
