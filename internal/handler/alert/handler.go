package alert

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/partstock/inventory-api/internal/handler"
	alertService "github.com/partstock/inventory-api/internal/service/alert"
)

type Handler struct {
	service *alertService.Service
}

func NewHandler(service *alertService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	alerts := r.Group("/alerts")
	{
		alerts.GET("/active", h.ListActive)
		alerts.GET("/recent", h.ListRecent)
		alerts.POST("/test-email", h.SendTestEmail)
	}
}

func (h *Handler) ListActive(c *gin.Context) {
	alerts, err := h.service.ActiveAlerts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alerts))
}

func (h *Handler) ListRecent(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))

	alerts, err := h.service.RecentAlerts(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alerts))
}

func (h *Handler) SendTestEmail(c *gin.Context) {
	recipients, err := h.service.SendTestEmail(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"message":    "test email sent",
		"recipients": recipients,
	}))
}
