package digest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/partstock/inventory-api/internal/handler"
	digestService "github.com/partstock/inventory-api/internal/service/digest"
)

type Handler struct {
	service *digestService.Service
}

func NewHandler(service *digestService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	digests := r.Group("/digest")
	{
		digests.POST("/run", h.Run)
		digests.GET("/history", h.History)
	}
}

// Run triggers a digest attempt. Calling it on a day whose digest is
// already recorded is a successful no-op.
func (h *Handler) Run(c *gin.Context) {
	if err := h.service.Run(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "digest run completed"}))
}

func (h *Handler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	records, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}
