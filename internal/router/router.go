package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/partstock/inventory-api/internal/handler"
	"github.com/partstock/inventory-api/internal/middleware"
)

// Handler registers a resource's routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
}

type Router struct {
	engine   *gin.Engine
	healthH  *handler.HealthHandler
	handlers []Handler
}

func NewRouter(config Config, healthH *handler.HealthHandler, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		rateLimiter.RateLimit(),
	)

	return &Router{
		engine:   engine,
		healthH:  healthH,
		handlers: handlers,
	}
}

func (r *Router) Setup() {
	r.engine.GET("/health/live", r.healthH.LivenessCheck)
	r.engine.GET("/health/ready", r.healthH.ReadinessCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
