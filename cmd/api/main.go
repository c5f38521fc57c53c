package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/partstock/inventory-api/internal/config"
	"github.com/partstock/inventory-api/internal/email"
	"github.com/partstock/inventory-api/internal/handler"
	alertHandler "github.com/partstock/inventory-api/internal/handler/alert"
	digestHandler "github.com/partstock/inventory-api/internal/handler/digest"
	partHandler "github.com/partstock/inventory-api/internal/handler/part"
	"github.com/partstock/inventory-api/internal/repository/postgres"
	"github.com/partstock/inventory-api/internal/router"
	alertService "github.com/partstock/inventory-api/internal/service/alert"
	digestService "github.com/partstock/inventory-api/internal/service/digest"
	partService "github.com/partstock/inventory-api/internal/service/part"
	"github.com/partstock/inventory-api/internal/service/recipient"
	"github.com/partstock/inventory-api/pkg/logger"
	"github.com/partstock/inventory-api/pkg/messaging"
	"github.com/partstock/inventory-api/pkg/messaging/redis"
	"github.com/partstock/inventory-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var broker messaging.Broker = messaging.NewNoopBroker()
	if cfg.Redis.URL != "" {
		broker, err = redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
	}
	defer broker.Close()

	appMetrics := metrics.NewMetrics("partstock")

	// Repositories
	base := postgres.NewBaseRepository(db)
	partRepo := postgres.NewPartRepository(base)
	alertRepo := postgres.NewAlertRepository(base)
	digestRepo := postgres.NewDigestRepository(base)
	userRepo := postgres.NewUserRepository(base)

	// Services
	mailer := email.NewSMTPService(cfg.SMTP, appLogger, appMetrics)
	resolver := recipient.NewResolver(userRepo, cfg.Alerts.FallbackRecipients, appLogger)
	alertSvc := alertService.NewService(alertRepo, resolver, mailer, broker, appMetrics, appLogger, cfg.Alerts.RecentDays)
	digestSvc := digestService.NewService(partRepo, digestRepo, resolver, mailer, broker, appMetrics, appLogger)
	partSvc := partService.NewService(partRepo, alertSvc, appLogger)

	// Router
	r := router.NewRouter(
		router.Config{
			RateLimit: rate.Limit(cfg.Server.RateLimitRPS),
			RateBurst: cfg.Server.RateLimitBurst,
		},
		handler.NewHealthHandler(db),
		partHandler.NewHandler(partSvc),
		alertHandler.NewHandler(alertSvc),
		digestHandler.NewHandler(digestSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("inventory API listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
