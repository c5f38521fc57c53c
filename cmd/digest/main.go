package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/partstock/inventory-api/internal/config"
	"github.com/partstock/inventory-api/internal/email"
	"github.com/partstock/inventory-api/internal/repository/postgres"
	digestService "github.com/partstock/inventory-api/internal/service/digest"
	"github.com/partstock/inventory-api/internal/service/recipient"
	"github.com/partstock/inventory-api/pkg/logger"
	"github.com/partstock/inventory-api/pkg/messaging"
	"github.com/partstock/inventory-api/pkg/messaging/redis"
	"github.com/partstock/inventory-api/pkg/metrics"
)

func main() {
	once := flag.Bool("once", false, "run a single digest attempt and exit")
	flag.Parse()

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

	appMetrics := metrics.NewMetrics("partstock_digest")

	base := postgres.NewBaseRepository(db)
	partRepo := postgres.NewPartRepository(base)
	digestRepo := postgres.NewDigestRepository(base)
	userRepo := postgres.NewUserRepository(base)

	mailer := email.NewSMTPService(cfg.SMTP, appLogger, appMetrics)
	resolver := recipient.NewResolver(userRepo, cfg.Alerts.FallbackRecipients, appLogger)
	digestSvc := digestService.NewService(partRepo, digestRepo, resolver, mailer, broker, appMetrics, appLogger)

	if *once {
		if err := digestSvc.Run(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("digest run failed")
		}
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Alerts.DigestSchedule, func() {
		if err := digestSvc.Run(context.Background()); err != nil {
			log.Error().Err(err).Msg("digest run failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Alerts.DigestSchedule).Msg("invalid digest schedule")
	}
	c.Start()
	log.Info().Str("schedule", cfg.Alerts.DigestSchedule).Msg("digest scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("stopping digest scheduler...")
	<-c.Stop().Done()
	log.Info().Msg("digest scheduler stopped")
}
