package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cardbinder/cardbinder-backend/internal/cron"
	"github.com/cardbinder/cardbinder-backend/internal/listings"
	"github.com/cardbinder/cardbinder-backend/internal/notifications"
	"github.com/cardbinder/cardbinder-backend/internal/offers"
	"github.com/cardbinder/cardbinder-backend/internal/users"
	"github.com/cardbinder/cardbinder-backend/internal/wanted"
	"github.com/cardbinder/cardbinder-backend/pkg/config"
	"github.com/cardbinder/cardbinder-backend/pkg/db"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/metrics"
	"github.com/cardbinder/cardbinder-backend/pkg/migrate"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox"
	"github.com/cardbinder/cardbinder-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	userRepo := users.NewRepository(dbClient.DB())
	listingRepo := listings.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(), logg)

	listingService, err := listings.NewService(listings.ServiceParams{
		Repo:     listingRepo,
		UserRepo: userRepo,
		DBClient: dbClient,
		Outbox:   outboxService,
		Logger:   logg,
		Cleanup:  cfg.Cleanup,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create listing service", err)
		os.Exit(1)
	}

	cleanupService, err := listings.NewCleanupService(listingRepo, listingService, logg, cfg.Cleanup)
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup service", err)
		os.Exit(1)
	}

	offerService, err := offers.NewService(offers.ServiceParams{
		Repo:        offers.NewRepository(dbClient.DB()),
		ListingRepo: listingRepo,
		UserRepo:    userRepo,
		DBClient:    dbClient,
		Outbox:      outboxService,
		Logger:      logg,
		Offers:      cfg.Offers,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create offer service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	wantedMigrator, err := wanted.NewMigrator(wanted.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create wanted migrator", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	listingJob, err := cron.NewListingTTLJob(cron.ListingTTLJobParams{
		Logger:  logg,
		Sweeper: cleanupService,
		Metrics: metricsCollector,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create listing ttl job", err)
		os.Exit(1)
	}

	offerJob, err := cron.NewOfferTTLJob(cron.OfferTTLJobParams{
		Logger:    logg,
		Expirer:   offerService,
		Metrics:   metricsCollector,
		BatchSize: cfg.Cleanup.BatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create offer ttl job", err)
		os.Exit(1)
	}

	notificationJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:  logg,
		Cleaner: notificationService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}

	migrationJob, err := cron.NewWantedMigrationJob(cron.WantedMigrationJobParams{
		Logger:   logg,
		Migrator: wantedMigrator,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wanted migration job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(listingJob, offerJob, notificationJob, migrationJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cleanup.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("cron-worker:%s", env)
}
