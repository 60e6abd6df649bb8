package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/cardbinder/cardbinder-backend/internal/email"
	"github.com/cardbinder/cardbinder-backend/internal/notifications"
	"github.com/cardbinder/cardbinder-backend/internal/users"
	"github.com/cardbinder/cardbinder-backend/pkg/config"
	"github.com/cardbinder/cardbinder-backend/pkg/db"
	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/migrate"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox/idempotency"
	"github.com/cardbinder/cardbinder-backend/pkg/pubsub"
	"github.com/cardbinder/cardbinder-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
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

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency manager", err)
		os.Exit(1)
	}

	sender, err := email.NewLogSender(cfg.Email.DefaultFrom, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create email sender", err)
		os.Exit(1)
	}

	repo := &emailingRepository{
		repo:   notifications.NewRepository(dbClient.DB()),
		users:  users.NewRepository(dbClient.DB()),
		sender: sender,
		logg:   logg,
	}

	domainConsumer, err := notifications.NewConsumer(repo, pubsubClient.DomainSubscription(), manager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create domain consumer", err)
		os.Exit(1)
	}
	notificationConsumer, err := notifications.NewConsumer(repo, pubsubClient.NotificationSubscription(), manager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting worker")

	errCh := make(chan error, 2)
	go func() { errCh <- domainConsumer.Run(ctx) }()
	go func() { errCh <- notificationConsumer.Run(ctx) }()

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "worker shutting down gracefully")
}

// emailingRepository persists the notification row and then sends a
// best-effort email copy. Email failures are logged, never surfaced,
// so a broken provider cannot nack the message after the row exists.
type emailingRepository struct {
	repo   notifications.Repository
	users  *users.Repository
	sender email.Sender
	logg   *logger.Logger
}

func (r *emailingRepository) Create(ctx context.Context, notification *models.Notification) error {
	if err := r.repo.Create(ctx, notification); err != nil {
		return err
	}

	user, err := r.users.FindByID(ctx, notification.UserID)
	if err != nil {
		r.logg.Warn(r.logg.WithField(ctx, "user_id", notification.UserID.String()), "skipping email, user lookup failed")
		return nil
	}

	msg := email.Message{
		To:      user.Email,
		Subject: notification.Title,
		Body:    fmt.Sprintf("%s\n\n%s", notification.Title, notification.Message),
	}
	if err := r.sender.Send(ctx, msg); err != nil {
		r.logg.Warn(r.logg.WithField(ctx, "user_id", notification.UserID.String()), "notification email failed")
	}
	return nil
}
