package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/cardbinder/cardbinder-backend/api/routes"
	"github.com/cardbinder/cardbinder-backend/internal/account"
	"github.com/cardbinder/cardbinder-backend/internal/auth"
	"github.com/cardbinder/cardbinder-backend/internal/favorites"
	"github.com/cardbinder/cardbinder-backend/internal/listings"
	"github.com/cardbinder/cardbinder-backend/internal/messages"
	"github.com/cardbinder/cardbinder-backend/internal/notifications"
	"github.com/cardbinder/cardbinder-backend/internal/offers"
	"github.com/cardbinder/cardbinder-backend/internal/orders"
	"github.com/cardbinder/cardbinder-backend/internal/users"
	"github.com/cardbinder/cardbinder-backend/internal/wanted"
	"github.com/cardbinder/cardbinder-backend/pkg/config"
	"github.com/cardbinder/cardbinder-backend/pkg/db"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/migrate"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox"
	"github.com/cardbinder/cardbinder-backend/pkg/redis"
	"github.com/cardbinder/cardbinder-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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
	offerRepo := offers.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	wantedRepo := wanted.NewRepository(dbClient.DB())
	favoriteRepo := favorites.NewRepository(dbClient.DB())
	messageRepo := messages.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:    userRepo,
		DBClient:    dbClient,
		Sessions:    redisClient,
		JWTConfig:   cfg.JWT,
		PasswordCfg: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

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
		Repo:        offerRepo,
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

	// Orders work without Stripe; sellers just show up as lacking a
	// payout account until the key is configured.
	var payouts *stripe.Client
	if cfg.Stripe.APIKey != "" {
		payouts, err = stripe.NewClient(context.Background(), cfg.Stripe, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create stripe client", err)
			os.Exit(1)
		}
	}

	orderParams := orders.ServiceParams{
		Repo:        orderRepo,
		OfferRepo:   offerRepo,
		ListingRepo: listingRepo,
		UserRepo:    userRepo,
		DBClient:    dbClient,
		Outbox:      outboxService,
		Logger:      logg,
	}
	if payouts != nil {
		orderParams.Stripe = payouts
	}
	orderService, err := orders.NewService(orderParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	wantedService, err := wanted.NewService(wantedRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wanted service", err)
		os.Exit(1)
	}

	favoriteService, err := favorites.NewService(favorites.ServiceParams{
		Repo:        favoriteRepo,
		ListingRepo: listingRepo,
		DBClient:    dbClient,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create favorites service", err)
		os.Exit(1)
	}

	messageService, err := messages.NewService(messages.ServiceParams{
		Repo:     messageRepo,
		UserRepo: userRepo,
		DBClient: dbClient,
		Outbox:   outboxService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create message service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	accountService, err := account.NewService(userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create account service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Cfg:           cfg,
			Logg:          logg,
			DB:            dbClient,
			Redis:         redisClient,
			Auth:          authService,
			Listings:      listingService,
			Cleanup:       cleanupService,
			Offers:        offerService,
			Orders:        orderService,
			Wanted:        wantedService,
			Favorites:     favoriteService,
			Messages:      messageService,
			Notifications: notificationService,
			Account:       accountService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
