package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardbinder/cardbinder-backend/api/controllers"
	"github.com/cardbinder/cardbinder-backend/api/middleware"
	"github.com/cardbinder/cardbinder-backend/internal/account"
	"github.com/cardbinder/cardbinder-backend/internal/auth"
	"github.com/cardbinder/cardbinder-backend/internal/favorites"
	"github.com/cardbinder/cardbinder-backend/internal/listings"
	"github.com/cardbinder/cardbinder-backend/internal/messages"
	"github.com/cardbinder/cardbinder-backend/internal/notifications"
	"github.com/cardbinder/cardbinder-backend/internal/offers"
	"github.com/cardbinder/cardbinder-backend/internal/orders"
	"github.com/cardbinder/cardbinder-backend/internal/wanted"
	"github.com/cardbinder/cardbinder-backend/pkg/config"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/redis"
)

// Deps collects everything the HTTP surface needs wired in.
type Deps struct {
	Cfg   *config.Config
	Logg  *logger.Logger
	DB    controllers.Pinger
	Redis *redis.Client

	Auth          auth.Service
	Listings      listings.Service
	Cleanup       *listings.CleanupService
	Offers        offers.Service
	Orders        orders.Service
	Wanted        wanted.Service
	Favorites     favorites.Service
	Messages      messages.Service
	Notifications notifications.Service
	Account       account.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Cfg, deps.Logg

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": deps.DB,
			"redis":    deps.Redis,
		}))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/listings", controllers.PublicListingList(deps.Listings, logg))
		r.Get("/listings/{listingID}", controllers.PublicListingDetail(deps.Listings, logg))
		r.Get("/wanted", controllers.PublicWantedList(deps.Wanted, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			With(middleware.Idempotency(deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).
			Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/listings", func(r chi.Router) {
			r.Get("/mine", controllers.ListingMine(deps.Listings, logg))
			r.Post("/", controllers.ListingCreate(deps.Listings, logg))
			r.Patch("/{listingID}", controllers.ListingUpdate(deps.Listings, logg))
			r.Delete("/{listingID}", controllers.ListingDelete(deps.Listings, logg))
			r.Post("/{listingID}/archive", controllers.ListingArchive(deps.Listings, logg))
			r.Get("/{listingID}/expiry", controllers.ListingExpiry(deps.Listings, logg))
		})

		r.Route("/offers", func(r chi.Router) {
			r.Post("/", controllers.OfferCreate(deps.Offers, logg))
			r.Get("/", controllers.OfferList(deps.Offers, logg))
			r.Post("/clear-expired", controllers.OfferClearExpired(deps.Offers, logg))
			r.Get("/{offerID}", controllers.OfferDetail(deps.Offers, logg))
			r.Post("/{offerID}/accept", controllers.OfferAccept(deps.Offers, logg))
			r.Post("/{offerID}/decline", controllers.OfferDecline(deps.Offers, logg))
			r.Post("/{offerID}/counter", controllers.OfferCounter(deps.Offers, logg))
			r.Post("/{offerID}/cancel", controllers.OfferCancel(deps.Offers, logg))
			// counters are stored as fresh offer rows, so accepting or
			// declining one reuses the plain decision handlers
			r.Post("/{offerID}/accept-counter", controllers.OfferAccept(deps.Offers, logg))
			r.Post("/{offerID}/decline-counter", controllers.OfferDecline(deps.Offers, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(deps.Orders, logg))
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{orderID}", controllers.OrderDetail(deps.Orders, logg))
			r.Post("/{orderID}/paid", controllers.OrderMarkPaid(deps.Orders, logg))
			r.Post("/{orderID}/shipped", controllers.OrderMarkShipped(deps.Orders, logg))
			r.Post("/{orderID}/complete", controllers.OrderComplete(deps.Orders, logg))
			r.Post("/{orderID}/cancel", controllers.OrderCancel(deps.Orders, logg))
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoriteList(deps.Favorites, logg))
			r.Put("/{listingID}", controllers.FavoriteAdd(deps.Favorites, logg))
			r.Delete("/{listingID}", controllers.FavoriteRemove(deps.Favorites, logg))
		})

		r.Route("/wanted", func(r chi.Router) {
			r.Get("/", controllers.WantedMine(deps.Wanted, logg))
			r.Post("/", controllers.WantedCreate(deps.Wanted, logg))
			r.Patch("/{postID}", controllers.WantedUpdate(deps.Wanted, logg))
			r.Delete("/{postID}", controllers.WantedDelete(deps.Wanted, logg))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", controllers.MessageSend(deps.Messages, logg))
			r.Get("/threads", controllers.MessageThreads(deps.Messages, logg))
			r.Get("/threads/{threadKey}", controllers.MessageThread(deps.Messages, logg))
			r.Post("/threads/{threadKey}/read", controllers.MessageThreadRead(deps.Messages, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})

		r.Route("/account", func(r chi.Router) {
			r.Get("/", controllers.AccountGet(deps.Account, logg))
			r.Put("/", controllers.AccountUpdate(deps.Account, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AuthOptional(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(cfg.Admin.Secret, logg))

		r.Route("/listings", func(r chi.Router) {
			r.Post("/cleanup", controllers.AdminCleanup(deps.Cleanup, logg))
			r.Post("/backup-cleanup", controllers.AdminBackupCleanup(deps.Cleanup, logg))
			r.Get("/ttl-monitor", controllers.AdminTTLMonitor(deps.Cleanup, logg))
		})
		r.Post("/users/{userID}/tier", controllers.AdminSetTier(deps.Account, logg))
	})

	return r
}
