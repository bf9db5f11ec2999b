package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diagnosis/stayvista-server/internal/http/handlers"
	"github.com/diagnosis/stayvista-server/internal/http/middleware"
	"github.com/diagnosis/stayvista-server/internal/platform/mailer"
	"github.com/diagnosis/stayvista-server/internal/platform/notify"
	"github.com/diagnosis/stayvista-server/internal/platform/payments"
	"github.com/diagnosis/stayvista-server/internal/repository"
	"github.com/diagnosis/stayvista-server/internal/service"
	"github.com/diagnosis/stayvista-server/pkg/auth"
	"github.com/diagnosis/stayvista-server/pkg/config"
	"github.com/diagnosis/stayvista-server/pkg/database"
	"github.com/diagnosis/stayvista-server/pkg/events"
	"github.com/diagnosis/stayvista-server/pkg/logger"
)

func main() {
	cfg := config.Load()
	if cfg.IsProduction() && cfg.Auth.TokenSecret == "dev-only-secret-change-in-prod" {
		logger.Error("ACCESS_TOKEN_SECRET must be set in production")
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Error("Failed to apply schema", "error", err)
		os.Exit(1)
	}

	// Idempotency cache (optional)
	var idempotencyRepo repository.IdempotencyRepository
	rdb, err := database.ConnectRedis(ctx, cfg.Redis)
	switch {
	case err != nil:
		logger.Warn("Redis unavailable, idempotency replay disabled", "error", err)
	case rdb != nil:
		defer rdb.Close()
		idempotencyRepo = repository.NewIdempotencyRepository(rdb)
	}

	// Event bus (optional)
	var eventBus events.Publisher = events.NopBus{}
	if cfg.NATS.URL != "" {
		bus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Warn("NATS unavailable, events disabled", "error", err)
		} else {
			eventBus = bus
		}
	}
	defer eventBus.Close()

	dispatcher := notify.NewDispatcher(mailer.New(cfg.Email), cfg.Notify.MaxInFlight, cfg.Notify.SendTimeout)

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	listingRepo := repository.NewListingRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	// Initialize services
	roles := service.NewRoleResolver(userRepo)
	userService := service.NewUserService(userRepo, dispatcher, eventBus)
	listingService := service.NewListingService(listingRepo, eventBus)
	bookingService := service.NewBookingService(bookingRepo, listingRepo, dispatcher, eventBus, cfg.Booking)
	statsService := service.NewStatsService(userRepo, listingRepo, bookingRepo)
	paymentService := payments.NewStripeService(cfg.Stripe)

	h := handlers.New(userService, listingService, bookingService, statsService, paymentService, handlers.SessionConfig{
		Secret: cfg.Auth.TokenSecret,
		TTL:    cfg.Auth.SessionTokenTTL,
		Cookie: auth.CookieOptionsFor(cfg.IsProduction()),
	})
	access := middleware.NewAccess(cfg.Auth.TokenSecret, roles)

	router := handlers.NewRouter(h, access, handlers.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimit: middleware.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		},
		Idempotency:    idempotencyRepo,
		IdempotencyTTL: cfg.Booking.IdempotencyTTL,
		DB:             pool,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down StayVista server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := dispatcher.Close(ctx); err != nil {
			logger.Warn("Pending notifications abandoned", "error", err)
		}
	}()

	logger.Info("Starting StayVista server", "port", cfg.Server.Port, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	<-done
}
