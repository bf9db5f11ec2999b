package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/http/middleware"
	"github.com/diagnosis/stayvista-server/internal/repository"
	mw "github.com/diagnosis/stayvista-server/pkg/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	RateLimit      middleware.RateLimitConfig
	Idempotency    repository.IdempotencyRepository // nil disables replay
	IdempotencyTTL time.Duration
	DB             mw.Pinger
}

func NewRouter(h *Handlers, access *middleware.Access, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("stayvista"))
	r.Use(mw.Logging)
	r.Use(mw.Recoverer)
	r.Use(mw.Metrics)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	authed := middleware.Require(access.Authenticated())
	host := middleware.Require(access.Authenticated(), access.HasRole(domain.RoleHost))
	admin := middleware.Require(access.Authenticated(), access.HasRole(domain.RoleAdmin))
	// each open write endpoint gets its own per-IP budget
	limited := func() func(http.Handler) http.Handler { return middleware.RateLimit(cfg.RateLimit) }

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Hello from StayVista Server.."))
	})
	r.Get("/healthz", mw.Health(cfg.DB))
	r.Handle("/metrics", mw.MetricsHandler())

	// session
	r.With(limited()).Post("/jwt", h.IssueToken)
	r.Get("/logout", h.Logout)

	// payments
	r.With(authed).Post("/create-payment-intent", h.CreatePaymentIntent)

	// users
	r.With(limited()).Put("/user", h.UpsertUser)
	r.Get("/user/{email}", h.GetUser)
	r.With(admin).Get("/users", h.ListUsers)
	r.With(admin).Patch("/users/update/{email}", h.UpdateUser)

	// listings
	r.Get("/rooms", h.ListRooms)
	r.Get("/room/{id}", h.GetRoom)
	r.With(host).Post("/room", h.CreateRoom)
	r.With(host).Get("/my-listings/{email}", h.MyListings)
	r.With(host).Delete("/room/{id}", h.DeleteRoom)
	r.With(host).Put("/room/update/{id}", h.UpdateRoom)
	r.With(limited()).Patch("/room/status/{id}", h.SetRoomStatus)

	// bookings
	r.With(authed, middleware.Idempotency(cfg.Idempotency, cfg.IdempotencyTTL)).Post("/booking", h.CreateBooking)
	r.With(authed).Get("/my-bookings/{email}", h.MyBookings)
	r.With(authed).Delete("/booking/{id}", h.CancelBooking)
	r.With(host).Get("/manage-bookings/{email}", h.ManageBookings)

	// statistics
	r.With(admin).Get("/admin-stat", h.AdminStats)
	r.With(host).Get("/host-stat", h.HostStats)
	r.With(authed).Get("/guest-stat", h.GuestStats)

	return r
}
