package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/http/middleware"
	"github.com/diagnosis/stayvista-server/internal/http/response"
	"github.com/diagnosis/stayvista-server/internal/platform/payments"
	"github.com/diagnosis/stayvista-server/internal/service"
	"github.com/diagnosis/stayvista-server/pkg/auth"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	users    service.UserService
	listings service.ListingService
	bookings service.BookingService
	stats    service.StatsService
	payments payments.Service
	session  SessionConfig
}

func New(
	users service.UserService,
	listings service.ListingService,
	bookings service.BookingService,
	stats service.StatsService,
	payments payments.Service,
	session SessionConfig,
) *Handlers {
	return &Handlers{
		users:    users,
		listings: listings,
		bookings: bookings,
		stats:    stats,
		payments: payments,
		session:  session,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: request body too large or unreadable", domain.ErrInvalidInput)
	}
	if err := json.Unmarshal(body, v); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("%w: invalid JSON format", domain.ErrInvalidInput)
	}
	return nil
}

// idParam returns the {id} path value, rejecting anything that is not a UUID.
func idParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid id", domain.ErrInvalidInput)
	}
	return id.String(), nil
}

// caller returns the identity placed by the Authenticated gate.
func caller(r *http.Request) auth.Identity {
	id, _ := middleware.IdentityFrom(r.Context())
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	response.WriteJSON(w, status, v)
}
