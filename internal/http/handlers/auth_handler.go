package handlers

import (
	"net/http"
	"time"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/http/response"
	"github.com/diagnosis/stayvista-server/pkg/auth"
	"github.com/diagnosis/stayvista-server/pkg/logger"
)

type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Cookie auth.CookieOptions
}

// IssueToken handles POST /jwt. The caller's identity provider has already
// verified the email; this only signs it into a session cookie.
func (h *Handlers) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.FromError(r.Context(), w, err)
		return
	}

	token, err := auth.NewSessionToken(auth.Identity{Email: req.Email, Name: req.Name}, h.session.Secret, h.session.TTL)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to sign session token", "error", err)
		response.InternalError(w, "internal server error")
		return
	}

	auth.SetSessionCookie(w, token, time.Now().Add(h.session.TTL), h.session.Cookie)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout handles GET /logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.session.Cookie)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
