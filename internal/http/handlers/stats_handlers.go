package handlers

import (
	"net/http"

	"github.com/diagnosis/stayvista-server/internal/http/response"
)

func (h *Handlers) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Admin(r.Context())
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) HostStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Host(r.Context(), caller(r).Email)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) GuestStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Guest(r.Context(), caller(r).Email)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
