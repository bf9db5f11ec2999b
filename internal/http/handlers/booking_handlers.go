package handlers

import (
	"net/http"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/http/response"
)

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var b domain.Booking
	if err := decodeJSON(w, r, &b); err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	res, err := h.bookings.Create(r.Context(), &b)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) MyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListForGuest(r.Context(), emailParam(r))
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *Handlers) ManageBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListForHost(r.Context(), emailParam(r))
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	res, err := h.bookings.Cancel(r.Context(), id, caller(r).Email)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
