package handlers

import (
	"net/http"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/http/response"
)

func (h *Handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.listings.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// GetRoom answers null for an unknown id.
func (h *Handlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	room, err := h.listings.Get(r.Context(), id)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var l domain.Listing
	if err := decodeJSON(w, r, &l); err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	res, err := h.listings.Create(r.Context(), &l)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) MyListings(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.listings.ListByHost(r.Context(), emailParam(r))
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *Handlers) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	res, err := h.listings.Delete(r.Context(), id, caller(r).Email)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	var l domain.Listing
	if err := decodeJSON(w, r, &l); err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	res, err := h.listings.Replace(r.Context(), id, &l, caller(r).Email)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SetRoomStatus handles PATCH /room/status/{id}. Only a boolean status is accepted.
func (h *Handlers) SetRoomStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	var body domain.BookedStatus
	if err := decodeJSON(w, r, &body); err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	res, err := h.listings.SetBooked(r.Context(), id, body.Status)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
