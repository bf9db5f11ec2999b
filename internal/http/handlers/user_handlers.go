package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/http/response"
	"github.com/diagnosis/stayvista-server/internal/utils"
)

// UpsertUser handles PUT /user. It returns the stored record when one already
// exists, otherwise the write acknowledgement.
func (h *Handlers) UpsertUser(w http.ResponseWriter, r *http.Request) {
	var u domain.User
	if err := decodeJSON(w, r, &u); err != nil {
		response.FromError(r.Context(), w, err)
		return
	}

	res, err := h.users.Upsert(r.Context(), &u)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	if res.Existing != nil {
		writeJSON(w, http.StatusOK, res.Existing)
		return
	}
	writeJSON(w, http.StatusOK, res.Result)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByEmail(r.Context(), emailParam(r))
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch domain.UserPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		response.FromError(r.Context(), w, err)
		return
	}

	res, err := h.users.Update(r.Context(), emailParam(r), patch)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func emailParam(r *http.Request) string {
	return utils.NormalizeEmail(chi.URLParam(r, "email"))
}
