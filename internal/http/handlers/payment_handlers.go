package handlers

import (
	"net/http"

	"github.com/diagnosis/stayvista-server/internal/http/response"
)

type paymentIntentRequest struct {
	Price float64 `json:"price"`
}

type paymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

func (h *Handlers) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	secret, err := h.payments.CreateIntent(r.Context(), req.Price)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentIntentResponse{ClientSecret: secret})
}
