package handlers

import (
	"context"
	"net/http"
	"time"

	"stockbot/src/models"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	symbol := chi.URLParam(r, "symbol")
	region := models.ParseRegion(r.URL.Query().Get("region"))

	res, err := h.Controller.GetQuote(ctx, symbol, region)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, res, http.StatusOK)
}
