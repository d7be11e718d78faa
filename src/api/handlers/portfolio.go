package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"stockbot/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	userID := chi.URLParam(r, "userID")
	enrich := false
	if enrichStr := r.URL.Query().Get("enrich"); enrichStr != "" {
		parsed, err := strconv.ParseBool(enrichStr)
		if err != nil {
			h.HandleErrors(w, utils.BadRequest("enrich must be a boolean"))
			return
		}
		enrich = parsed
	}

	report, err := h.Controller.GetPortfolio(ctx, userID, enrich)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, report, http.StatusOK)
}
