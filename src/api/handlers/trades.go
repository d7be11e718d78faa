package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"stockbot/src/schemas"
	"stockbot/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.Controller.Buy)
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.Controller.Sell)
}

type tradeFunc func(ctx context.Context, userID string, req schemas.TradeRequest) (*schemas.TradeResponse, error)

func (h *Handler) trade(w http.ResponseWriter, r *http.Request, fn tradeFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	userID := chi.URLParam(r, "userID")
	var req schemas.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body: "+err.Error()))
		return
	}

	res, err := fn(ctx, userID, req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, res, http.StatusOK)
}

func (h *Handler) GetTrades(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	userID := chi.URLParam(r, "userID")
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			h.HandleErrors(w, utils.BadRequest("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		h.HandleErrors(w, utils.BadRequest("format must be json or csv"))
		return
	}

	res, err := h.Controller.GetTrades(ctx, userID, limit)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	if format == "csv" {
		h.respondTradesCSV(w, r, res)
		return
	}
	h.respond(w, r, res, http.StatusOK)
}

var tradeCSVHeader = []string{"id", "executed_at", "side", "symbol", "quantity", "price", "currency", "total"}

func (h *Handler) respondTradesCSV(w http.ResponseWriter, r *http.Request, res *schemas.TradesResponse) {
	rows := make([][]string, 0, len(res.Trades))
	for _, t := range res.Trades {
		rows = append(rows, []string{
			t.ID,
			t.ExecutedAt.Format(time.RFC3339),
			string(t.Side),
			t.Symbol,
			strconv.FormatInt(t.Quantity, 10),
			t.Price.String(),
			string(t.Currency),
			t.Total.String(),
		})
	}
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	if err := utils.WriteCSV(w, tradeCSVHeader, rows); err != nil {
		utils.LoggerFromContext(r.Context()).WithError(err).Error("could not write trades csv")
	}
}
