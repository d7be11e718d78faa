package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"stockbot/src/api/controllers"
	"stockbot/src/models"
	"stockbot/src/utils"
)

const requestTimeout = 10

type Handler struct {
	Controller controllers.IController
}

func NewHandler(controller controllers.IController) *Handler {
	return &Handler{Controller: controller}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

// HandleErrors answers with the status matching the error kind.
func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var httpErr *utils.HTTPError
	if !errors.As(asHTTPError(err), &httpErr) {
		httpErr = &utils.HTTPError{Code: http.StatusInternalServerError, Message: "Internal Server Error"}
	}
	h.respond(w, nil, map[string]string{"error": httpErr.Message}, httpErr.Code)
}

// asHTTPError converts domain errors into the HTTPError carrying their status.
// Anything unknown becomes a 500 without leaking its message.
func asHTTPError(err error) error {
	var (
		httpErr         *utils.HTTPError
		invalidQuantity *models.InvalidQuantityError
		invalidPrice    *models.InvalidPriceError
		invalidSymbol   *models.InvalidSymbolError
		invalidUser     *models.InvalidUserError
		badCurrency     *models.UnsupportedCurrencyError
		noPosition      *models.NoPositionError
		noPositions     *models.NoPositionsError
		insufficient    *models.InsufficientQuantityError
		mismatch        *models.CurrencyMismatchError
		unavailable     *models.PriceUnavailableError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return utils.NewHTTPError(http.StatusGatewayTimeout, "Request timed out")
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &invalidQuantity), errors.As(err, &invalidPrice), errors.As(err, &invalidSymbol),
		errors.As(err, &invalidUser), errors.As(err, &badCurrency):
		return utils.BadRequest(err.Error())
	case errors.As(err, &noPosition), errors.As(err, &noPositions):
		return utils.NotFound(err.Error())
	case errors.As(err, &insufficient), errors.As(err, &mismatch):
		return utils.Conflict(err.Error())
	case errors.As(err, &unavailable):
		return utils.BadGateway(err.Error())
	}
	return utils.InternalServerError("Internal Server Error")
}
