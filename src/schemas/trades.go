package schemas

import (
	"stockbot/src/models"

	"github.com/shopspring/decimal"
)

// TradeRequest is the body of the buy and sell endpoints. Price is optional;
// the live price is used when it is missing.
type TradeRequest struct {
	Username string           `json:"username"`
	Symbol   string           `json:"symbol"`
	Quantity int64            `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Region   string           `json:"region,omitempty"`
}

type TradeResponse struct {
	Side     models.TradeSide `json:"side"`
	Symbol   string           `json:"symbol"`
	Quantity int64            `json:"quantity"`
	Price    decimal.Decimal  `json:"price"`
	Currency models.Currency  `json:"currency"`
	Total    decimal.Decimal  `json:"total"`
	Display  string           `json:"display"`
	// Holding is the position after the trade, nil when a sell closed it.
	Holding *models.Holding `json:"holding"`
}

type TradesResponse struct {
	Trades []models.Trade `json:"trades"`
}

type QuoteResponse struct {
	models.Quote
	Display string `json:"display"`
}
