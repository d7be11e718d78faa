package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeSide string

const (
	Buy  TradeSide = "BUY"
	Sell TradeSide = "SELL"
)

// Trade is an immutable journal entry written with every accepted buy or sell.
type Trade struct {
	ID         string          `db:"id" json:"id"`
	UserID     string          `db:"user_id" json:"userId"`
	Username   string          `db:"username" json:"username"`
	Symbol     string          `db:"symbol" json:"symbol"`
	Side       TradeSide       `db:"side" json:"side"`
	Quantity   int64           `db:"quantity" json:"quantity"`
	Price      decimal.Decimal `db:"price" json:"price"`
	Currency   Currency        `db:"currency" json:"currency"`
	Total      decimal.Decimal `db:"total" json:"total"`
	ExecutedAt time.Time       `db:"executed_at" json:"executedAt"`
}
