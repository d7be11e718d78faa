package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a live position of one user in one ticker.
// A holding with zero quantity does not exist.
type Holding struct {
	UserID    string          `db:"user_id" json:"userId"`
	Username  string          `db:"username" json:"username"`
	Symbol    string          `db:"symbol" json:"symbol"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	AvgPrice  decimal.Decimal `db:"avg_price" json:"avgPrice"`
	Currency  Currency        `db:"currency" json:"currency"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// CostBasis is quantity times the average price.
func (h Holding) CostBasis() decimal.Decimal {
	return h.AvgPrice.Mul(decimal.NewFromInt(h.Quantity))
}

// HeldSymbol is a ticker held by at least one user.
type HeldSymbol struct {
	Symbol   string   `db:"symbol"`
	Currency Currency `db:"currency"`
}
