package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a price observed on the feed. Symbol is the ticker as queried,
// exchange suffix included.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Currency  Currency        `json:"currency"`
	FetchedAt time.Time       `json:"fetchedAt"`
}
