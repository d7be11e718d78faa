package schemas

import (
	"time"

	"stockbot/src/models"

	"github.com/shopspring/decimal"
)

// PortfolioReport is the valuation of one user's holdings. Buckets are never
// converted into each other.
type PortfolioReport struct {
	UserID      string           `json:"userId"`
	Username    string           `json:"username"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Buckets     []CurrencyBucket `json:"buckets"`
}

// Bucket returns the bucket of currency c, or nil.
func (r *PortfolioReport) Bucket(c models.Currency) *CurrencyBucket {
	for i := range r.Buckets {
		if r.Buckets[i].Currency == c {
			return &r.Buckets[i]
		}
	}
	return nil
}

type CurrencyBucket struct {
	Currency  models.Currency `json:"currency"`
	Lines     []LineItem      `json:"lines"`
	CostBasis decimal.Decimal `json:"costBasis"`

	// Set by enrichment, and only when every line of the bucket got a price.
	MarketValue   *decimal.Decimal `json:"marketValue,omitempty"`
	UnrealizedPnL *decimal.Decimal `json:"unrealizedPnl,omitempty"`
	Unpriced      []string         `json:"unpriced,omitempty"`
}

type LineItem struct {
	Symbol    string          `json:"symbol"`
	Quantity  int64           `json:"quantity"`
	AvgPrice  decimal.Decimal `json:"avgPrice"`
	CostBasis decimal.Decimal `json:"costBasis"`

	CurrentPrice  *decimal.Decimal `json:"currentPrice,omitempty"`
	MarketValue   *decimal.Decimal `json:"marketValue,omitempty"`
	UnrealizedPnL *decimal.Decimal `json:"unrealizedPnl,omitempty"`
}
