package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stockbot/src/models"
	"stockbot/src/repositories"
	"stockbot/src/schemas"
	"stockbot/src/utils"

	"github.com/shopspring/decimal"
)

// PriceOracle returns the current price of a ticker in a region.
type PriceOracle interface {
	CurrentPrice(ctx context.Context, symbol string, region models.Region) (models.Quote, error)
}

type PortfolioServiceI interface {
	Valuate(ctx context.Context, userID string) (*schemas.PortfolioReport, error)
	Enrich(ctx context.Context, report *schemas.PortfolioReport, oracle PriceOracle) *schemas.PortfolioReport
}

// PortfolioService values holdings. It only ever reads them.
type PortfolioService struct {
	holdingRepo repositories.HoldingReader
	now         func() time.Time
}

func NewPortfolioService(holdingRepo repositories.HoldingReader) *PortfolioService {
	return &PortfolioService{holdingRepo: holdingRepo, now: time.Now}
}

// Valuate builds the cost-basis view of the user's holdings, one bucket per
// currency in the order of models.Currencies.
func (s *PortfolioService) Valuate(ctx context.Context, userID string) (*schemas.PortfolioReport, error) {
	holdings, err := s.holdingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return nil, &models.NoPositionsError{UserID: userID}
	}

	report := &schemas.PortfolioReport{
		UserID:      userID,
		GeneratedAt: s.now().UTC(),
		Buckets:     make([]schemas.CurrencyBucket, 0, len(models.Currencies)),
	}
	for _, c := range models.Currencies {
		report.Buckets = append(report.Buckets, schemas.CurrencyBucket{
			Currency:  c,
			Lines:     []schemas.LineItem{},
			CostBasis: decimal.Zero,
		})
	}

	var latest time.Time
	for _, h := range holdings {
		bucket := report.Bucket(h.Currency)
		if bucket == nil {
			return nil, fmt.Errorf("holding %s of user %s: %w", h.Symbol, userID, &models.UnsupportedCurrencyError{Code: string(h.Currency)})
		}
		cost := h.CostBasis()
		bucket.Lines = append(bucket.Lines, schemas.LineItem{
			Symbol:    h.Symbol,
			Quantity:  h.Quantity,
			AvgPrice:  h.AvgPrice,
			CostBasis: cost,
		})
		bucket.CostBasis = bucket.CostBasis.Add(cost)

		if report.Username == "" || h.UpdatedAt.After(latest) {
			report.Username = h.Username
			latest = h.UpdatedAt
		}
	}

	for i := range report.Buckets {
		lines := report.Buckets[i].Lines
		sort.Slice(lines, func(a, b int) bool { return lines[a].Symbol < lines[b].Symbol })
	}
	return report, nil
}

// Enrich prices every line of the report in place. A line whose price cannot
// be found, or is quoted in another currency, stays unpriced and the bucket
// gets no market totals.
func (s *PortfolioService) Enrich(ctx context.Context, report *schemas.PortfolioReport, oracle PriceOracle) *schemas.PortfolioReport {
	logger := utils.LoggerFromContext(ctx)

	for bi := range report.Buckets {
		bucket := &report.Buckets[bi]
		bucket.Unpriced = nil
		bucket.MarketValue = nil
		bucket.UnrealizedPnL = nil

		marketValue, pnl := decimal.Zero, decimal.Zero
		for li := range bucket.Lines {
			line := &bucket.Lines[li]
			quote, err := oracle.CurrentPrice(ctx, line.Symbol, bucket.Currency.Region())
			if err == nil && quote.Currency != bucket.Currency {
				err = fmt.Errorf("quoted in %s", quote.Currency)
			}
			if err != nil {
				logger.WithError(err).WithField("symbol", line.Symbol).Warn("could not price holding")
				bucket.Unpriced = append(bucket.Unpriced, line.Symbol)
				continue
			}

			price := quote.Price
			value := price.Mul(decimal.NewFromInt(line.Quantity))
			gain := value.Sub(line.CostBasis)
			line.CurrentPrice = &price
			line.MarketValue = &value
			line.UnrealizedPnL = &gain

			marketValue = marketValue.Add(value)
			pnl = pnl.Add(gain)
		}

		if len(bucket.Lines) > 0 && len(bucket.Unpriced) == 0 {
			bucket.MarketValue = &marketValue
			bucket.UnrealizedPnL = &pnl
		}
	}
	return report
}
