package services_test

import (
	"context"
	"errors"
	"testing"

	"stockbot/src/models"
	"stockbot/src/repositories"
	"stockbot/src/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOracle struct {
	quotes map[string]models.Quote
	calls  []string
}

func (f *fakeOracle) CurrentPrice(_ context.Context, symbol string, region models.Region) (models.Quote, error) {
	f.calls = append(f.calls, string(region)+":"+symbol)
	q, ok := f.quotes[symbol]
	if !ok {
		return models.Quote{}, &models.PriceUnavailableError{Symbol: symbol}
	}
	return q, nil
}

func seedPortfolio(t *testing.T) (*repositories.MemoryStore, *services.LedgerService) {
	t.Helper()
	ledger, store := newLedger(t)
	ctx := context.Background()

	for _, req := range []services.BuyRequest{
		buy("u1", "MSFT", 2, "300"),
		buy("u1", "AAPL", 10, "110"),
		{UserID: "u1", Username: "trader-renamed", Symbol: "SHOP", Quantity: 4, UnitPrice: d("90"), Currency: models.CAD},
		buy("u2", "AAPL", 1, "1"),
	} {
		_, err := ledger.Buy(ctx, req)
		require.NoError(t, err)
	}
	return store, ledger
}

func TestValuate(t *testing.T) {
	ctx := context.Background()

	t.Run("no holdings", func(t *testing.T) {
		portfolio := services.NewPortfolioService(repositories.NewMemoryStore())
		_, err := portfolio.Valuate(ctx, "u1")
		var noPositions *models.NoPositionsError
		assert.True(t, errors.As(err, &noPositions))
	})

	t.Run("holdings are split by currency", func(t *testing.T) {
		store, _ := seedPortfolio(t)
		report, err := services.NewPortfolioService(store).Valuate(ctx, "u1")
		require.NoError(t, err)

		assert.Equal(t, "u1", report.UserID)
		assert.Equal(t, "trader-renamed", report.Username)
		require.Len(t, report.Buckets, 2)
		assert.Equal(t, models.USD, report.Buckets[0].Currency)
		assert.Equal(t, models.CAD, report.Buckets[1].Currency)

		usd := report.Bucket(models.USD)
		require.Len(t, usd.Lines, 2)
		assert.Equal(t, "AAPL", usd.Lines[0].Symbol)
		assert.Equal(t, "MSFT", usd.Lines[1].Symbol)
		assert.True(t, d("1100").Equal(usd.Lines[0].CostBasis))
		assert.True(t, d("1700").Equal(usd.CostBasis), usd.CostBasis.String())
		assert.Nil(t, usd.MarketValue)

		cad := report.Bucket(models.CAD)
		require.Len(t, cad.Lines, 1)
		assert.True(t, d("360").Equal(cad.CostBasis))
	})

	t.Run("an empty currency still gets a bucket", func(t *testing.T) {
		ledger, store := newLedger(t)
		_, err := ledger.Buy(ctx, buy("u1", "AAPL", 1, "10"))
		require.NoError(t, err)

		report, err := services.NewPortfolioService(store).Valuate(ctx, "u1")
		require.NoError(t, err)
		cad := report.Bucket(models.CAD)
		require.NotNil(t, cad)
		assert.Empty(t, cad.Lines)
		assert.True(t, cad.CostBasis.IsZero())
	})

	t.Run("selling in one currency leaves the other untouched", func(t *testing.T) {
		store, ledger := seedPortfolio(t)
		_, err := ledger.Sell(ctx, sell("u1", "AAPL", 10, "200"))
		require.NoError(t, err)

		report, err := services.NewPortfolioService(store).Valuate(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, d("600").Equal(report.Bucket(models.USD).CostBasis))
		assert.True(t, d("360").Equal(report.Bucket(models.CAD).CostBasis))
	})
}

func TestEnrich(t *testing.T) {
	ctx := context.Background()
	store, _ := seedPortfolio(t)
	portfolio := services.NewPortfolioService(store)

	t.Run("prices every line and sets bucket totals", func(t *testing.T) {
		report, err := portfolio.Valuate(ctx, "u1")
		require.NoError(t, err)
		oracle := &fakeOracle{quotes: map[string]models.Quote{
			"AAPL": {Symbol: "AAPL", Price: d("120"), Currency: models.USD},
			"MSFT": {Symbol: "MSFT", Price: d("250"), Currency: models.USD},
			"SHOP": {Symbol: "SHOP.TO", Price: d("100"), Currency: models.CAD},
		}}

		report = portfolio.Enrich(ctx, report, oracle)
		assert.Contains(t, oracle.calls, "CA:SHOP")
		assert.Contains(t, oracle.calls, "US:AAPL")

		usd := report.Bucket(models.USD)
		require.NotNil(t, usd.MarketValue)
		assert.True(t, d("1700").Equal(*usd.MarketValue), usd.MarketValue.String())
		assert.True(t, decimal.Zero.Equal(*usd.UnrealizedPnL))
		assert.True(t, d("100").Equal(*usd.Lines[0].UnrealizedPnL))
		assert.True(t, d("-100").Equal(*usd.Lines[1].UnrealizedPnL))
		assert.Empty(t, usd.Unpriced)

		cad := report.Bucket(models.CAD)
		require.NotNil(t, cad.MarketValue)
		assert.True(t, d("40").Equal(*cad.UnrealizedPnL))
		assert.True(t, d("360").Equal(cad.CostBasis), "enrichment must not touch cost basis")
	})

	t.Run("missing and foreign quotes leave lines unpriced", func(t *testing.T) {
		report, err := portfolio.Valuate(ctx, "u1")
		require.NoError(t, err)
		oracle := &fakeOracle{quotes: map[string]models.Quote{
			"AAPL": {Symbol: "AAPL", Price: d("120"), Currency: models.USD},
			"SHOP": {Symbol: "SHOP", Price: d("100"), Currency: models.USD},
		}}

		report = portfolio.Enrich(ctx, report, oracle)

		usd := report.Bucket(models.USD)
		assert.Equal(t, []string{"MSFT"}, usd.Unpriced)
		assert.Nil(t, usd.MarketValue)
		assert.NotNil(t, usd.Lines[0].MarketValue)
		assert.Nil(t, usd.Lines[1].MarketValue)

		cad := report.Bucket(models.CAD)
		assert.Equal(t, []string{"SHOP"}, cad.Unpriced)
		assert.Nil(t, cad.MarketValue)
	})
}
