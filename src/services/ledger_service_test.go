package services_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"stockbot/src/metrics"
	"stockbot/src/models"
	"stockbot/src/repositories"
	"stockbot/src/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLedger(t *testing.T) (*services.LedgerService, *repositories.MemoryStore) {
	t.Helper()
	store := repositories.NewMemoryStore()
	return services.NewLedgerService(store, nil), store
}

func buy(userID, symbol string, qty int64, price string) services.BuyRequest {
	return services.BuyRequest{
		UserID:    userID,
		Username:  "trader",
		Symbol:    symbol,
		Quantity:  qty,
		UnitPrice: d(price),
		Currency:  models.USD,
	}
}

func sell(userID, symbol string, qty int64, price string) services.SellRequest {
	return services.SellRequest{
		UserID:    userID,
		Username:  "trader",
		Symbol:    symbol,
		Quantity:  qty,
		UnitPrice: d(price),
	}
}

func TestLedgerScenario(t *testing.T) {
	ledger, store := newLedger(t)
	ctx := context.Background()

	h, err := ledger.Buy(ctx, buy("u1", "aapl", 10, "100"))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", h.Symbol)
	assert.Equal(t, int64(10), h.Quantity)
	assert.True(t, d("100").Equal(h.AvgPrice))

	h, err = ledger.Buy(ctx, buy("u1", "AAPL", 10, "120"))
	require.NoError(t, err)
	assert.Equal(t, int64(20), h.Quantity)
	assert.True(t, d("110").Equal(h.AvgPrice), h.AvgPrice.String())

	res, err := ledger.Sell(ctx, sell("u1", "AAPL", 5, "150"))
	require.NoError(t, err)
	require.NotNil(t, res.Holding)
	assert.Equal(t, int64(15), res.Holding.Quantity)
	assert.True(t, d("110").Equal(res.Holding.AvgPrice))
	assert.True(t, d("750").Equal(res.Realized))
	assert.Equal(t, models.USD, res.Currency)

	res, err = ledger.Sell(ctx, sell("u1", "AAPL", 15, "140"))
	require.NoError(t, err)
	assert.Nil(t, res.Holding)
	assert.True(t, d("2100").Equal(res.Realized))

	gone, err := store.Get(ctx, "u1", "AAPL")
	require.NoError(t, err)
	assert.Nil(t, gone)

	trades, err := store.ListTrades(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, trades, 4)
	assert.Equal(t, models.Sell, trades[0].Side)
	assert.True(t, d("2100").Equal(trades[0].Total))
	assert.Equal(t, models.Buy, trades[3].Side)
	assert.NotEmpty(t, trades[3].ID)
}

// averageBound is the rounding error allowed after n buys.
func averageBound(n int) decimal.Decimal {
	return decimal.New(5, -services.AvgPriceScale-1).Mul(decimal.NewFromInt(int64(n)))
}

func TestLedgerWeightedAverage(t *testing.T) {
	type lot struct {
		qty   int64
		price string
	}
	exactAverage := func(lots []lot) (decimal.Decimal, int64) {
		cost, qty := decimal.Zero, int64(0)
		for _, l := range lots {
			cost = cost.Add(d(l.price).Mul(decimal.NewFromInt(l.qty)))
			qty += l.qty
		}
		return cost.DivRound(decimal.NewFromInt(qty), 30), qty
	}
	buyAll := func(t *testing.T, lots []lot, order []int) *models.Holding {
		ledger, _ := newLedger(t)
		var h *models.Holding
		var err error
		for _, i := range order {
			h, err = ledger.Buy(context.Background(), buy("u1", "AAPL", lots[i].qty, lots[i].price))
			require.NoError(t, err)
		}
		return h
	}

	t.Run("every order of a repeating mean stays within the bound", func(t *testing.T) {
		lots := []lot{{1, "1"}, {2, "2"}, {3, "1"}}
		expected, qty := exactAverage(lots)
		for _, order := range [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}} {
			h := buyAll(t, lots, order)
			assert.Equal(t, qty, h.Quantity)
			assert.True(t, -h.AvgPrice.Exponent() <= services.AvgPriceScale, "avg %s has more than %d places", h.AvgPrice, services.AvgPriceScale)
			assert.True(t, h.AvgPrice.Sub(expected).Abs().LessThanOrEqual(averageBound(len(lots))),
				"order %v: got %s want %s", order, h.AvgPrice, expected)
		}
	})

	t.Run("random orders of uneven lots stay within the bound", func(t *testing.T) {
		lots := []lot{{3, "10.50"}, {7, "12.25"}, {1, "99.99"}, {40, "8"}, {9, "15.125"}}
		expected, qty := exactAverage(lots)
		for round := 0; round < 5; round++ {
			order := rand.Perm(len(lots))
			h := buyAll(t, lots, order)
			assert.Equal(t, qty, h.Quantity)
			assert.True(t, h.AvgPrice.Sub(expected).Abs().LessThanOrEqual(averageBound(len(lots))),
				"order %v: got %s want %s", order, h.AvgPrice, expected)
		}
	})
}

func TestLedgerSellRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("oversell leaves the holding unchanged", func(t *testing.T) {
		ledger, store := newLedger(t)
		_, err := ledger.Buy(ctx, buy("u1", "AAPL", 10, "100"))
		require.NoError(t, err)

		_, err = ledger.Sell(ctx, sell("u1", "AAPL", 11, "100"))
		var insufficient *models.InsufficientQuantityError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, int64(10), insufficient.Held)
		assert.Equal(t, int64(11), insufficient.Requested)

		h, err := store.Get(ctx, "u1", "AAPL")
		require.NoError(t, err)
		assert.Equal(t, int64(10), h.Quantity)
		assert.True(t, d("100").Equal(h.AvgPrice))

		trades, _ := store.ListTrades(ctx, "u1", 0)
		assert.Len(t, trades, 1)
	})

	t.Run("selling a closed position fails", func(t *testing.T) {
		ledger, _ := newLedger(t)
		_, err := ledger.Buy(ctx, buy("u1", "AAPL", 5, "100"))
		require.NoError(t, err)
		_, err = ledger.Sell(ctx, sell("u1", "AAPL", 5, "110"))
		require.NoError(t, err)

		_, err = ledger.Sell(ctx, sell("u1", "AAPL", 1, "110"))
		var noPosition *models.NoPositionError
		assert.True(t, errors.As(err, &noPosition))
	})

	t.Run("selling something never bought fails without creating a row", func(t *testing.T) {
		ledger, store := newLedger(t)
		_, err := ledger.Sell(ctx, sell("u1", "MSFT", 1, "10"))
		var noPosition *models.NoPositionError
		require.True(t, errors.As(err, &noPosition))
		assert.Equal(t, "MSFT", noPosition.Symbol)

		holdings, _ := store.ListByUser(ctx, "u1")
		assert.Empty(t, holdings)
	})
}

func TestLedgerValidation(t *testing.T) {
	ctx := context.Background()
	ledger, store := newLedger(t)

	cases := []struct {
		name  string
		call  func() error
		check func(err error) bool
	}{
		{"zero quantity buy", func() error {
			_, err := ledger.Buy(ctx, buy("u1", "AAPL", 0, "10"))
			return err
		}, func(err error) bool { var e *models.InvalidQuantityError; return errors.As(err, &e) }},
		{"negative quantity sell", func() error {
			_, err := ledger.Sell(ctx, sell("u1", "AAPL", -1, "10"))
			return err
		}, func(err error) bool { var e *models.InvalidQuantityError; return errors.As(err, &e) }},
		{"zero price buy", func() error {
			_, err := ledger.Buy(ctx, buy("u1", "AAPL", 1, "0"))
			return err
		}, func(err error) bool { var e *models.InvalidPriceError; return errors.As(err, &e) }},
		{"negative price sell", func() error {
			_, err := ledger.Sell(ctx, sell("u1", "AAPL", 1, "-5"))
			return err
		}, func(err error) bool { var e *models.InvalidPriceError; return errors.As(err, &e) }},
		{"blank symbol", func() error {
			_, err := ledger.Buy(ctx, buy("u1", "   ", 1, "10"))
			return err
		}, func(err error) bool { var e *models.InvalidSymbolError; return errors.As(err, &e) }},
		{"missing user", func() error {
			_, err := ledger.Buy(ctx, buy("", "AAPL", 1, "10"))
			return err
		}, func(err error) bool { var e *models.InvalidUserError; return errors.As(err, &e) }},
		{"unsupported currency", func() error {
			req := buy("u1", "AAPL", 1, "10")
			req.Currency = "EUR"
			_, err := ledger.Buy(ctx, req)
			return err
		}, func(err error) bool { var e *models.UnsupportedCurrencyError; return errors.As(err, &e) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.call()
			require.Error(t, err)
			assert.True(t, c.check(err), err.Error())
		})
	}

	holdings, err := store.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, holdings)
	trades, err := store.ListTrades(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestLedgerCurrencyMismatch(t *testing.T) {
	ledger, store := newLedger(t)
	ctx := context.Background()

	req := buy("u1", "SHOP", 10, "90")
	req.Currency = models.CAD
	_, err := ledger.Buy(ctx, req)
	require.NoError(t, err)

	_, err = ledger.Buy(ctx, buy("u1", "SHOP", 5, "70"))
	var mismatch *models.CurrencyMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, models.CAD, mismatch.Held)
	assert.Equal(t, models.USD, mismatch.Requested)

	h, _ := store.Get(ctx, "u1", "SHOP")
	assert.Equal(t, int64(10), h.Quantity)
	assert.Equal(t, models.CAD, h.Currency)
}

func TestLedgerConcurrentBuys(t *testing.T) {
	ledger, store := newLedger(t)
	ctx := context.Background()
	const n = 100

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Buy(ctx, buy("u1", "AAPL", 1, "42.5"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	h, err := store.Get(ctx, "u1", "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(n), h.Quantity)
	assert.True(t, d("42.5").Equal(h.AvgPrice), h.AvgPrice.String())

	trades, _ := store.ListTrades(ctx, "u1", 0)
	assert.Len(t, trades, n)
}

func TestLedgerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ledger := services.NewLedgerService(repositories.NewMemoryStore(), metrics.NewLedgerMetrics(reg))
	ctx := context.Background()

	_, err := ledger.Buy(ctx, buy("u1", "AAPL", 2, "10"))
	require.NoError(t, err)
	_, err = ledger.Sell(ctx, sell("u1", "AAPL", 3, "10"))
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "stockbot_ledger_trades_total", "stockbot_ledger_rejections_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	problems, err := testutil.GatherAndLint(reg)
	require.NoError(t, err)
	assert.Empty(t, problems)
}
