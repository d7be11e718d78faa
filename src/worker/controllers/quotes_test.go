package controllers_test

import (
	"context"
	"errors"
	"testing"

	"stockbot/src/models"
	"stockbot/src/worker/controllers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSymbols struct {
	symbols []models.HeldSymbol
	err     error
}

func (s staticSymbols) ListSymbols(context.Context) ([]models.HeldSymbol, error) {
	return s.symbols, s.err
}

type recordingOracle struct {
	asked []string
}

func (o *recordingOracle) CurrentPrice(_ context.Context, symbol string, region models.Region) (models.Quote, error) {
	o.asked = append(o.asked, string(region)+":"+symbol)
	if symbol == "GONE" {
		return models.Quote{}, &models.PriceUnavailableError{Symbol: symbol}
	}
	return models.Quote{Symbol: symbol, Price: decimal.NewFromInt(1), Currency: models.USD}, nil
}

func TestWarmQuotes(t *testing.T) {
	t.Run("asks for every held symbol in its region", func(t *testing.T) {
		oracle := &recordingOracle{}
		controller := controllers.NewController(staticSymbols{symbols: []models.HeldSymbol{
			{Symbol: "AAPL", Currency: models.USD},
			{Symbol: "GONE", Currency: models.USD},
			{Symbol: "SHOP", Currency: models.CAD},
		}}, oracle)

		res, err := controller.WarmQuotes(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, res.Warmed)
		assert.Equal(t, []string{"GONE"}, res.Failed)
		assert.Equal(t, []string{"US:AAPL", "US:GONE", "CA:SHOP"}, oracle.asked)
	})

	t.Run("nothing held", func(t *testing.T) {
		controller := controllers.NewController(staticSymbols{}, &recordingOracle{})
		res, err := controller.WarmQuotes(context.Background())
		require.NoError(t, err)
		assert.Zero(t, res.Warmed)
		assert.NotNil(t, res.Failed)
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("db down")
		controller := controllers.NewController(staticSymbols{err: boom}, &recordingOracle{})
		_, err := controller.WarmQuotes(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context stops the loop", func(t *testing.T) {
		oracle := &recordingOracle{}
		controller := controllers.NewController(staticSymbols{symbols: []models.HeldSymbol{{Symbol: "AAPL", Currency: models.USD}}}, oracle)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := controller.WarmQuotes(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, oracle.asked)
	})
}
