package controllers

import (
	"context"

	"stockbot/src/models"
	"stockbot/src/schemas"
	"stockbot/src/services"

	"github.com/shopspring/decimal"
)

func (c *Controller) Buy(ctx context.Context, userID string, req schemas.TradeRequest) (*schemas.TradeResponse, error) {
	if err := checkTradeRequest(req); err != nil {
		return nil, err
	}
	symbol := models.CanonicalSymbol(req.Symbol)

	currency := models.CurrencyFor(symbol, models.ParseRegion(req.Region))
	if req.Region == "" && !models.HasCanadianSuffix(symbol) {
		held, err := c.Holdings.Get(ctx, userID, symbol)
		if err != nil {
			return nil, err
		}
		if held != nil {
			currency = held.Currency
		}
	}

	price, err := c.resolvePrice(ctx, req, symbol, currency)
	if err != nil {
		return nil, err
	}

	holding, err := c.Ledger.Buy(ctx, services.BuyRequest{
		UserID:    userID,
		Username:  req.Username,
		Symbol:    symbol,
		Quantity:  req.Quantity,
		UnitPrice: price,
		Currency:  currency,
	})
	if err != nil {
		return nil, err
	}

	total := price.Mul(decimal.NewFromInt(req.Quantity))
	return &schemas.TradeResponse{
		Side:     models.Buy,
		Symbol:   holding.Symbol,
		Quantity: req.Quantity,
		Price:    price,
		Currency: holding.Currency,
		Total:    total,
		Display:  holding.Currency.Format(total),
		Holding:  holding,
	}, nil
}

func (c *Controller) Sell(ctx context.Context, userID string, req schemas.TradeRequest) (*schemas.TradeResponse, error) {
	if err := checkTradeRequest(req); err != nil {
		return nil, err
	}
	symbol := models.CanonicalSymbol(req.Symbol)

	var price decimal.Decimal
	if req.Price != nil {
		price = *req.Price
	} else {
		// The live price is read in the market of the holding. The ledger
		// checks the position again under its lock.
		held, err := c.Holdings.Get(ctx, userID, symbol)
		if err != nil {
			return nil, err
		}
		if held == nil {
			return nil, &models.NoPositionError{UserID: userID, Symbol: symbol}
		}
		if price, err = c.resolvePrice(ctx, req, symbol, held.Currency); err != nil {
			return nil, err
		}
	}

	result, err := c.Ledger.Sell(ctx, services.SellRequest{
		UserID:    userID,
		Username:  req.Username,
		Symbol:    symbol,
		Quantity:  req.Quantity,
		UnitPrice: price,
	})
	if err != nil {
		return nil, err
	}

	return &schemas.TradeResponse{
		Side:     models.Sell,
		Symbol:   symbol,
		Quantity: req.Quantity,
		Price:    price,
		Currency: result.Currency,
		Total:    result.Realized,
		Display:  result.Currency.Format(result.Realized),
		Holding:  result.Holding,
	}, nil
}

func (c *Controller) GetTrades(ctx context.Context, userID string, limit int) (*schemas.TradesResponse, error) {
	trades, err := c.Trades.ListTrades(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	return &schemas.TradesResponse{Trades: trades}, nil
}

func checkTradeRequest(req schemas.TradeRequest) error {
	if models.CanonicalSymbol(req.Symbol) == "" {
		return &models.InvalidSymbolError{Symbol: req.Symbol}
	}
	if req.Quantity <= 0 {
		return &models.InvalidQuantityError{Quantity: req.Quantity}
	}
	return nil
}

// resolvePrice uses the price of the request when given, the live price in
// the market of currency otherwise. A quote in another currency is refused.
// It runs before the ledger takes its lock.
func (c *Controller) resolvePrice(ctx context.Context, req schemas.TradeRequest, symbol string, currency models.Currency) (decimal.Decimal, error) {
	if req.Price != nil {
		return *req.Price, nil
	}
	quote, err := c.Oracle.CurrentPrice(ctx, symbol, currency.Region())
	if err != nil {
		return decimal.Zero, err
	}
	if quote.Currency != currency {
		return decimal.Zero, &models.CurrencyMismatchError{Symbol: symbol, Held: currency, Requested: quote.Currency}
	}
	return quote.Price, nil
}
