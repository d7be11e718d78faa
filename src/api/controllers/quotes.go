package controllers

import (
	"context"

	"stockbot/src/models"
	"stockbot/src/schemas"
)

func (c *Controller) GetQuote(ctx context.Context, symbol string, region models.Region) (*schemas.QuoteResponse, error) {
	quote, err := c.Oracle.CurrentPrice(ctx, symbol, region)
	if err != nil {
		return nil, err
	}
	return &schemas.QuoteResponse{Quote: quote, Display: quote.Currency.Format(quote.Price) + " " + string(quote.Currency)}, nil
}
