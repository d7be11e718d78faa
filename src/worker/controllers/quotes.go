package controllers

import (
	"context"

	"stockbot/src/schemas"
	"stockbot/src/utils"
)

// WarmQuotes asks the oracle for every held symbol so the quote cache is
// fresh when users value their portfolios.
func (c *Controller) WarmQuotes(ctx context.Context) (*schemas.WarmQuotesResponse, error) {
	logger := utils.LoggerFromContext(ctx)

	symbols, err := c.Holdings.ListSymbols(ctx)
	if err != nil {
		return nil, err
	}

	res := &schemas.WarmQuotesResponse{Failed: []string{}}
	for _, held := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := c.Oracle.CurrentPrice(ctx, held.Symbol, held.Currency.Region()); err != nil {
			logger.WithError(err).WithField("symbol", held.Symbol).Warn("could not warm quote")
			res.Failed = append(res.Failed, held.Symbol)
			continue
		}
		res.Warmed++
	}
	logger.WithFields(map[string]interface{}{"warmed": res.Warmed, "failed": len(res.Failed)}).Info("quote cache warmed")
	return res, nil
}
