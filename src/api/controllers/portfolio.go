package controllers

import (
	"context"

	"stockbot/src/schemas"
)

func (c *Controller) GetPortfolio(ctx context.Context, userID string, enrich bool) (*schemas.PortfolioReport, error) {
	report, err := c.Portfolio.Valuate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if enrich {
		report = c.Portfolio.Enrich(ctx, report, c.Oracle)
	}
	return report, nil
}
