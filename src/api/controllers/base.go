package controllers

import (
	"context"

	"stockbot/src/models"
	"stockbot/src/repositories"
	"stockbot/src/schemas"
	"stockbot/src/services"
)

type IController interface {
	Buy(ctx context.Context, userID string, req schemas.TradeRequest) (*schemas.TradeResponse, error)
	Sell(ctx context.Context, userID string, req schemas.TradeRequest) (*schemas.TradeResponse, error)
	GetTrades(ctx context.Context, userID string, limit int) (*schemas.TradesResponse, error)
	GetPortfolio(ctx context.Context, userID string, enrich bool) (*schemas.PortfolioReport, error)
	GetQuote(ctx context.Context, symbol string, region models.Region) (*schemas.QuoteResponse, error)
}

type Controller struct {
	Ledger    services.LedgerServiceI
	Portfolio services.PortfolioServiceI
	Holdings  repositories.HoldingReader
	Trades    repositories.TradeRepository
	Oracle    services.PriceOracle
}

func NewController(
	ledger services.LedgerServiceI,
	portfolio services.PortfolioServiceI,
	holdings repositories.HoldingReader,
	trades repositories.TradeRepository,
	oracle services.PriceOracle,
) *Controller {
	return &Controller{
		Ledger:    ledger,
		Portfolio: portfolio,
		Holdings:  holdings,
		Trades:    trades,
		Oracle:    oracle,
	}
}
