package api

import (
	"context"

	"stockbot/src/api/controllers"
	handlers "stockbot/src/api/handlers"
	"stockbot/src/clients/quotes"
	"stockbot/src/config"
	"stockbot/src/database"
	"stockbot/src/metrics"
	"stockbot/src/services"

	"github.com/sirupsen/logrus"
)

// Build wires the API server from configuration. The returned function
// releases the database pool and the quote cache.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Server, func(), error) {
	m := metrics.New()

	stores, err := database.OpenStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	oracle, closeOracle, err := quotes.NewOracleFromConfig(ctx, cfg, m.Quotes)
	if err != nil {
		stores.Close()
		return nil, nil, err
	}

	ledger := services.NewLedgerService(stores.Holdings, m.Ledger)
	portfolio := services.NewPortfolioService(stores.Holdings)
	controller := controllers.NewController(ledger, portfolio, stores.Holdings, stores.Trades, oracle)

	server := NewServer(handlers.NewHandler(controller), m.Handler(), logger, cfg.Service)
	return server, func() {
		closeOracle()
		stores.Close()
	}, nil
}
