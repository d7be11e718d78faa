package worker

import (
	"context"
	"time"

	"stockbot/src/clients/quotes"
	"stockbot/src/config"
	"stockbot/src/database"
	"stockbot/src/metrics"
	"stockbot/src/scheduler"
	"stockbot/src/utils"
	"stockbot/src/worker/controllers"
	handlers "stockbot/src/worker/handlers"

	"github.com/sirupsen/logrus"
)

// Build wires the worker server and schedules the quote warm-up job. The
// returned function stops the schedule and releases the stores.
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

	controller := controllers.NewController(stores.Holdings, oracle)

	task, err := scheduler.NewScheduledTask(cfg.Worker.WarmQuotesCron, func() {
		jobCtx, cancel := context.WithTimeout(utils.WithLogger(context.Background(), logger.WithField("job", "warm_quotes")), 5*time.Minute)
		defer cancel()
		if _, err := controller.WarmQuotes(jobCtx); err != nil {
			logger.WithError(err).Error("scheduled quote warm-up failed")
		}
	})
	if err != nil {
		closeOracle()
		stores.Close()
		return nil, nil, err
	}

	server := NewServer(handlers.NewHandler(controller), m.Handler(), logger)
	return server, func() {
		<-task.Cancel().Done()
		closeOracle()
		stores.Close()
	}, nil
}
