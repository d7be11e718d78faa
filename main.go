package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockbot/src/api"
	"stockbot/src/config"
	"stockbot/src/utils"
	"stockbot/src/worker"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Println(err, "Error while loading .env")
	}

	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}
	logger, err := utils.NewLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Println(err, "Error while creating logger")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer, cleanup, err := build(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Couldn't run")
		return
	}
	defer cleanup()

	errC := run(httpServer, logger)
	select {
	case err := <-errC:
		if err != nil {
			logger.WithError(err).Error("Error while running")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Error while shutting down")
		}
	}
}

func build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*http.Server, func(), error) {
	if cfg.Service.Type == config.WORKER {
		server, cleanup, err := worker.Build(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return worker.NewHTTPServer(server, cfg.Service.Port), cleanup, nil
	}
	server, cleanup, err := api.Build(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return api.NewHTTPServer(server, cfg.Service.Port), cleanup, nil
}

func run(httpServer *http.Server, logger *logrus.Logger) <-chan error {
	errC := make(chan error, 1)
	go func() {
		logger.WithField("addr", httpServer.Addr).Info("Starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()
	return errC
}
