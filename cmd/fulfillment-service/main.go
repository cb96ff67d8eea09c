package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/app"
	"github.com/vladislavdragonenkov/fulfillment/internal/version"
)

// loadConfig читает конфигурацию и логирует проигнорированные значения.
func loadConfig(lookup app.EnvLookup, logger *log.Entry) app.Config {
	cfg, warnings := app.ReadConfig(lookup)
	for _, warning := range warnings {
		logger.WithError(warning).Warn("invalid configuration value, using default")
	}
	return cfg
}

func main() {
	bootLogger := log.WithField("component", "main")
	cfg := loadConfig(os.LookupEnv, bootLogger)
	app.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields(version.Get().Fields())).WithFields(log.Fields{
		"grpc_addr":      cfg.GRPCAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
	}).Info("starting fulfillment service")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("fulfillment service stopped with error")
	}

	log.Info("fulfillment service stopped")
}
