package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hms-api/internal/app"
	"github.com/jwalitptl/hms-api/internal/config"
	"github.com/jwalitptl/hms-api/pkg/logger"
)

// The worker drains the outbox of a shared postgres store so the API
// processes can run with outbox.enabled=false.
func main() {
	configFile := flag.String("config", "", "path to config.yml")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	l := logger.Setup(cfg.Log.ToLoggerConfig()).WithFields(map[string]interface{}{"component": "outbox-worker"})

	if cfg.Storage.Driver != config.StoragePostgres {
		l.Fatal(nil, "outbox worker needs storage.driver=postgres", "driver", cfg.Storage.Driver)
	}
	cfg.Outbox.Enabled = true
	// the API process owns seeding
	cfg.Storage.Seed = false

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		l.Fatal(err, "failed to initialize worker")
	}
	defer a.Close()

	a.StartWorkers(ctx)
	l.Info("Worker started", "batch_size", cfg.Outbox.BatchSize, "poll_interval", cfg.Outbox.PollInterval.String())
	<-ctx.Done()
	l.Info("Worker shutting down")
}
