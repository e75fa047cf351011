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

func main() {
	configFile := flag.String("config", "", "path to config.yml")
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	l := logger.Setup(cfg.Log.ToLoggerConfig())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		l.Fatal(err, "failed to initialize application")
	}
	defer func() {
		if err := a.Close(); err != nil {
			l.Error(err, "failed to release resources")
		}
	}()

	if err := a.Serve(ctx); err != nil {
		l.Error(err, "server stopped")
		return
	}
	l.Info("Server exited")
}
