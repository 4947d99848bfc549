package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobwatch/internal/api/jobs"
	"jobwatch/internal/cli"
	"jobwatch/internal/config"
	"jobwatch/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Debug("starting jobwatch",
		zap.String("api_url", cfg.APIBaseURL),
		zap.String("log_level", cfg.LogLevel),
	)

	client := jobs.New(cfg.APIBaseURL, cfg.APITimeout, log).WithScrapeTimeout(cfg.ScrapeTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Config: cfg,
		Client: client,
		Logger: log,
	}

	if err := cli.Execute(ctx, app, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		log.Sync()
		os.Exit(1)
	}
}
