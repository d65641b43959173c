package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/TomasH60/semantic-blockchain/internal/config"
	"github.com/TomasH60/semantic-blockchain/internal/server"
	"github.com/TomasH60/semantic-blockchain/internal/util"
	"github.com/TomasH60/semantic-blockchain/pkg/logger"
	"github.com/TomasH60/semantic-blockchain/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	cfg, err := config.Load()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: cfg.Debug || util.GetEnvBool("DEBUG", false),
		JSON:  util.GetEnvBool("LOG_JSON", false),
	})
	logger.Init(consoleLogger)

	if err != nil {
		logger.Fatal("[Config] Invalid configuration", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		logger.Fatal("Server failed", "err", err)
	}
}
