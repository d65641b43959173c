package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TomasH60/semantic-blockchain/internal/config"
	"github.com/TomasH60/semantic-blockchain/internal/server"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := os.Setenv(config.PathEnv, configPath); err != nil {
					return err
				}
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file (overrides "+config.PathEnv+")")
	return cmd
}
