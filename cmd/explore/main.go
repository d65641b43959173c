package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/TomasH60/semantic-blockchain/internal/util"
	"github.com/TomasH60/semantic-blockchain/pkg/logger"
	"github.com/TomasH60/semantic-blockchain/pkg/logger/console"
)

var debug bool

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore RDF ontologies and instance dumps as a colored graph",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
				Debug:  debug || util.GetEnvBool("DEBUG", false),
				Writer: cmd.ErrOrStderr(),
			}))
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		inspectCmd(),
		serveCmd(),
	)
	return cmd
}

func main() {
	util.LoadEnv()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
