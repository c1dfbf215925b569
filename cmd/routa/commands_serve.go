package main

import (
	"github.com/spf13/cobra"
)

// buildServeCmd creates the "serve" command that starts the A2A HTTP
// dispatcher: the primary command for running routa-core as a
// long-lived service other agent hosts talk to over JSON-RPC.
func buildServeCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the A2A JSON-RPC HTTP server",
		Long: `Start the routa-core A2A server.

The server will:
1. Load configuration from the specified file
2. Build the coordination store and event bus
3. Expose POST /a2a/message for agent-to-agent commands
4. Expose /metrics for Prometheus scraping, if configured

Graceful shutdown is handled on SIGINT/SIGTERM signals.`,
		Example: `  # Start with default config
  routa serve

  # Start with a custom config
  routa serve --config /etc/routa/production.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = defaultConfigPath()
			}
			return runServe(cmd.Context(), configPath, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}
