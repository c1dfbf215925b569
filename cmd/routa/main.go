// Package main provides the CLI entry point for routa-core, a
// multi-agent coordination runtime: a ROUTA planner agent delegates
// work to CRAFTER worker agents and a GATE verifier agent over a
// shared in-memory coordination store and event bus, reachable either
// through the CLI's one-shot "run" command or the "serve" command's
// A2A JSON-RPC HTTP endpoint.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands
// attached. Separated from main() to facilitate testing.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "routa",
		Short: "routa-core - ROUTA/CRAFTER/GATE multi-agent coordination runtime",
		Long: `routa-core coordinates a planner agent (ROUTA), one or more worker
agents (CRAFTER), and a verifier agent (GATE) against a shared
in-memory coordination store and event bus.

Documentation: https://github.com/routa-core/routa`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildServeCmd(),
		buildRunCmd(),
		buildAgentsCmd(),
		buildTasksCmd(),
	)

	return rootCmd
}

func defaultConfigPath() string {
	if path := os.Getenv("ROUTA_CONFIG"); path != "" {
		return path
	}
	return "routa.yaml"
}
