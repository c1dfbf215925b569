package main

import (
	"github.com/spf13/cobra"
)

// buildRunCmd creates the "run" command, which drives one ROUTA ->
// CRAFTER(s) -> GATE orchestrator run against a single request read
// from stdin or --request, printing the final verdict.
func buildRunCmd() *cobra.Command {
	var (
		configPath  string
		request     string
		workspaceID string
		parallel    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one orchestrator pass against a request",
		Long: `Run drives a single PLAN -> DISPATCH -> CRAFT -> VERIFY -> DONE pass:
a ROUTA agent plans tasks from the request, one CRAFTER agent executes
each task, and a GATE agent verifies the result.`,
		Example: `  routa run --request "add a README to the repo"
  echo "fix the failing test" | routa run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = defaultConfigPath()
			}
			return runOrchestration(cmd, configPath, request, workspaceID, parallel)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&request, "request", "r", "", "The user request to plan and execute (reads stdin if omitted)")
	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", "", "Workspace id (defaults to the config's workspace_id)")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Run CRAFTER tasks concurrently")

	return cmd
}
