package main

import (
	"github.com/spf13/cobra"
)

// buildAgentsCmd creates the "agents" command group for inspecting
// workspace agent state directly against the coordination store.
func buildAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Inspect agents in a workspace",
	}
	cmd.AddCommand(buildAgentsListCmd(), buildAgentsShowCmd())
	return cmd
}

func buildAgentsListCmd() *cobra.Command {
	var (
		configPath  string
		workspaceID string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agents in a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = defaultConfigPath()
			}
			return runAgentsList(cmd, configPath, workspaceID)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", "", "Workspace id (defaults to the config's workspace_id)")
	return cmd
}

func buildAgentsShowCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "show <agent-id>",
		Short: "Show an agent's status and recent conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = defaultConfigPath()
			}
			return runAgentsShow(cmd, configPath, args[0])
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	return cmd
}
