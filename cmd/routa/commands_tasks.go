package main

import (
	"github.com/spf13/cobra"
)

// buildTasksCmd creates the "tasks" command group for inspecting and
// seeding tasks directly against the coordination store.
func buildTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect or seed tasks in a workspace",
	}
	cmd.AddCommand(buildTasksListCmd(), buildTasksCreateCmd())
	return cmd
}

func buildTasksListCmd() *cobra.Command {
	var (
		configPath string
		agentID    string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks assigned to an agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = defaultConfigPath()
			}
			return runTasksList(cmd, configPath, agentID)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&agentID, "agent", "a", "", "Agent id to list tasks for")
	_ = cmd.MarkFlagRequired("agent")
	return cmd
}

func buildTasksCreateCmd() *cobra.Command {
	var (
		configPath  string
		title       string
		objective   string
		workspaceID string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Seed a PENDING task in a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = defaultConfigPath()
			}
			return runTasksCreate(cmd, configPath, title, objective, workspaceID)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Task title")
	cmd.Flags().StringVarP(&objective, "objective", "o", "", "Task objective")
	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", "", "Workspace id (defaults to the config's workspace_id)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
