package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/routa-core/routa/internal/a2a"
	"github.com/routa-core/routa/internal/agenttools"
	"github.com/routa-core/routa/internal/config"
	"github.com/routa-core/routa/internal/eventbus"
	"github.com/routa-core/routa/internal/llmexec"
	"github.com/routa-core/routa/internal/observability"
	"github.com/routa-core/routa/internal/orchestrator"
	"github.com/routa-core/routa/internal/store"
	"github.com/routa-core/routa/internal/toolcall"
	"github.com/routa-core/routa/internal/workspaceagent"
)

// runtime bundles the components every subcommand wires together from
// a loaded config: coordination store, event bus, agent tools, the
// LLM executor resolved against the active model, and observability.
type runtime struct {
	cfg     *config.Config
	store   store.Store
	bus     *eventbus.Bus
	tools   *agenttools.AgentTools
	logger  *observability.Logger
	metrics *observability.Metrics
}

func buildRuntime(configPath string, debug bool) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if debug {
		cfg.Logging.Level = "debug"
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	metrics := observability.NewMetrics()

	st := store.NewMemoryStore()
	bus := eventbus.New()
	tools := agenttools.New(st, bus)

	return &runtime{cfg: cfg, store: st, bus: bus, tools: tools, logger: logger, metrics: metrics}, nil
}

// executor resolves the active model config to an llmexec.Executor.
func (rt *runtime) executor(ctx context.Context) (llmexec.Executor, error) {
	active, err := rt.cfg.ActiveModel()
	if err != nil {
		return nil, err
	}
	facade := llmexec.NewFacade()
	return facade.Resolve(ctx, llmexec.NamedModelConfig{
		Name:     active.Name,
		Provider: active.Provider,
		APIKey:   active.APIKey,
		BaseURL:  active.BaseURL,
		Model:    active.Model,
	})
}

func runServe(ctx context.Context, configPath string, debug bool) error {
	rt, err := buildRuntime(configPath, debug)
	if err != nil {
		return err
	}

	var opts []a2a.ServerOption
	if rt.cfg.A2A.BearerSecret != "" {
		opts = append(opts, a2a.WithBearerAuth(a2a.NewBearerAuth(rt.cfg.A2A.BearerSecret)))
	}
	dispatcher := a2a.New(rt.tools)
	server := a2a.NewServer(dispatcher, opts...)

	httpServer := &http.Server{
		Addr:    rt.cfg.Server.HTTPAddr,
		Handler: server.Router(),
	}

	var metricsServer *http.Server
	if rt.cfg.Observability.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: rt.cfg.Observability.MetricsAddr, Handler: mux}
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	serveErrCh := make(chan error, 1)
	go func() {
		rt.logger.Info(ctx, "routa-core A2A server listening", "addr", rt.cfg.Server.HTTPAddr)
		serveErrCh <- httpServer.ListenAndServe()
	}()
	if metricsServer != nil {
		go func() {
			rt.logger.Info(ctx, "metrics server listening", "addr", rt.cfg.Observability.MetricsAddr)
			_ = metricsServer.ListenAndServe()
		}()
	}

	select {
	case err := <-serveErrCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		rt.logger.Info(context.Background(), "shutdown signal received, stopping A2A server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
	}

	rt.logger.Info(context.Background(), "routa-core A2A server stopped")
	return nil
}

func runOrchestration(cmd *cobra.Command, configPath, request, workspaceID string, parallel bool) error {
	rt, err := buildRuntime(configPath, false)
	if err != nil {
		return err
	}

	if request == "" {
		data, err := io.ReadAll(bufio.NewReader(cmd.InOrStdin()))
		if err != nil {
			return fmt.Errorf("read request from stdin: %w", err)
		}
		request = strings.TrimSpace(string(data))
	}
	if request == "" {
		return fmt.Errorf("a request is required, via --request or stdin")
	}

	if workspaceID == "" {
		workspaceID = rt.cfg.WorkspaceID
	}
	if workspaceID == "" {
		workspaceID = "default"
	}

	ctx := cmd.Context()
	exec, err := rt.executor(ctx)
	if err != nil {
		return fmt.Errorf("resolve model: %w", err)
	}

	active, err := rt.cfg.ActiveModel()
	if err != nil {
		return err
	}

	toolExecutor := toolcall.NewExecutor(".")
	loop := workspaceagent.New(workspaceagent.Config{
		Executor:     exec,
		ToolExecutor: toolExecutor,
		Model:        active.Model,
		SystemPrompt: routaSystemPrompt,
	})

	orch := orchestrator.New(orchestrator.Config{
		Tools:       rt.tools,
		Runner:      loop,
		WorkspaceID: workspaceID,
		Parallel:    parallel,
	})

	result, err := orch.Run(ctx, request)
	if err != nil {
		return fmt.Errorf("orchestrator run: %w", err)
	}
	rt.metrics.OrchestratorRuns.WithLabelValues(strings.ToLower(string(result.Outcome))).Inc()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "outcome: %s\n", result.Outcome)
	if result.Reason != "" {
		fmt.Fprintf(out, "reason: %s\n", result.Reason)
	}
	if result.Verdict != "" {
		fmt.Fprintf(out, "verdict: %s\n", result.Verdict)
	}
	for _, t := range result.Tasks {
		fmt.Fprintf(out, "task %s: %s [%s]\n", t.ID, t.Title, t.Status)
	}
	for _, line := range orch.DebugEntries() {
		fmt.Fprintf(out, "debug: %s\n", line)
	}

	return nil
}

const routaSystemPrompt = `You coordinate work in a multi-agent runtime. When asked to plan,
break the request into one or more @@@task@@@ blocks with a title,
objective, and scope. When asked to execute a task, use the available
tools to complete it and report your result in plain text. When asked
to verify, respond with either "APPROVED" or "REJECTED: <reason>".`

func runAgentsList(cmd *cobra.Command, configPath, workspaceID string) error {
	rt, err := buildRuntime(configPath, false)
	if err != nil {
		return err
	}
	if workspaceID == "" {
		workspaceID = rt.cfg.WorkspaceID
	}

	result := rt.tools.ListAgents(workspaceID)
	out := cmd.OutOrStdout()
	if !result.Success {
		return fmt.Errorf("list agents: %s", result.Error)
	}
	fmt.Fprintln(out, result.Data)
	return nil
}

func runAgentsShow(cmd *cobra.Command, configPath, agentID string) error {
	rt, err := buildRuntime(configPath, false)
	if err != nil {
		return err
	}

	status := rt.tools.GetAgentStatus(agentID)
	out := cmd.OutOrStdout()
	if !status.Success {
		return fmt.Errorf("get agent status: %s", status.Error)
	}
	fmt.Fprintln(out, status.Data)

	convo := rt.tools.ReadAgentConversation(agentID, 10, false)
	if convo.Success {
		fmt.Fprintln(out, "--- recent conversation ---")
		fmt.Fprintln(out, convo.Data)
	}
	return nil
}

func runTasksList(cmd *cobra.Command, configPath, agentID string) error {
	rt, err := buildRuntime(configPath, false)
	if err != nil {
		return err
	}

	tasks, err := rt.store.TasksForAgent(agentID)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, t := range tasks {
		fmt.Fprintf(out, "%s\t%s\t%s\n", t.ID, t.Status, t.Title)
	}
	return nil
}

func runTasksCreate(cmd *cobra.Command, configPath, title, objective, workspaceID string) error {
	rt, err := buildRuntime(configPath, false)
	if err != nil {
		return err
	}
	if workspaceID == "" {
		workspaceID = rt.cfg.WorkspaceID
	}
	if workspaceID == "" {
		workspaceID = "default"
	}

	t := &store.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Objective:   objective,
		Status:      store.TaskPending,
		WorkspaceID: workspaceID,
	}
	if err := rt.store.SaveTask(t); err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), t.ID)
	return nil
}
