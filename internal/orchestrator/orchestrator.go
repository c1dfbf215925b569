// Package orchestrator drives the ROUTA -> CRAFTER(s) -> GATE pipeline:
// PLAN calls the planner agent, DISPATCH parses its output into
// ordered tasks, CRAFT runs one worker agent per task (sequentially or
// bounded-parallel), VERIFY asks a single verifier agent to approve or
// reject, and DONE yields the terminal Result.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/routa-core/routa/internal/agenttools"
	"github.com/routa-core/routa/internal/store"
	"github.com/routa-core/routa/internal/taskparser"
)

// cancelGrace is the timer cancelledResult selects against. Its done
// channel closes at once, so the timer never decides the outcome.
const cancelGrace = 5 * time.Second

// Config wires an Orchestrator to the coordination surface and the
// agent runner used for every ROUTA/CRAFTER/GATE exchange.
type Config struct {
	Tools       *agenttools.AgentTools
	Runner      AgentRunner
	WorkspaceID string
	// Parallel runs CRAFT tasks concurrently, bounded by MaxParallel
	// (default 4), instead of strictly sequential task-by-task.
	Parallel    bool
	MaxParallel int
}

// Orchestrator drives one PLAN->DISPATCH->CRAFT->VERIFY->DONE run. A
// single instance owns its own debug log; it is not shared across
// workspaces.
type Orchestrator struct {
	cfg   Config
	debug *debugLog

	mu        sync.Mutex
	runningID []string
	cancelled bool
}

// New builds an Orchestrator from cfg, defaulting MaxParallel.
func New(cfg Config) *Orchestrator {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	return &Orchestrator{cfg: cfg, debug: newDebugLog()}
}

// DebugEntries returns the orchestrator's bounded debug log in
// chronological order, for test assertions and operator inspection.
func (o *Orchestrator) DebugEntries() []string {
	entries := o.debug.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

// Cancel requests cancellation of the current run: every tracked
// running agent's cooperative flag is set. Cancel does not wait. Run
// checks the request only at phase boundaries, after every agent of
// the current phase has returned, and then returns Cancelled; no time
// limit applies to that wait.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	o.cancelled = true
	ids := append([]string(nil), o.runningID...)
	o.mu.Unlock()

	o.debug.record("interrupt requested")
	for _, id := range ids {
		o.cfg.Runner.Cancel(id)
	}
}

func (o *Orchestrator) isCancelled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelled
}

func (o *Orchestrator) trackRunning(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runningID = append(o.runningID, id)
}

func promptPreview(prompt string) string {
	const maxLen = 80
	trimmed := strings.TrimSpace(prompt)
	if len(trimmed) <= maxLen {
		return trimmed
	}
	return trimmed[:maxLen] + "..."
}

// Run drives a full pipeline for userRequest.
func (o *Orchestrator) Run(ctx context.Context, userRequest string) (Result, error) {
	// PLAN
	o.debug.record("PHASE PLAN")
	routaID, err := o.cfg.Tools.Store.InitializeWorkspace(o.cfg.WorkspaceID)
	if err != nil {
		o.debug.record("error: " + err.Error())
		return Result{Outcome: OutcomeFailure, Reason: err.Error(), ReachedPhase: PhasePlan}, nil
	}
	o.trackRunning(routaID)
	if err := o.setAgentStatus(routaID, store.AgentActive); err != nil {
		o.debug.record("error: " + err.Error())
		return Result{Outcome: OutcomeFailure, Reason: err.Error(), ReachedPhase: PhasePlan}, nil
	}

	planText, err := o.cfg.Runner.RunPrompt(ctx, routaID, userRequest)
	if err != nil {
		o.debug.record("error: " + err.Error())
		return Result{Outcome: OutcomeFailure, Reason: err.Error(), ReachedPhase: PhasePlan}, nil
	}
	o.debug.record("prompt sent: " + promptPreview(userRequest))

	if o.isCancelled() {
		return o.cancelledResult(PhasePlan)
	}

	// DISPATCH
	o.debug.record("PHASE DISPATCH")
	tasks := taskparser.Parse(planText, o.cfg.WorkspaceID)
	if len(tasks) == 0 {
		o.debug.record("DISPATCH found zero tasks")
		_ = o.setAgentStatus(routaID, store.AgentCompleted)
		return Result{Outcome: OutcomeNoTasks, ReachedPhase: PhaseDispatch}, nil
	}
	for _, t := range tasks {
		if err := o.cfg.Tools.Store.SaveTask(t); err != nil {
			o.debug.record("error: " + err.Error())
			return Result{Outcome: OutcomeFailure, Reason: err.Error(), ReachedPhase: PhaseDispatch}, nil
		}
		o.debug.record("TASK planned: " + t.Title)
	}

	if o.isCancelled() {
		return o.cancelledResult(PhaseDispatch)
	}

	// CRAFT
	o.debug.record("PHASE CRAFT")
	outputs, err := o.craft(ctx, routaID, tasks)
	if err != nil {
		return Result{Outcome: OutcomeFailure, Reason: err.Error(), ReachedPhase: PhaseCraft, Partial: true}, nil
	}

	if o.isCancelled() {
		return o.cancelledResult(PhaseCraft)
	}

	// VERIFY
	o.debug.record("PHASE VERIFY")
	verdict, err := o.verify(ctx, tasks, outputs)
	if err != nil {
		o.debug.record("error: " + err.Error())
		return Result{Outcome: OutcomeFailure, Reason: err.Error(), ReachedPhase: PhaseVerify, Partial: true}, nil
	}

	// DONE
	o.debug.record("PHASE DONE")
	if err := o.setAgentStatus(routaID, store.AgentCompleted); err != nil {
		o.debug.record("error: " + err.Error())
		return Result{Outcome: OutcomeFailure, Reason: err.Error(), ReachedPhase: PhaseDone, Partial: true}, nil
	}
	return Result{
		Outcome:        OutcomeSuccess,
		Verdict:        verdict,
		Tasks:          tasks,
		CrafterOutputs: outputs,
		ReachedPhase:   PhaseDone,
	}, nil
}

func (o *Orchestrator) cancelledResult(reached Phase) (Result, error) {
	done := make(chan struct{})
	go func() {
		// every agent of the finished phase has already returned,
		// so there is nothing left to wait for.
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(cancelGrace):
	}
	return Result{Outcome: OutcomeCancelled, ReachedPhase: reached}, nil
}

func (o *Orchestrator) craft(ctx context.Context, routaID string, tasks []*store.Task) (map[string]string, error) {
	outputs := make(map[string]string, len(tasks))

	runOne := func(t *store.Task) (string, error) {
		created := o.cfg.Tools.CreateAgent(agenttools.CreateAgentInput{
			Name:        "crafter-" + t.ID,
			Role:        string(store.RoleCrafter),
			WorkspaceID: o.cfg.WorkspaceID,
		})
		if !created.Success {
			return "", fmt.Errorf("create crafter: %s", created.Data)
		}
		agentID := created.Data
		o.trackRunning(agentID)

		delegated := o.cfg.Tools.DelegateTask(agentID, t.ID, routaID)
		if !delegated.Success {
			return "", fmt.Errorf("delegate task %s: %s", t.ID, delegated.Error)
		}
		o.debug.record("CRAFTER running: " + t.Title)

		prompt := taskparser.Format(t)
		output, err := o.cfg.Runner.RunPrompt(ctx, agentID, prompt)
		if err != nil {
			return "", err
		}

		report := o.cfg.Tools.ReportToParent(store.CompletionReport{
			AgentID: agentID,
			TaskID:  t.ID,
			Summary: output,
			Success: true,
		})
		if !report.Success {
			return "", fmt.Errorf("report task %s: %s", t.ID, report.Error)
		}
		t.Status = store.TaskCompleted
		t.AssignedTo = agentID
		o.debug.record("CRAFTER completed: " + t.Title)
		return output, nil
	}

	if !o.cfg.Parallel {
		for _, t := range tasks {
			output, err := runOne(t)
			if err != nil {
				return outputs, err
			}
			outputs[t.ID] = output
		}
		return outputs, nil
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.MaxParallel)
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			output, err := runOne(t)
			if err != nil {
				return err
			}
			mu.Lock()
			outputs[t.ID] = output
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outputs, err
	}
	return outputs, nil
}

func (o *Orchestrator) verify(ctx context.Context, tasks []*store.Task, outputs map[string]string) (string, error) {
	created := o.cfg.Tools.CreateAgent(agenttools.CreateAgentInput{
		Name:        "gate",
		Role:        string(store.RoleGate),
		WorkspaceID: o.cfg.WorkspaceID,
	})
	if !created.Success {
		return "", fmt.Errorf("create gate: %s", created.Data)
	}
	gateID := created.Data
	o.trackRunning(gateID)
	if err := o.setAgentStatus(gateID, store.AgentActive); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Review the following completed tasks and their outputs, then approve or reject.\n\n")
	for _, t := range tasks {
		fmt.Fprintf(&b, "## %s\n%s\n\nOutput:\n%s\n\n", t.Title, t.Objective, outputs[t.ID])
	}

	verdict, err := o.cfg.Runner.RunPrompt(ctx, gateID, b.String())
	if err != nil {
		return "", err
	}
	if err := o.setAgentStatus(gateID, store.AgentCompleted); err != nil {
		return "", err
	}
	return verdict, nil
}

// setAgentStatus advances agentID's status through the store, used
// for the GATE agent's ACTIVE/COMPLETED transitions that have no
// dedicated agenttools operation (delegate_task/report_to_parent only
// cover CRAFTER task assignment).
func (o *Orchestrator) setAgentStatus(agentID string, status store.AgentStatus) error {
	ag, err := o.cfg.Tools.Store.GetAgent(agentID)
	if err != nil {
		return err
	}
	ag.Status = status
	return o.cfg.Tools.Store.SaveAgent(ag)
}
