package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routa-core/routa/internal/agenttools"
	"github.com/routa-core/routa/internal/eventbus"
	"github.com/routa-core/routa/internal/store"
)

const twoTaskPlan = `@@@task
# Task one
## Objective
first thing
@@@

@@@task
# Task two
## Objective
second thing
@@@`

// scriptedRunner answers RunPrompt calls in call order: the first call
// is treated as the planner, every subsequent call as a crafter or the
// gate, keyed only by position since this orchestrator always issues
// them in a fixed PLAN -> CRAFT* -> VERIFY order.
type scriptedRunner struct {
	responses  []string
	calls      int
	cancelled  []string
}

func (r *scriptedRunner) RunPrompt(_ context.Context, agentID, _ string) (string, error) {
	resp := r.responses[r.calls]
	r.calls++
	return resp, nil
}

func (r *scriptedRunner) Cancel(agentID string) {
	r.cancelled = append(r.cancelled, agentID)
}

func newOrchestrator(runner AgentRunner) *Orchestrator {
	tools := agenttools.New(store.NewMemoryStore(), eventbus.New())
	return New(Config{Tools: tools, Runner: runner, WorkspaceID: "ws1"})
}

func TestRunHappyPathExecutesAllPhases(t *testing.T) {
	runner := &scriptedRunner{responses: []string{
		twoTaskPlan,
		"crafter output one",
		"crafter output two",
		"APPROVED: both tasks look correct",
	}}
	o := newOrchestrator(runner)

	result, err := o.Run(context.Background(), "build the feature")
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, PhaseDone, result.ReachedPhase)
	assert.Equal(t, "APPROVED: both tasks look correct", result.Verdict)
	require.Len(t, result.Tasks, 2)
	assert.Equal(t, "Task one", result.Tasks[0].Title)
	assert.Equal(t, "Task two", result.Tasks[1].Title)
	assert.Equal(t, "crafter output one", result.CrafterOutputs[result.Tasks[0].ID])
	assert.Equal(t, "crafter output two", result.CrafterOutputs[result.Tasks[1].ID])

	entries := o.DebugEntries()
	assert.Contains(t, entries, "PHASE PLAN")
	assert.Contains(t, entries, "PHASE DISPATCH")
	assert.Contains(t, entries, "TASK planned: Task one")
	assert.Contains(t, entries, "TASK planned: Task two")
	assert.Contains(t, entries, "PHASE CRAFT")
	assert.Contains(t, entries, "CRAFTER running: Task one")
	assert.Contains(t, entries, "CRAFTER completed: Task one")
	assert.Contains(t, entries, "CRAFTER running: Task two")
	assert.Contains(t, entries, "CRAFTER completed: Task two")
	assert.Contains(t, entries, "PHASE VERIFY")
	assert.Contains(t, entries, "PHASE DONE")

	plannedCount := 0
	runningCount := 0
	completedCount := 0
	for _, e := range entries {
		switch {
		case e == "TASK planned: Task one" || e == "TASK planned: Task two":
			plannedCount++
		case e == "CRAFTER running: Task one" || e == "CRAFTER running: Task two":
			runningCount++
		case e == "CRAFTER completed: Task one" || e == "CRAFTER completed: Task two":
			completedCount++
		}
	}
	assert.Equal(t, 2, plannedCount)
	assert.Equal(t, 2, runningCount)
	assert.Equal(t, 2, completedCount)
}

func TestRunNoTasksYieldsNoTasksOutcome(t *testing.T) {
	runner := &scriptedRunner{responses: []string{"no task blocks in this plan at all"}}
	o := newOrchestrator(runner)

	result, err := o.Run(context.Background(), "do something vague")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoTasks, result.Outcome)
	assert.Equal(t, PhaseDispatch, result.ReachedPhase)
}

func TestRunPlanFailurePropagatesAsFailureOutcome(t *testing.T) {
	runner := &failingRunner{failOn: 0}
	o := newOrchestrator(runner)

	result, err := o.Run(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, result.Outcome)
	assert.Equal(t, PhasePlan, result.ReachedPhase)
	assert.Contains(t, result.Reason, "planner exploded")
}

func TestRunCraftFailureMarksPartial(t *testing.T) {
	runner := &failingRunner{failOn: 1, okResponse: twoTaskPlan}
	o := newOrchestrator(runner)

	result, err := o.Run(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, result.Outcome)
	assert.Equal(t, PhaseCraft, result.ReachedPhase)
	assert.True(t, result.Partial)
}

type failingRunner struct {
	failOn     int
	okResponse string
	calls      int
}

func (r *failingRunner) RunPrompt(_ context.Context, _, _ string) (string, error) {
	idx := r.calls
	r.calls++
	if idx == r.failOn {
		if r.failOn == 0 {
			return "", assertableErr{"planner exploded"}
		}
		return "", assertableErr{"crafter exploded"}
	}
	return r.okResponse, nil
}

func (r *failingRunner) Cancel(string) {}

type assertableErr struct{ msg string }

func (e assertableErr) Error() string { return e.msg }
