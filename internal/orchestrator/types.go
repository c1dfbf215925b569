package orchestrator

import (
	"context"

	"github.com/routa-core/routa/internal/store"
)

// Phase tags a step of the PLAN -> DISPATCH -> CRAFT -> VERIFY -> DONE
// pipeline.
type Phase string

const (
	PhasePlan     Phase = "PLAN"
	PhaseDispatch Phase = "DISPATCH"
	PhaseCraft    Phase = "CRAFT"
	PhaseVerify   Phase = "VERIFY"
	PhaseDone     Phase = "DONE"
)

// Outcome tags which variant a Result carries.
type Outcome string

const (
	OutcomeSuccess   Outcome = "SUCCESS"
	OutcomeNoTasks   Outcome = "NO_TASKS"
	OutcomeFailure   Outcome = "FAILURE"
	OutcomeCancelled Outcome = "CANCELLED"
)

// Result is the terminal outcome of one orchestrator Run.
type Result struct {
	Outcome        Outcome
	Verdict        string
	Tasks          []*store.Task
	CrafterOutputs map[string]string // taskID -> output
	Reason         string
	Partial        bool
	ReachedPhase   Phase
}

// AgentRunner is the minimal surface the orchestrator needs from a
// running agent: a single-shot prompt/response exchange plus
// cooperative cancellation, satisfied by workspaceagent.Loop.
type AgentRunner interface {
	RunPrompt(ctx context.Context, agentID, prompt string) (string, error)
	Cancel(agentID string)
}
