// Package store holds the coordination state for a single workspace:
// agents, tasks, and per-agent conversations.
package store

import "time"

// AgentRole tags an agent's position in the ROUTA/CRAFTER/GATE hierarchy.
type AgentRole string

const (
	RoleRouta   AgentRole = "ROUTA"
	RoleCrafter AgentRole = "CRAFTER"
	RoleGate    AgentRole = "GATE"
)

// ParseAgentRole strictly parses a role string, rejecting anything
// outside the fixed set.
func ParseAgentRole(s string) (AgentRole, bool) {
	switch AgentRole(s) {
	case RoleRouta, RoleCrafter, RoleGate:
		return AgentRole(s), true
	default:
		return "", false
	}
}

// ModelTier is an optional hint for which model class an agent prefers.
type ModelTier string

const (
	TierFast     ModelTier = "FAST"
	TierBalanced ModelTier = "BALANCED"
	TierSmart    ModelTier = "SMART"
)

// AgentStatus is the forward-only lifecycle of an Agent.
type AgentStatus string

const (
	AgentPending   AgentStatus = "PENDING"
	AgentActive    AgentStatus = "ACTIVE"
	AgentCompleted AgentStatus = "COMPLETED"
	AgentError     AgentStatus = "ERROR"
	AgentCancelled AgentStatus = "CANCELLED"
)

// agentTransitions enumerates the only legal forward moves.
var agentTransitions = map[AgentStatus]map[AgentStatus]bool{
	AgentPending: {AgentActive: true},
	AgentActive:  {AgentCompleted: true, AgentError: true, AgentCancelled: true},
}

// CanTransition reports whether moving from 'from' to 'to' is a legal
// forward transition (including the no-op from==to case).
func (from AgentStatus) CanTransition(to AgentStatus) bool {
	if from == to {
		return true
	}
	next, ok := agentTransitions[from]
	return ok && next[to]
}

// TaskStatus is the forward-only lifecycle of a Task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskFailed     TaskStatus = "FAILED"
)

var taskTransitions = map[TaskStatus]map[TaskStatus]bool{
	TaskPending:    {TaskInProgress: true},
	TaskInProgress: {TaskCompleted: true, TaskFailed: true},
}

// CanTransition reports whether moving from 'from' to 'to' is a legal
// forward transition (including the no-op from==to case).
func (from TaskStatus) CanTransition(to TaskStatus) bool {
	if from == to {
		return true
	}
	next, ok := taskTransitions[from]
	return ok && next[to]
}

// Agent is one participant in a workspace.
type Agent struct {
	ID          string
	Name        string
	Role        AgentRole
	WorkspaceID string
	ParentID    string
	ModelTier   ModelTier
	Status      AgentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy safe to hand to callers outside the lock.
func (a *Agent) Clone() *Agent {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Task is one unit of work extracted from a plan or created directly.
type Task struct {
	ID                   string
	Title                string
	Objective            string
	Scope                []string
	AcceptanceCriteria   []string
	VerificationCommands []string
	AssignedTo           string
	Status               TaskStatus
	WorkspaceID          string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Clone returns a deep copy, including slice fields.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Scope = append([]string(nil), t.Scope...)
	c.AcceptanceCriteria = append([]string(nil), t.AcceptanceCriteria...)
	c.VerificationCommands = append([]string(nil), t.VerificationCommands...)
	return &c
}

// MessageKind tags a ConversationMessage's role in the exchange.
type MessageKind string

const (
	MessageUser       MessageKind = "USER"
	MessageAssistant  MessageKind = "ASSISTANT"
	MessageToolCall   MessageKind = "TOOL_CALL"
	MessageToolResult MessageKind = "TOOL_RESULT"
	MessageSystem     MessageKind = "SYSTEM"
)

// ConversationMessage is one append-only entry in an agent's history.
type ConversationMessage struct {
	AgentID     string
	FromAgentID string
	Content     string
	Kind        MessageKind
	Timestamp   time.Time
}

// Subscription is a live registration for filtered event delivery.
type Subscription struct {
	ID                string
	SubscriberAgentID string
	SubscriberName    string
	EventTypeGlobs    []string
	ExcludeSelf       bool
}

// Event is an ephemeral, dotted-type notification.
type Event struct {
	Type          string
	Payload       map[string]string
	SourceAgentID string
	Timestamp     time.Time
}

// CompletionReport is produced by a worker agent to its parent.
type CompletionReport struct {
	AgentID       string
	TaskID        string
	Summary       string
	FilesModified []string
	Success       bool
}
