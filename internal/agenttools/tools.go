// Package agenttools exposes the typed coordination surface for LLM
// agents: list/create/message/delegate/report/subscribe and their
// siblings from the agent-tools table, as methods on AgentTools with
// parameter descriptors from Descriptors. The package contains no
// adapter to native tool-calling or to the text-based executor.
package agenttools

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/routa-core/routa/internal/eventbus"
	"github.com/routa-core/routa/internal/store"
)

// AgentTools binds the coordination store and event bus behind the
// typed operation set named in the agent-tools table.
type AgentTools struct {
	Store store.Store
	Bus   *eventbus.Bus
}

// New builds an AgentTools bound to the given store and bus.
func New(st store.Store, bus *eventbus.Bus) *AgentTools {
	return &AgentTools{Store: st, Bus: bus}
}

func (a *AgentTools) publish(eventType, sourceAgentID string, payload map[string]string) {
	if a.Bus == nil {
		return
	}
	a.Bus.Publish(store.Event{
		Type:          eventType,
		Payload:       payload,
		SourceAgentID: sourceAgentID,
		Timestamp:     time.Now(),
	})
}

// ListAgents returns a newline-formatted roster: id, name, role, status.
func (a *AgentTools) ListAgents(workspaceID string) Result {
	agents, err := a.Store.ListAgents(workspaceID)
	if err != nil {
		return fail(err.Error())
	}
	var b strings.Builder
	for _, ag := range agents {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\n", ag.ID, ag.Name, ag.Role, ag.Status)
	}
	return ok(b.String())
}

// CreateAgentInput is the typed argument record for create_agent.
type CreateAgentInput struct {
	Name        string
	Role        string
	WorkspaceID string
	ParentID    string
	ModelTier   string
}

// CreateAgent creates a new PENDING agent and emits agent.created.
func (a *AgentTools) CreateAgent(in CreateAgentInput) Result {
	role, okRole := store.ParseAgentRole(in.Role)
	if !okRole {
		return fail("unknown role: " + in.Role)
	}
	id := uuid.NewString()
	ag := &store.Agent{
		ID:          id,
		Name:        in.Name,
		Role:        role,
		WorkspaceID: in.WorkspaceID,
		ParentID:    in.ParentID,
		ModelTier:   store.ModelTier(in.ModelTier),
		Status:      store.AgentPending,
	}
	if err := a.Store.SaveAgent(ag); err != nil {
		return fail(err.Error())
	}
	a.publish("agent.created", id, map[string]string{"agentId": id, "name": in.Name, "role": string(role)})
	return ok(id)
}

// GetAgentStatus returns status + role + parent.
func (a *AgentTools) GetAgentStatus(agentID string) Result {
	ag, err := a.Store.GetAgent(agentID)
	if err != nil {
		return fail(err.Error())
	}
	return ok(fmt.Sprintf("status=%s role=%s parent=%s", ag.Status, ag.Role, ag.ParentID))
}

// GetAgentSummary returns latest objective, last message, task count.
func (a *AgentTools) GetAgentSummary(agentID string) Result {
	ag, err := a.Store.GetAgent(agentID)
	if err != nil {
		return fail(err.Error())
	}
	tasks, err := a.Store.TasksForAgent(agentID)
	if err != nil {
		return fail(err.Error())
	}
	msgs, err := a.Store.ReadConversation(agentID, 1, false)
	if err != nil {
		return fail(err.Error())
	}
	lastMessage := ""
	if len(msgs) > 0 {
		lastMessage = msgs[len(msgs)-1].Content
	}
	objective := ""
	if len(tasks) > 0 {
		objective = tasks[0].Objective
	}
	return ok(fmt.Sprintf("agent=%s objective=%q lastMessage=%q taskCount=%d", ag.Name, objective, lastMessage, len(tasks)))
}

// ReadAgentConversation returns chronological messages.
func (a *AgentTools) ReadAgentConversation(agentID string, lastN int, includeToolCalls bool) Result {
	msgs, err := a.Store.ReadConversation(agentID, lastN, includeToolCalls)
	if err != nil {
		return fail(err.Error())
	}
	var b strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.Kind, m.FromAgentID, m.Content)
	}
	return ok(b.String())
}

// MessageAgent appends a USER message to the recipient and emits
// message.sent.
func (a *AgentTools) MessageAgent(fromAgentID, toAgentID, message string) Result {
	if err := a.Store.AppendMessage(toAgentID, &store.ConversationMessage{
		AgentID:     toAgentID,
		FromAgentID: fromAgentID,
		Content:     message,
		Kind:        store.MessageUser,
	}); err != nil {
		return fail(err.Error())
	}
	a.publish("message.sent", fromAgentID, map[string]string{"to": toAgentID})
	return ok("delivered")
}

// DelegateTask assigns a task, transitions it to IN_PROGRESS, the
// agent to ACTIVE, and emits task.delegated.
func (a *AgentTools) DelegateTask(agentID, taskID, callerAgentID string) Result {
	t, err := a.Store.GetTask(taskID)
	if err != nil {
		return fail(err.Error())
	}
	ag, err := a.Store.GetAgent(agentID)
	if err != nil {
		return fail(err.Error())
	}
	t.AssignedTo = agentID
	t.Status = store.TaskInProgress
	if err := a.Store.SaveTask(t); err != nil {
		return fail(err.Error())
	}
	ag.Status = store.AgentActive
	if err := a.Store.SaveAgent(ag); err != nil {
		return fail(err.Error())
	}
	a.publish("task.delegated", callerAgentID, map[string]string{"taskId": taskID, "agentId": agentID})
	return ok("delegated")
}

// ReportToParent finalizes a task/agent pair and writes a summary to
// the parent's conversation, emitting task.completed.
func (a *AgentTools) ReportToParent(report store.CompletionReport) Result {
	t, err := a.Store.GetTask(report.TaskID)
	if err != nil {
		return fail(err.Error())
	}
	ag, err := a.Store.GetAgent(report.AgentID)
	if err != nil {
		return fail(err.Error())
	}
	if report.Success {
		t.Status = store.TaskCompleted
	} else {
		t.Status = store.TaskFailed
	}
	if err := a.Store.SaveTask(t); err != nil {
		return fail(err.Error())
	}
	ag.Status = store.AgentCompleted
	if err := a.Store.SaveAgent(ag); err != nil {
		return fail(err.Error())
	}
	if ag.ParentID != "" {
		_ = a.Store.AppendMessage(ag.ParentID, &store.ConversationMessage{
			AgentID:     ag.ParentID,
			FromAgentID: ag.ID,
			Content:     report.Summary,
			Kind:        store.MessageUser,
		})
	}
	a.publish("task.completed", report.AgentID, map[string]string{"taskId": report.TaskID, "success": fmt.Sprintf("%t", report.Success)})
	return ok("reported")
}

// WakeOrCreateTaskAgentInput is the typed argument record for
// wake_or_create_task_agent.
type WakeOrCreateTaskAgentInput struct {
	TaskID         string
	ContextMessage string
	CallerAgentID  string
	WorkspaceID    string
	AgentName      string
	ModelTier      string
}

// WakeOrCreateTaskAgent wakes the task's existing assignee or creates
// a new CRAFTER and delegates to it.
func (a *AgentTools) WakeOrCreateTaskAgent(in WakeOrCreateTaskAgentInput) Result {
	t, err := a.Store.GetTask(in.TaskID)
	if err != nil {
		return fail(err.Error())
	}
	if t.AssignedTo != "" {
		res := a.MessageAgent(in.CallerAgentID, t.AssignedTo, in.ContextMessage)
		if !res.Success {
			return res
		}
		return ok("woke:" + t.AssignedTo)
	}
	name := in.AgentName
	if name == "" {
		name = "crafter-" + t.ID
	}
	created := a.CreateAgent(CreateAgentInput{
		Name:        name,
		Role:        string(store.RoleCrafter),
		WorkspaceID: in.WorkspaceID,
		ModelTier:   in.ModelTier,
	})
	if !created.Success {
		return created
	}
	agentID := created.Data
	delegated := a.DelegateTask(agentID, in.TaskID, in.CallerAgentID)
	if !delegated.Success {
		return delegated
	}
	return ok("created_new:" + agentID)
}

// SendMessageToTaskAgent routes a message to task.assignedTo, failing
// NOT_ASSIGNED when no agent is assigned.
func (a *AgentTools) SendMessageToTaskAgent(taskID, message, callerAgentID string) Result {
	t, err := a.Store.GetTask(taskID)
	if err != nil {
		return fail(err.Error())
	}
	if t.AssignedTo == "" {
		return fail("NOT_ASSIGNED")
	}
	return a.MessageAgent(callerAgentID, t.AssignedTo, message)
}

// SubscribeToEvents registers a filtered subscription and returns its id.
func (a *AgentTools) SubscribeToEvents(agentID, agentName string, eventTypes []string, excludeSelf bool) Result {
	id := a.Bus.Subscribe(agentID, agentName, eventTypes, excludeSelf)
	return ok(id)
}

// UnsubscribeFromEvents releases a subscription; idempotent.
func (a *AgentTools) UnsubscribeFromEvents(subscriptionID string) Result {
	a.Bus.Unsubscribe(subscriptionID)
	return ok("unsubscribed")
}

// Descriptors returns the self-describing parameter tables for every
// tool in the surface, for use by a text-based dispatcher.
func Descriptors() []Descriptor {
	ds := []Descriptor{
		{Name: "list_agents", Description: "List agents in a workspace", Params: []Param{
			{Name: "workspaceId", Type: ParamString, Required: true},
		}},
		{Name: "create_agent", Description: "Create a new agent", Params: []Param{
			{Name: "name", Type: ParamString, Required: true},
			{Name: "role", Type: ParamEnum, Required: true, EnumValues: []string{"ROUTA", "CRAFTER", "GATE"}},
			{Name: "workspaceId", Type: ParamString, Required: true},
			{Name: "parentId", Type: ParamString, Required: false},
			{Name: "modelTier", Type: ParamEnum, Required: false, EnumValues: []string{"FAST", "BALANCED", "SMART"}},
		}},
		{Name: "get_agent_status", Description: "Get an agent's status", Params: []Param{
			{Name: "agentId", Type: ParamString, Required: true},
		}},
		{Name: "get_agent_summary", Description: "Summarize an agent", Params: []Param{
			{Name: "agentId", Type: ParamString, Required: true},
		}},
		{Name: "read_agent_conversation", Description: "Read an agent's conversation", Params: []Param{
			{Name: "agentId", Type: ParamString, Required: true},
			{Name: "lastN", Type: ParamInteger, Required: false},
			{Name: "includeToolCalls", Type: ParamBoolean, Required: false},
		}},
		{Name: "message_agent", Description: "Send a message to an agent", Params: []Param{
			{Name: "fromAgentId", Type: ParamString, Required: true},
			{Name: "toAgentId", Type: ParamString, Required: true},
			{Name: "message", Type: ParamString, Required: true},
		}},
		{Name: "delegate_task", Description: "Assign a task to an agent", Params: []Param{
			{Name: "agentId", Type: ParamString, Required: true},
			{Name: "taskId", Type: ParamString, Required: true},
			{Name: "callerAgentId", Type: ParamString, Required: true},
		}},
		{Name: "report_to_parent", Description: "Report task completion to parent", Params: []Param{
			{Name: "agentId", Type: ParamString, Required: true},
			{Name: "taskId", Type: ParamString, Required: true},
			{Name: "summary", Type: ParamString, Required: true},
			{Name: "filesModified", Type: ParamList, ElementType: ParamString, Required: false},
			{Name: "success", Type: ParamBoolean, Required: true},
		}},
		{Name: "wake_or_create_task_agent", Description: "Wake or create the agent for a task", Params: []Param{
			{Name: "taskId", Type: ParamString, Required: true},
			{Name: "contextMessage", Type: ParamString, Required: true},
			{Name: "callerAgentId", Type: ParamString, Required: true},
			{Name: "workspaceId", Type: ParamString, Required: true},
			{Name: "agentName", Type: ParamString, Required: false},
			{Name: "modelTier", Type: ParamEnum, Required: false, EnumValues: []string{"FAST", "BALANCED", "SMART"}},
		}},
		{Name: "send_message_to_task_agent", Description: "Send a message to a task's assigned agent", Params: []Param{
			{Name: "taskId", Type: ParamString, Required: true},
			{Name: "message", Type: ParamString, Required: true},
			{Name: "callerAgentId", Type: ParamString, Required: true},
		}},
		{Name: "subscribe_to_events", Description: "Subscribe to filtered events", Params: []Param{
			{Name: "agentId", Type: ParamString, Required: true},
			{Name: "agentName", Type: ParamString, Required: true},
			{Name: "eventTypes", Type: ParamList, ElementType: ParamString, Required: true},
			{Name: "excludeSelf", Type: ParamBoolean, Required: false},
		}},
		{Name: "unsubscribe_from_events", Description: "Unsubscribe from events", Params: []Param{
			{Name: "subscriptionId", Type: ParamString, Required: true},
		}},
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].Name < ds[j].Name })
	return ds
}
