package a2a

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/routa-core/routa/internal/agenttools"
	"github.com/routa-core/routa/internal/store"
)

// commandFunc handles one command's raw params and returns the
// uniform Response.
type commandFunc func(tools *agenttools.AgentTools, raw json.RawMessage) Response

// Dispatcher maps command names to the agenttools surface plus the
// two dispatcher-only extras (initialize, create_task) that have no
// direct agenttools equivalent.
type Dispatcher struct {
	tools *agenttools.AgentTools
	table map[string]commandFunc
}

// New builds a Dispatcher bound to tools.
func New(tools *agenttools.AgentTools) *Dispatcher {
	return &Dispatcher{tools: tools, table: commandTable}
}

// Dispatch decodes req.Params per req.Command and invokes the
// matching handler, or fails with an unknown-command error.
func (d *Dispatcher) Dispatch(req Request) Response {
	fn, ok := d.table[req.Command]
	if !ok {
		return failure("unknown command: " + req.Command)
	}
	return fn(d.tools, req.Params)
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}

func badParams(err error) Response {
	return failure("invalid params: " + err.Error())
}

var commandTable = map[string]commandFunc{
	"initialize": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			WorkspaceID string `json:"workspaceId"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		if p.WorkspaceID == "" {
			return failure("workspaceId is required")
		}
		routaID, err := tools.Store.InitializeWorkspace(p.WorkspaceID)
		if err != nil {
			return failure(err.Error())
		}
		return success(routaID)
	},

	"list_agents": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			WorkspaceID string `json:"workspaceId"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		return fromResult(tools.ListAgents(p.WorkspaceID))
	},

	"create_agent": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			Name        string `json:"name"`
			Role        string `json:"role"`
			WorkspaceID string `json:"workspaceId"`
			ParentID    string `json:"parentId"`
			ModelTier   string `json:"modelTier"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		return fromResult(tools.CreateAgent(agenttools.CreateAgentInput{
			Name: p.Name, Role: p.Role, WorkspaceID: p.WorkspaceID,
			ParentID: p.ParentID, ModelTier: p.ModelTier,
		}))
	},

	"get_agent_status": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			AgentID string `json:"agentId"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		return fromResult(tools.GetAgentStatus(p.AgentID))
	},

	"get_agent_summary": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			AgentID string `json:"agentId"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		return fromResult(tools.GetAgentSummary(p.AgentID))
	},

	"read_agent_conversation": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			AgentID          string `json:"agentId"`
			LastN            int    `json:"lastN"`
			IncludeToolCalls bool   `json:"includeToolCalls"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		return fromResult(tools.ReadAgentConversation(p.AgentID, p.LastN, p.IncludeToolCalls))
	},

	"message_agent": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			FromAgentID string `json:"fromAgentId"`
			ToAgentID   string `json:"toAgentId"`
			Message     string `json:"message"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		return fromResult(tools.MessageAgent(p.FromAgentID, p.ToAgentID, p.Message))
	},

	"delegate_task": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			AgentID       string `json:"agentId"`
			TaskID        string `json:"taskId"`
			CallerAgentID string `json:"callerAgentId"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		return fromResult(tools.DelegateTask(p.AgentID, p.TaskID, p.CallerAgentID))
	},

	"report_to_parent": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			AgentID       string   `json:"agentId"`
			TaskID        string   `json:"taskId"`
			Summary       string   `json:"summary"`
			FilesModified []string `json:"filesModified"`
			Success       bool     `json:"success"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		return fromResult(tools.ReportToParent(store.CompletionReport{
			AgentID: p.AgentID, TaskID: p.TaskID, Summary: p.Summary,
			FilesModified: p.FilesModified, Success: p.Success,
		}))
	},

	"wake_or_create_task_agent": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			TaskID         string `json:"taskId"`
			ContextMessage string `json:"contextMessage"`
			CallerAgentID  string `json:"callerAgentId"`
			WorkspaceID    string `json:"workspaceId"`
			AgentName      string `json:"agentName"`
			ModelTier      string `json:"modelTier"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		return fromResult(tools.WakeOrCreateTaskAgent(agenttools.WakeOrCreateTaskAgentInput{
			TaskID: p.TaskID, ContextMessage: p.ContextMessage, CallerAgentID: p.CallerAgentID,
			WorkspaceID: p.WorkspaceID, AgentName: p.AgentName, ModelTier: p.ModelTier,
		}))
	},

	"send_message_to_task_agent": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			TaskID        string `json:"taskId"`
			Message       string `json:"message"`
			CallerAgentID string `json:"callerAgentId"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		return fromResult(tools.SendMessageToTaskAgent(p.TaskID, p.Message, p.CallerAgentID))
	},

	"subscribe_to_events": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			AgentID     string   `json:"agentId"`
			AgentName   string   `json:"agentName"`
			EventTypes  []string `json:"eventTypes"`
			ExcludeSelf bool     `json:"excludeSelf"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		return fromResult(tools.SubscribeToEvents(p.AgentID, p.AgentName, p.EventTypes, p.ExcludeSelf))
	},

	"unsubscribe_from_events": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			SubscriptionID string `json:"subscriptionId"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		return fromResult(tools.UnsubscribeFromEvents(p.SubscriptionID))
	},

	// create_task has no agenttools equivalent: planning and parsing
	// produce tasks internally, but an external caller driving the
	// dispatcher directly needs a way to seed one without going
	// through a planner agent first.
	"create_task": func(tools *agenttools.AgentTools, raw json.RawMessage) Response {
		p, err := decode[struct {
			Title       string   `json:"title"`
			Objective   string   `json:"objective"`
			Scope       []string `json:"scope"`
			WorkspaceID string   `json:"workspaceId"`
		}](raw)
		if err != nil {
			return badParams(err)
		}
		if p.Title == "" || p.WorkspaceID == "" {
			return failure("title and workspaceId are required")
		}
		t := &store.Task{
			ID:          uuid.NewString(),
			Title:       p.Title,
			Objective:   p.Objective,
			Scope:       p.Scope,
			Status:      store.TaskPending,
			WorkspaceID: p.WorkspaceID,
		}
		if err := tools.Store.SaveTask(t); err != nil {
			return failure(err.Error())
		}
		return success(t.ID)
	},
}

func fromResult(r agenttools.Result) Response {
	if !r.Success {
		return failure(r.Error)
	}
	return success(r.Data)
}

// CommandNames lists every dispatchable command, for discovery
// endpoints and tests asserting full coverage of the surface.
func CommandNames() []string {
	names := make([]string, 0, len(commandTable))
	for name := range commandTable {
		names = append(names, name)
	}
	return names
}
