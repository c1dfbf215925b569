package agenttools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routa-core/routa/internal/eventbus"
	"github.com/routa-core/routa/internal/store"
)

func newTestTools() *AgentTools {
	return New(store.NewMemoryStore(), eventbus.New())
}

func TestCreateAgentRejectsUnknownRole(t *testing.T) {
	tools := newTestTools()
	res := tools.CreateAgent(CreateAgentInput{Name: "x", Role: "NOT_A_ROLE", WorkspaceID: "ws1"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown role")
}

func TestCreateAgentPublishesEvent(t *testing.T) {
	tools := newTestTools()
	subID := tools.SubscribeToEvents("watcher", "watcher", []string{"agent.created"}, false)
	ch, ok := tools.Bus.Channel(subID.Data)
	require.True(t, ok)

	res := tools.CreateAgent(CreateAgentInput{Name: "crafter-1", Role: "CRAFTER", WorkspaceID: "ws1"})
	require.True(t, res.Success)
	require.NotEmpty(t, res.Data)

	select {
	case ev := <-ch:
		assert.Equal(t, "agent.created", ev.Type)
		assert.Equal(t, "crafter-1", ev.Payload["name"])
	default:
		t.Fatal("expected agent.created event")
	}

	ag, err := tools.Store.GetAgent(res.Data)
	require.NoError(t, err)
	assert.Equal(t, store.RoleCrafter, ag.Role)
	assert.Equal(t, store.AgentPending, ag.Status)
}

func TestGetAgentStatusFormatsFields(t *testing.T) {
	tools := newTestTools()
	created := tools.CreateAgent(CreateAgentInput{Name: "a", Role: "GATE", WorkspaceID: "ws1", ParentID: ""})
	require.True(t, created.Success)

	res := tools.GetAgentStatus(created.Data)
	require.True(t, res.Success)
	assert.Contains(t, res.Data, "status=PENDING")
	assert.Contains(t, res.Data, "role=GATE")
}

func TestDelegateTaskTransitionsTaskAndAgent(t *testing.T) {
	tools := newTestTools()
	created := tools.CreateAgent(CreateAgentInput{Name: "crafter", Role: "CRAFTER", WorkspaceID: "ws1"})
	require.True(t, created.Success)
	agentID := created.Data

	require.NoError(t, tools.Store.SaveTask(&store.Task{ID: "t1", Title: "do it", WorkspaceID: "ws1", Status: store.TaskPending}))

	res := tools.DelegateTask(agentID, "t1", "routa-1")
	require.True(t, res.Success)

	task, err := tools.Store.GetTask("t1")
	require.NoError(t, err)
	assert.Equal(t, store.TaskInProgress, task.Status)
	assert.Equal(t, agentID, task.AssignedTo)

	ag, err := tools.Store.GetAgent(agentID)
	require.NoError(t, err)
	assert.Equal(t, store.AgentActive, ag.Status)
}

func TestReportToParentWritesSummaryToParent(t *testing.T) {
	tools := newTestTools()
	parent := tools.CreateAgent(CreateAgentInput{Name: "routa", Role: "ROUTA", WorkspaceID: "ws1"})
	require.True(t, parent.Success)

	require.NoError(t, tools.Store.SaveAgent(&store.Agent{
		ID: "crafter-1", Name: "crafter", Role: store.RoleCrafter, WorkspaceID: "ws1",
		ParentID: parent.Data, Status: store.AgentActive,
	}))
	require.NoError(t, tools.Store.SaveTask(&store.Task{ID: "t1", WorkspaceID: "ws1", AssignedTo: "crafter-1", Status: store.TaskInProgress}))

	res := tools.ReportToParent(store.CompletionReport{AgentID: "crafter-1", TaskID: "t1", Summary: "done with it", Success: true})
	require.True(t, res.Success)

	task, err := tools.Store.GetTask("t1")
	require.NoError(t, err)
	assert.Equal(t, store.TaskCompleted, task.Status)

	ag, err := tools.Store.GetAgent("crafter-1")
	require.NoError(t, err)
	assert.Equal(t, store.AgentCompleted, ag.Status)

	msgs, err := tools.Store.ReadConversation(parent.Data, 0, false)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "done with it", msgs[0].Content)
}

func TestReportToParentFailureSetsTaskFailed(t *testing.T) {
	tools := newTestTools()
	require.NoError(t, tools.Store.SaveAgent(&store.Agent{ID: "crafter-1", WorkspaceID: "ws1", Status: store.AgentActive}))
	require.NoError(t, tools.Store.SaveTask(&store.Task{ID: "t1", WorkspaceID: "ws1", AssignedTo: "crafter-1", Status: store.TaskInProgress}))

	res := tools.ReportToParent(store.CompletionReport{AgentID: "crafter-1", TaskID: "t1", Summary: "blocked", Success: false})
	require.True(t, res.Success)

	task, err := tools.Store.GetTask("t1")
	require.NoError(t, err)
	assert.Equal(t, store.TaskFailed, task.Status)
}

func TestWakeOrCreateTaskAgentWakesExistingAssignee(t *testing.T) {
	tools := newTestTools()
	require.NoError(t, tools.Store.SaveAgent(&store.Agent{ID: "crafter-1", WorkspaceID: "ws1", Status: store.AgentActive}))
	require.NoError(t, tools.Store.SaveTask(&store.Task{ID: "t1", WorkspaceID: "ws1", AssignedTo: "crafter-1", Status: store.TaskInProgress}))

	res := tools.WakeOrCreateTaskAgent(WakeOrCreateTaskAgentInput{
		TaskID: "t1", ContextMessage: "continue", CallerAgentID: "routa-1", WorkspaceID: "ws1",
	})
	require.True(t, res.Success)
	assert.Equal(t, "woke:crafter-1", res.Data)

	msgs, err := tools.Store.ReadConversation("crafter-1", 0, false)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "continue", msgs[0].Content)
}

func TestWakeOrCreateTaskAgentCreatesNewWhenUnassigned(t *testing.T) {
	tools := newTestTools()
	require.NoError(t, tools.Store.SaveTask(&store.Task{ID: "t1", WorkspaceID: "ws1", Status: store.TaskPending}))

	res := tools.WakeOrCreateTaskAgent(WakeOrCreateTaskAgentInput{
		TaskID: "t1", ContextMessage: "start", CallerAgentID: "routa-1", WorkspaceID: "ws1",
	})
	require.True(t, res.Success)
	require.Contains(t, res.Data, "created_new:")

	task, err := tools.Store.GetTask("t1")
	require.NoError(t, err)
	assert.Equal(t, store.TaskInProgress, task.Status)
	assert.NotEmpty(t, task.AssignedTo)
}

func TestSendMessageToTaskAgentFailsWhenUnassigned(t *testing.T) {
	tools := newTestTools()
	require.NoError(t, tools.Store.SaveTask(&store.Task{ID: "t1", WorkspaceID: "ws1", Status: store.TaskPending}))

	res := tools.SendMessageToTaskAgent("t1", "hello", "routa-1")
	assert.False(t, res.Success)
	assert.Equal(t, "NOT_ASSIGNED", res.Error)
}

func TestSubscribeAndUnsubscribeFromEvents(t *testing.T) {
	tools := newTestTools()
	sub := tools.SubscribeToEvents("a1", "a", []string{"*"}, false)
	require.True(t, sub.Success)
	require.NotEmpty(t, sub.Data)

	unsub := tools.UnsubscribeFromEvents(sub.Data)
	assert.True(t, unsub.Success)

	_, ok := tools.Bus.Channel(sub.Data)
	assert.False(t, ok)
}

func TestUnsubscribeFromEventsIsIdempotent(t *testing.T) {
	tools := newTestTools()
	res := tools.UnsubscribeFromEvents("never-existed")
	assert.True(t, res.Success)
}

func TestDescriptorsAreSortedAndCoverAllTools(t *testing.T) {
	ds := Descriptors()
	require.Len(t, ds, 12)
	for i := 1; i < len(ds); i++ {
		assert.True(t, ds[i-1].Name < ds[i].Name, "descriptors must be sorted by name")
	}

	names := map[string]bool{}
	for _, d := range ds {
		names[d.Name] = true
	}
	for _, want := range []string{
		"list_agents", "create_agent", "get_agent_status", "get_agent_summary",
		"read_agent_conversation", "message_agent", "delegate_task", "report_to_parent",
		"wake_or_create_task_agent", "send_message_to_task_agent", "subscribe_to_events",
		"unsubscribe_from_events",
	} {
		assert.True(t, names[want], "missing descriptor for %s", want)
	}
}
