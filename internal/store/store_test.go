package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAgentLifecycle(t *testing.T) {
	s := NewMemoryStore()
	a := &Agent{ID: "a1", Name: "routa", Role: RoleRouta, WorkspaceID: "ws1", Status: AgentPending}

	require.NoError(t, s.SaveAgent(a))

	loaded, err := s.GetAgent("a1")
	require.NoError(t, err)
	assert.Equal(t, "routa", loaded.Name)
	assert.False(t, loaded.CreatedAt.IsZero())

	loaded.Status = AgentActive
	require.NoError(t, s.SaveAgent(loaded))

	active, err := s.GetAgent("a1")
	require.NoError(t, err)
	assert.Equal(t, AgentActive, active.Status)
}

func TestMemoryStoreAgentIllegalTransition(t *testing.T) {
	s := NewMemoryStore()
	a := &Agent{ID: "a1", WorkspaceID: "ws1", Status: AgentCompleted}
	require.NoError(t, s.SaveAgent(a))

	a.Status = AgentActive
	err := s.SaveAgent(a)
	assert.Error(t, err)
}

func TestMemoryStoreAgentRejectsMissingParent(t *testing.T) {
	s := NewMemoryStore()
	a := &Agent{ID: "a1", WorkspaceID: "ws1", ParentID: "missing", Status: AgentPending}
	err := s.SaveAgent(a)
	assert.Error(t, err)
}

func TestMemoryStoreListAgentsFiltersByWorkspace(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.SaveAgent(&Agent{ID: "a1", WorkspaceID: "ws1", Status: AgentPending}))
	require.NoError(t, s.SaveAgent(&Agent{ID: "a2", WorkspaceID: "ws2", Status: AgentPending}))

	agents, err := s.ListAgents("ws1")
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "a1", agents[0].ID)
}

func TestMemoryStoreTaskLifecycle(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.SaveAgent(&Agent{ID: "a1", WorkspaceID: "ws1", Status: AgentPending}))

	task := &Task{ID: "t1", Title: "do a thing", WorkspaceID: "ws1", AssignedTo: "a1", Status: TaskPending}
	require.NoError(t, s.SaveTask(task))

	loaded, err := s.GetTask("t1")
	require.NoError(t, err)
	assert.Equal(t, "do a thing", loaded.Title)

	loaded.Status = TaskInProgress
	require.NoError(t, s.SaveTask(loaded))

	tasks, err := s.TasksForAgent("a1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, TaskInProgress, tasks[0].Status)
}

func TestMemoryStoreTaskRejectsMissingAssignee(t *testing.T) {
	s := NewMemoryStore()
	task := &Task{ID: "t1", WorkspaceID: "ws1", AssignedTo: "missing", Status: TaskPending}
	assert.Error(t, s.SaveTask(task))
}

func TestMemoryStoreConversationAppendAndRead(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.AppendMessage("a1", &ConversationMessage{AgentID: "a1", Content: "hello", Kind: MessageUser}))
	require.NoError(t, s.AppendMessage("a1", &ConversationMessage{AgentID: "a1", Content: "call tool", Kind: MessageToolCall}))
	require.NoError(t, s.AppendMessage("a1", &ConversationMessage{AgentID: "a1", Content: "hi back", Kind: MessageAssistant}))

	withoutTools, err := s.ReadConversation("a1", 0, false)
	require.NoError(t, err)
	require.Len(t, withoutTools, 2)

	withTools, err := s.ReadConversation("a1", 0, true)
	require.NoError(t, err)
	require.Len(t, withTools, 3)

	lastOne, err := s.ReadConversation("a1", 1, true)
	require.NoError(t, err)
	require.Len(t, lastOne, 1)
	assert.Equal(t, "hi back", lastOne[0].Content)
}

func TestMemoryStoreInitializeWorkspaceIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	id1, err := s.InitializeWorkspace("ws1")
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	id2, err := s.InitializeWorkspace("ws1")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	routa, err := s.GetAgent(id1)
	require.NoError(t, err)
	assert.Equal(t, RoleRouta, routa.Role)
}

func TestAgentCloneIsIndependent(t *testing.T) {
	a := &Agent{ID: "a1", WorkspaceID: "ws1"}
	clone := a.Clone()
	clone.ID = "a2"
	assert.Equal(t, "a1", a.ID)
}

func TestTaskCloneCopiesSlices(t *testing.T) {
	task := &Task{ID: "t1", Scope: []string{"src/a.go"}}
	clone := task.Clone()
	clone.Scope[0] = "mutated"
	assert.Equal(t, "src/a.go", task.Scope[0])
}
