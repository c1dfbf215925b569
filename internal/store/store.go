package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/routa-core/routa/internal/coreerr"
)

// Store is the coordination state surface for a single workspace.
// Implementations must be safe for concurrent use.
type Store interface {
	SaveAgent(a *Agent) error
	GetAgent(id string) (*Agent, error)
	ListAgents(workspaceID string) ([]*Agent, error)

	SaveTask(t *Task) error
	GetTask(id string) (*Task, error)
	TasksForAgent(agentID string) ([]*Task, error)

	AppendMessage(agentID string, msg *ConversationMessage) error
	ReadConversation(agentID string, lastN int, includeToolCalls bool) ([]*ConversationMessage, error)

	InitializeWorkspace(workspaceID string) (string, error)
}

// MemoryStore is the in-memory Store implementation; the core depends
// only on the Store interface, so durable backends are an external
// concern.
type MemoryStore struct {
	mu sync.RWMutex

	agents   map[string]*Agent
	tasks    map[string]*Task
	convos   map[string][]*ConversationMessage
	routaIDs map[string]string // workspaceID -> ROUTA agent id

	convoLocks map[string]*sync.Mutex
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		agents:     make(map[string]*Agent),
		tasks:      make(map[string]*Task),
		convos:     make(map[string][]*ConversationMessage),
		routaIDs:   make(map[string]string),
		convoLocks: make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) SaveAgent(a *Agent) error {
	if a == nil || a.ID == "" {
		return coreerr.New(coreerr.BadInput, "SaveAgent", "agent id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.agents[a.ID]
	if a.ParentID != "" {
		parent, ok := s.agents[a.ParentID]
		if !ok || parent.WorkspaceID != a.WorkspaceID {
			return coreerr.New(coreerr.NotFound, "SaveAgent", "parentId does not exist in workspace")
		}
	}
	if ok {
		if !existing.Status.CanTransition(a.Status) {
			return coreerr.New(coreerr.InvalidState, "SaveAgent",
				"illegal agent status transition "+string(existing.Status)+" -> "+string(a.Status))
		}
	}
	now := time.Now()
	clone := a.Clone()
	if !ok {
		clone.CreatedAt = now
	} else {
		clone.CreatedAt = existing.CreatedAt
	}
	clone.UpdatedAt = now
	s.agents[a.ID] = clone
	return nil
}

func (s *MemoryStore) GetAgent(id string) (*Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[id]
	if !ok {
		return nil, coreerr.New(coreerr.NotFound, "GetAgent", "agent not found: "+id)
	}
	return a.Clone(), nil
}

func (s *MemoryStore) ListAgents(workspaceID string) ([]*Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Agent, 0, len(s.agents))
	for _, a := range s.agents {
		if a.WorkspaceID == workspaceID {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) SaveTask(t *Task) error {
	if t == nil || t.ID == "" {
		return coreerr.New(coreerr.BadInput, "SaveTask", "task id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[t.ID]
	if t.AssignedTo != "" {
		agent, ok := s.agents[t.AssignedTo]
		if !ok || agent.WorkspaceID != t.WorkspaceID {
			return coreerr.New(coreerr.NotFound, "SaveTask", "assignedTo does not exist in workspace")
		}
	}
	if ok {
		if !existing.Status.CanTransition(t.Status) {
			return coreerr.New(coreerr.InvalidState, "SaveTask",
				"illegal task status transition "+string(existing.Status)+" -> "+string(t.Status))
		}
	}
	now := time.Now()
	clone := t.Clone()
	if !ok {
		clone.CreatedAt = now
	} else {
		clone.CreatedAt = existing.CreatedAt
	}
	clone.UpdatedAt = now
	s.tasks[t.ID] = clone
	return nil
}

func (s *MemoryStore) GetTask(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, coreerr.New(coreerr.NotFound, "GetTask", "task not found: "+id)
	}
	return t.Clone(), nil
}

func (s *MemoryStore) TasksForAgent(agentID string) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Task, 0)
	for _, t := range s.tasks {
		if t.AssignedTo == agentID {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) lockFor(agentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.convoLocks[agentID]
	if !ok {
		l = &sync.Mutex{}
		s.convoLocks[agentID] = l
	}
	return l
}

func (s *MemoryStore) AppendMessage(agentID string, msg *ConversationMessage) error {
	if msg == nil {
		return coreerr.New(coreerr.BadInput, "AppendMessage", "message is required")
	}
	l := s.lockFor(agentID)
	l.Lock()
	defer l.Unlock()

	m := *msg
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	s.mu.Lock()
	s.convos[agentID] = append(s.convos[agentID], &m)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ReadConversation(agentID string, lastN int, includeToolCalls bool) ([]*ConversationMessage, error) {
	s.mu.RLock()
	all := s.convos[agentID]
	filtered := make([]*ConversationMessage, 0, len(all))
	for _, m := range all {
		if !includeToolCalls && (m.Kind == MessageToolCall || m.Kind == MessageToolResult) {
			continue
		}
		cp := *m
		filtered = append(filtered, &cp)
	}
	s.mu.RUnlock()

	if lastN > 0 && lastN < len(filtered) {
		filtered = filtered[len(filtered)-lastN:]
	}
	return filtered, nil
}

func (s *MemoryStore) InitializeWorkspace(workspaceID string) (string, error) {
	s.mu.Lock()
	if id, ok := s.routaIDs[workspaceID]; ok {
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	id := uuid.NewString()
	now := time.Now()
	routa := &Agent{
		ID:          id,
		Name:        "routa",
		Role:        RoleRouta,
		WorkspaceID: workspaceID,
		Status:      AgentPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existingID, ok := s.routaIDs[workspaceID]; ok {
		return existingID, nil
	}
	s.agents[id] = routa
	s.routaIDs[workspaceID] = id
	return id, nil
}
