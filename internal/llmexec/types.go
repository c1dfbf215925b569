// Package llmexec is the LLM executor façade: provider selection,
// model metadata resolution, and OpenAI-compatible client wiring,
// including a dynamically registrable GitHub Copilot provider.
package llmexec

import "context"

// Message is one turn in a completion request.
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// CompletionRequest is a provider-agnostic chat completion request.
// It carries no tool definitions: all tool semantics ride inside
// message text.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse is a one-shot (non-streaming) completion result.
type CompletionResponse struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// ChunkKind tags the variant carried by a StreamChunk.
type ChunkKind string

const (
	ChunkText      ChunkKind = "TEXT"
	ChunkThinking  ChunkKind = "THINKING"
	ChunkToolCall  ChunkKind = "TOOL_CALL"
	ChunkError     ChunkKind = "ERROR"
	ChunkCompleted ChunkKind = "COMPLETED"
	ChunkHeartbeat ChunkKind = "HEARTBEAT"
)

// ThinkingPhase tags the sub-variant of a ChunkThinking chunk.
type ThinkingPhase string

const (
	ThinkingStart ThinkingPhase = "START"
	ThinkingChunk ThinkingPhase = "CHUNK"
	ThinkingEnd   ThinkingPhase = "END"
)

// ToolCallStatus tags the lifecycle of one ChunkToolCall event as it
// is reported to a streaming consumer.
type ToolCallStatus string

const (
	ToolCallStarted    ToolCallStatus = "STARTED"
	ToolCallInProgress ToolCallStatus = "IN_PROGRESS"
	ToolCallCompleted  ToolCallStatus = "COMPLETED"
	ToolCallFailed     ToolCallStatus = "FAILED"
)

// StreamChunk is one unit of the streaming output protocol produced
// to embedders: text, thinking, tool-call event, error, completion,
// or heartbeat.
type StreamChunk struct {
	Kind          ChunkKind
	Text          string
	ThinkingPhase ThinkingPhase
	Error         string
	Recoverable   bool
	StopReason    string

	// ToolCall* fields are populated on ChunkToolCall chunks only.
	ToolCallName      string
	ToolCallStatus    ToolCallStatus
	ToolCallArguments map[string]string
	ToolCallResult    string
}

// Executor is the provider-agnostic chat completion surface an agent
// loop drives.
type Executor interface {
	// Complete runs a one-shot completion.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	// Stream runs a streaming completion, emitting chunks on ch until
	// it is closed or ctx is cancelled.
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)
	// Name returns the provider tag this executor was built for.
	Name() string
}

// NamedModelConfig selects one configured model endpoint.
type NamedModelConfig struct {
	Name    string
	Provider string
	APIKey  string
	BaseURL string
	Model   string
}
