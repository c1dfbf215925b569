package workspaceagent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routa-core/routa/internal/llmexec"
	"github.com/routa-core/routa/internal/toolcall"
)

// scriptedExecutor returns one canned CompletionResponse per call to
// Complete, in order, and fails the test if called more times than
// scripted.
type scriptedExecutor struct {
	t         *testing.T
	responses []string
	calls     int
}

func (s *scriptedExecutor) Complete(_ context.Context, _ llmexec.CompletionRequest) (llmexec.CompletionResponse, error) {
	require.Less(s.t, s.calls, len(s.responses), "unexpected extra Complete call")
	text := s.responses[s.calls]
	s.calls++
	return llmexec.CompletionResponse{Text: text}, nil
}

func (s *scriptedExecutor) Stream(context.Context, llmexec.CompletionRequest) (<-chan llmexec.StreamChunk, error) {
	panic("not used in this test")
}

func (s *scriptedExecutor) Name() string { return "SCRIPTED" }

func writeWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "b.txt"), []byte("beta"), 0o644))
	return dir
}

func TestLoopRunExecutesToolCallThenStops(t *testing.T) {
	dir := writeWorkspace(t)
	exec := &scriptedExecutor{t: t, responses: []string{
		"<tool_call>\n{\"name\": \"list_files\", \"arguments\": {\"path\": \"src\"}}\n</tool_call>",
		"done, found a.txt and b.txt",
	}}

	loop := New(Config{
		Executor:     exec,
		ToolExecutor: toolcall.NewExecutor(dir),
		Model:        "test-model",
	})

	result, err := loop.RunPrompt(context.Background(), "agent-1", "list the files in src")
	require.NoError(t, err)
	assert.Equal(t, "done, found a.txt and b.txt", result)
	assert.Equal(t, 2, exec.calls)
}

func TestLoopRunStopsImmediatelyWhenNoToolCalls(t *testing.T) {
	dir := writeWorkspace(t)
	exec := &scriptedExecutor{t: t, responses: []string{"just a plain answer"}}

	loop := New(Config{Executor: exec, ToolExecutor: toolcall.NewExecutor(dir)})

	result, err := loop.Run(context.Background(), "agent-1", []llmexec.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "just a plain answer", result.FinalText)
	assert.Equal(t, 1, result.Iterations)
	assert.False(t, result.Cancelled)
	assert.False(t, result.MaxedOut)
}

func TestLoopRunHitsMaxIterations(t *testing.T) {
	dir := writeWorkspace(t)
	toolCallText := "<tool_call>\n{\"name\": \"list_files\", \"arguments\": {\"path\": \"src\"}}\n</tool_call>"
	exec := &scriptedExecutor{t: t, responses: []string{toolCallText, toolCallText, toolCallText}}

	loop := New(Config{Executor: exec, ToolExecutor: toolcall.NewExecutor(dir), MaxIterations: 3})

	result, err := loop.Run(context.Background(), "agent-1", []llmexec.Message{{Role: "user", Content: "loop forever"}})
	require.NoError(t, err)
	assert.Equal(t, maxIterationsText, result.FinalText)
	assert.True(t, result.MaxedOut)
	assert.Equal(t, 3, exec.calls)
}

func TestLoopCancelStopsBeforeNextIteration(t *testing.T) {
	dir := writeWorkspace(t)
	exec := &scriptedExecutor{t: t, responses: []string{}}

	loop := New(Config{Executor: exec, ToolExecutor: toolcall.NewExecutor(dir)})
	loop.Cancel("agent-1")

	result, err := loop.Run(context.Background(), "agent-1", []llmexec.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, cancelledText, result.FinalText)
	assert.True(t, result.Cancelled)
	assert.Equal(t, 0, exec.calls)
}

func TestLoopResetsCancelFlagOnNewRun(t *testing.T) {
	dir := writeWorkspace(t)
	exec := &scriptedExecutor{t: t, responses: []string{"ok"}}

	loop := New(Config{Executor: exec, ToolExecutor: toolcall.NewExecutor(dir)})
	loop.Cancel("agent-1")
	_, _ = loop.Run(context.Background(), "agent-1", nil)

	exec.calls = 0
	exec.responses = []string{"second run answer"}
	result, err := loop.Run(context.Background(), "agent-1", []llmexec.Message{{Role: "user", Content: "again"}})
	require.NoError(t, err)
	assert.Equal(t, "second run answer", result.FinalText)
	assert.False(t, result.Cancelled)
}

func TestLoopPrependsSystemPrompt(t *testing.T) {
	dir := writeWorkspace(t)
	var seenSystem string
	exec := &recordingExecutor{onComplete: func(req llmexec.CompletionRequest) llmexec.CompletionResponse {
		if len(req.Messages) > 0 {
			seenSystem = req.Messages[0].Content
		}
		return llmexec.CompletionResponse{Text: "ack"}
	}}

	loop := New(Config{Executor: exec, ToolExecutor: toolcall.NewExecutor(dir), SystemPrompt: "you are a crafter"})
	_, err := loop.RunPrompt(context.Background(), "agent-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "you are a crafter", seenSystem)
}

type recordingExecutor struct {
	onComplete func(llmexec.CompletionRequest) llmexec.CompletionResponse
}

func (r *recordingExecutor) Complete(_ context.Context, req llmexec.CompletionRequest) (llmexec.CompletionResponse, error) {
	return r.onComplete(req), nil
}

func (r *recordingExecutor) Stream(context.Context, llmexec.CompletionRequest) (<-chan llmexec.StreamChunk, error) {
	panic("not used in this test")
}

func (r *recordingExecutor) Name() string { return "RECORDING" }
