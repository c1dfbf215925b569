// Package workspaceagent drives the text-based tool loop a single
// agent runs against an Executor: feed the conversation so far, parse
// any <tool_call> blocks out of the reply, execute them against the
// coordination surface and file tools, append the results, and
// iterate until the model stops calling tools, the iteration budget
// runs out, or the run is cancelled.
package workspaceagent

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/routa-core/routa/internal/coreerr"
	"github.com/routa-core/routa/internal/llmexec"
	"github.com/routa-core/routa/internal/toolcall"
)

// DefaultMaxIterations bounds a run when Config.MaxIterations is unset.
const DefaultMaxIterations = 20

const cancelledText = "[Agent cancelled]"
const maxIterationsText = "[Agent reached max iterations]"

// Config configures one Loop.
type Config struct {
	Executor      llmexec.Executor
	ToolExecutor  *toolcall.Executor
	Model         string
	SystemPrompt  string
	MaxTokens     int
	Temperature   float64
	MaxIterations int
}

// Loop runs the text-based tool loop for a single agent and tracks a
// cooperative cancellation flag per agent id, mirroring the teacher's
// per-run cancellation context.
type Loop struct {
	cfg     Config
	cancels sync.Map // agentID -> *atomic.Bool
}

// New builds a Loop from cfg, defaulting MaxIterations.
func New(cfg Config) *Loop {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return &Loop{cfg: cfg}
}

func (l *Loop) flag(agentID string) *atomic.Bool {
	v, _ := l.cancels.LoadOrStore(agentID, new(atomic.Bool))
	return v.(*atomic.Bool)
}

// Cancel requests cooperative cancellation of agentID's current or
// next run. The flag is checked at iteration boundaries and, in
// streaming mode, at chunk boundaries.
func (l *Loop) Cancel(agentID string) {
	l.flag(agentID).Store(true)
}

func (l *Loop) cancelled(agentID string) bool {
	return l.flag(agentID).Load()
}

func (l *Loop) resetCancel(agentID string) {
	l.flag(agentID).Store(false)
}

// Result is the outcome of a completed one-shot or streaming run.
type Result struct {
	FinalText  string
	Iterations int
	Cancelled  bool
	MaxedOut   bool
}

func (l *Loop) buildMessages(history []llmexec.Message) []llmexec.Message {
	if l.cfg.SystemPrompt == "" {
		return history
	}
	out := make([]llmexec.Message, 0, len(history)+1)
	out = append(out, llmexec.Message{Role: "system", Content: l.cfg.SystemPrompt})
	return append(out, history...)
}

// Run drives the loop to completion with one-shot (non-streaming)
// completions, returning the final result.
func (l *Loop) Run(ctx context.Context, agentID string, history []llmexec.Message) (Result, error) {
	defer l.resetCancel(agentID)

	messages := append([]llmexec.Message(nil), history...)
	var lastText string

	for iteration := 0; iteration < l.cfg.MaxIterations; iteration++ {
		if l.cancelled(agentID) || ctx.Err() != nil {
			return Result{FinalText: cancelledText, Iterations: iteration, Cancelled: true}, nil
		}

		resp, err := l.cfg.Executor.Complete(ctx, llmexec.CompletionRequest{
			Model:       l.cfg.Model,
			Messages:    l.buildMessages(messages),
			MaxTokens:   l.cfg.MaxTokens,
			Temperature: l.cfg.Temperature,
		})
		if err != nil {
			return Result{}, coreerr.Wrap(coreerr.UpstreamError, "Run", "completion failed", err)
		}
		lastText = resp.Text
		messages = append(messages, llmexec.Message{Role: "assistant", Content: resp.Text})

		calls := toolcall.Extract(resp.Text)
		if len(calls) == 0 {
			return Result{FinalText: lastText, Iterations: iteration + 1}, nil
		}

		results := l.cfg.ToolExecutor.ExecuteAll(calls)
		messages = append(messages, llmexec.Message{Role: "user", Content: toolcall.FormatResults(results)})
	}

	return Result{FinalText: maxIterationsText, Iterations: l.cfg.MaxIterations, MaxedOut: true}, nil
}

// RunPrompt is a convenience wrapper over Run for a single user prompt
// with no prior history, returning just the final text.
func (l *Loop) RunPrompt(ctx context.Context, agentID, prompt string) (string, error) {
	result, err := l.Run(ctx, agentID, []llmexec.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}
	return result.FinalText, nil
}

// StreamRun drives the loop with streaming completions, emitting
// StreamChunk values on the returned channel, with a "\n\n" text
// chunk injected between iterations so consumers can tell iterations
// apart without re-deriving it from tool-call boundaries.
func (l *Loop) StreamRun(ctx context.Context, agentID string, history []llmexec.Message) <-chan llmexec.StreamChunk {
	out := make(chan llmexec.StreamChunk)

	go func() {
		defer close(out)
		defer l.resetCancel(agentID)

		messages := append([]llmexec.Message(nil), history...)

		for iteration := 0; iteration < l.cfg.MaxIterations; iteration++ {
			if l.cancelled(agentID) || ctx.Err() != nil {
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkText, Text: cancelledText}
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkCompleted, StopReason: "cancelled"}
				return
			}

			if iteration > 0 {
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkText, Text: "\n\n"}
			}

			chunks, err := l.cfg.Executor.Stream(ctx, llmexec.CompletionRequest{
				Model:       l.cfg.Model,
				Messages:    l.buildMessages(messages),
				MaxTokens:   l.cfg.MaxTokens,
				Temperature: l.cfg.Temperature,
			})
			if err != nil {
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkError, Error: err.Error()}
				return
			}

			var text strings.Builder
			for chunk := range chunks {
				if l.cancelled(agentID) || ctx.Err() != nil {
					out <- llmexec.StreamChunk{Kind: llmexec.ChunkText, Text: cancelledText}
					out <- llmexec.StreamChunk{Kind: llmexec.ChunkCompleted, StopReason: "cancelled"}
					return
				}
				if chunk.Kind == llmexec.ChunkText {
					text.WriteString(chunk.Text)
				}
				if chunk.Kind == llmexec.ChunkError {
					out <- chunk
					return
				}
				out <- chunk
			}

			messages = append(messages, llmexec.Message{Role: "assistant", Content: text.String()})

			calls := toolcall.Extract(text.String())
			if len(calls) == 0 {
				return
			}

			for _, call := range calls {
				out <- llmexec.StreamChunk{
					Kind:              llmexec.ChunkToolCall,
					ToolCallName:      call.Name,
					ToolCallStatus:    llmexec.ToolCallStarted,
					ToolCallArguments: call.Arguments,
				}
			}
			results := l.cfg.ToolExecutor.ExecuteAll(calls)
			for _, result := range results {
				status := llmexec.ToolCallCompleted
				if !result.Success {
					status = llmexec.ToolCallFailed
				}
				out <- llmexec.StreamChunk{
					Kind:           llmexec.ChunkToolCall,
					ToolCallName:   result.ToolName,
					ToolCallStatus: status,
					ToolCallResult: result.Output,
				}
			}
			messages = append(messages, llmexec.Message{Role: "user", Content: toolcall.FormatResults(results)})
		}

		out <- llmexec.StreamChunk{Kind: llmexec.ChunkText, Text: maxIterationsText}
		out <- llmexec.StreamChunk{Kind: llmexec.ChunkCompleted, StopReason: "max_iterations"}
	}()

	return out
}
