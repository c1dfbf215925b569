package providers

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/routa-core/routa/internal/coreerr"
	"github.com/routa-core/routa/internal/llmexec"
)

// Anthropic wraps the official anthropic-sdk-go client.
type Anthropic struct {
	client anthropic.Client
}

// NewAnthropic builds an executor against the Anthropic Messages API.
func NewAnthropic(apiKey, baseURL string) *Anthropic {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Anthropic{client: anthropic.NewClient(opts...)}
}

func (p *Anthropic) Name() string { return "anthropic" }

func toAnthropicParams(req llmexec.CompletionRequest) anthropic.MessageNewParams {
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam
	for _, m := range req.Messages {
		if m.Role == "system" {
			system = append(system, anthropic.TextBlockParam{Type: "text", Text: m.Content})
			continue
		}
		if m.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  messages,
		MaxTokens: int64(maxTokens),
	}
	if len(system) > 0 {
		params.System = system
	}
	return params
}

func (p *Anthropic) Complete(ctx context.Context, req llmexec.CompletionRequest) (llmexec.CompletionResponse, error) {
	msg, err := p.client.Messages.New(ctx, toAnthropicParams(req))
	if err != nil {
		return llmexec.CompletionResponse{}, coreerr.Wrap(coreerr.UpstreamError, "Complete", "anthropic request failed", err)
	}
	var text string
	for _, block := range msg.Content {
		if t := block.AsText(); t.Text != "" {
			text += t.Text
		}
	}
	return llmexec.CompletionResponse{
		Text:         text,
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}

func (p *Anthropic) Stream(ctx context.Context, req llmexec.CompletionRequest) (<-chan llmexec.StreamChunk, error) {
	stream := p.client.Messages.NewStreaming(ctx, toAnthropicParams(req))
	out := make(chan llmexec.StreamChunk)

	go func() {
		defer close(out)
		var inputTokens, outputTokens int
		for stream.Next() {
			event := stream.Current()
			switch event.Type {
			case "message_start":
				ms := event.AsMessageStart()
				if ms.Message.Usage.InputTokens > 0 {
					inputTokens = int(ms.Message.Usage.InputTokens)
				}
			case "content_block_delta":
				delta := event.AsContentBlockDelta().Delta
				if delta.Type == "text_delta" && delta.Text != "" {
					out <- llmexec.StreamChunk{Kind: llmexec.ChunkText, Text: delta.Text}
				}
			case "message_delta":
				md := event.AsMessageDelta()
				if md.Usage.OutputTokens > 0 {
					outputTokens = int(md.Usage.OutputTokens)
				}
			case "message_stop":
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkCompleted, StopReason: "stop"}
				return
			case "error":
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkError, Error: "anthropic stream error"}
				return
			}
		}
		if err := stream.Err(); err != nil {
			out <- llmexec.StreamChunk{Kind: llmexec.ChunkError, Error: err.Error()}
			return
		}
		_ = inputTokens
		_ = outputTokens
	}()
	return out, nil
}
