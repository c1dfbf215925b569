// Package providers implements the built-in LLM executor builders:
// OpenAI-compatible (covers OPENAI, OPENROUTER, DEEPSEEK, OLLAMA,
// GLM/QWEN/KIMI/MINIMAX, CUSTOM_OPENAI_BASE, AZURE), Anthropic and
// Google.
package providers

import (
	"context"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/routa-core/routa/internal/coreerr"
	"github.com/routa-core/routa/internal/llmexec"
)

// OpenAICompatible wraps a sashabaranov/go-openai client pointed at
// any OpenAI-compatible chat completions endpoint.
type OpenAICompatible struct {
	name   string
	client *openai.Client
}

// NewOpenAICompatible builds an executor against baseURL using apiKey.
// baseURL must already be normalized (trailing slash).
func NewOpenAICompatible(name, apiKey, baseURL string) *OpenAICompatible {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAICompatible{name: name, client: openai.NewClientWithConfig(cfg)}
}

// defaultAzureAPIVersion is the api-version NewAzure sets on every
// Azure client.
const defaultAzureAPIVersion = "2024-02-15-preview"

// NewAzure builds an executor against an Azure OpenAI resource
// endpoint, a thin variant of the OpenAI-compatible builder that
// requires the api-version query parameter Azure's API mandates.
func NewAzure(apiKey, endpoint string) *OpenAICompatible {
	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	cfg.APIVersion = defaultAzureAPIVersion
	return &OpenAICompatible{name: "azure", client: openai.NewClientWithConfig(cfg)}
}

func (p *OpenAICompatible) Name() string { return p.name }

func toOpenAIMessages(msgs []llmexec.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func (p *OpenAICompatible) Complete(ctx context.Context, req llmexec.CompletionRequest) (llmexec.CompletionResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return llmexec.CompletionResponse{}, coreerr.Wrap(coreerr.UpstreamError, "Complete", p.name+" request failed", err)
	}
	if len(resp.Choices) == 0 {
		return llmexec.CompletionResponse{}, coreerr.New(coreerr.UpstreamError, "Complete", p.name+" returned no choices")
	}
	return llmexec.CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (p *OpenAICompatible) Stream(ctx context.Context, req llmexec.CompletionRequest) (<-chan llmexec.StreamChunk, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Stream:      true,
	})
	if err != nil {
		return nil, coreerr.Wrap(coreerr.UpstreamError, "Stream", p.name+" stream request failed", err)
	}

	out := make(chan llmexec.StreamChunk)
	go func() {
		defer close(out)
		defer stream.Close()
		for {
			select {
			case <-ctx.Done():
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkError, Error: ctx.Err().Error()}
				return
			default:
			}
			resp, err := stream.Recv()
			if err == io.EOF {
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkCompleted, StopReason: "stop"}
				return
			}
			if err != nil {
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkError, Error: err.Error()}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta != "" {
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkText, Text: delta}
			}
			if resp.Choices[0].FinishReason != "" {
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkCompleted, StopReason: string(resp.Choices[0].FinishReason)}
				return
			}
		}
	}()
	return out, nil
}
