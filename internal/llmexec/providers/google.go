package providers

import (
	"context"

	"google.golang.org/genai"

	"github.com/routa-core/routa/internal/coreerr"
	"github.com/routa-core/routa/internal/llmexec"
)

// Google wraps the official google.golang.org/genai client for Gemini
// models.
type Google struct {
	client *genai.Client
}

// NewGoogle builds an executor against the Gemini API.
func NewGoogle(ctx context.Context, apiKey string) (*Google, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "NewGoogle", "failed to create genai client", err)
	}
	return &Google{client: client}, nil
}

func (p *Google) Name() string { return "google" }

func toGeminiContents(msgs []llmexec.Message) ([]*genai.Content, string) {
	var contents []*genai.Content
	var system string
	for _, m := range msgs {
		if m.Role == "system" {
			if system != "" {
				system += "\n"
			}
			system += m.Content
			continue
		}
		role := genai.RoleUser
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return contents, system
}

func buildGenerateConfig(req llmexec.CompletionRequest, system string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		config.Temperature = &t
	}
	return config
}

func (p *Google) Complete(ctx context.Context, req llmexec.CompletionRequest) (llmexec.CompletionResponse, error) {
	contents, system := toGeminiContents(req.Messages)
	config := buildGenerateConfig(req, system)

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return llmexec.CompletionResponse{}, coreerr.Wrap(coreerr.UpstreamError, "Complete", "google request failed", err)
	}

	var text string
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			text += part.Text
		}
	}
	var inputTokens, outputTokens int
	if resp.UsageMetadata != nil {
		inputTokens = int(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return llmexec.CompletionResponse{Text: text, InputTokens: inputTokens, OutputTokens: outputTokens}, nil
}

func (p *Google) Stream(ctx context.Context, req llmexec.CompletionRequest) (<-chan llmexec.StreamChunk, error) {
	contents, system := toGeminiContents(req.Messages)
	config := buildGenerateConfig(req, system)

	out := make(chan llmexec.StreamChunk)
	go func() {
		defer close(out)
		for resp, err := range p.client.Models.GenerateContentStream(ctx, req.Model, contents, config) {
			select {
			case <-ctx.Done():
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkError, Error: ctx.Err().Error()}
				return
			default:
			}
			if err != nil {
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkError, Error: err.Error()}
				return
			}
			if resp == nil {
				continue
			}
			for _, candidate := range resp.Candidates {
				if candidate.Content == nil {
					continue
				}
				for _, part := range candidate.Content.Parts {
					if part.Text != "" {
						out <- llmexec.StreamChunk{Kind: llmexec.ChunkText, Text: part.Text}
					}
				}
				if candidate.FinishReason != "" {
					out <- llmexec.StreamChunk{Kind: llmexec.ChunkCompleted, StopReason: string(candidate.FinishReason)}
					return
				}
			}
		}
		out <- llmexec.StreamChunk{Kind: llmexec.ChunkCompleted, StopReason: "stop"}
	}()
	return out, nil
}
