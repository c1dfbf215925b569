package copilot

import (
	"context"
	"errors"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/routa-core/routa/internal/coreerr"
	"github.com/routa-core/routa/internal/llmexec"
)

const copilotBaseURL = "https://api.githubcopilot.com/"

// Provider is a dynamically registrable GitHub Copilot executor. It
// authenticates with the editor's cached OAuth credential and speaks
// OpenAI-compatible chat completions against the Copilot API.
type Provider struct {
	client *openai.Client
	tokens *tokenCache
	models *modelCache
}

// roundTripFunc adapts a function to http.RoundTripper, used here to
// stamp a freshly exchanged bearer token onto every outbound request.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

// New builds a Copilot provider from an explicit editor OAuth token.
// Use Discover to load the token from the local editor credential
// store instead.
func New(oauthToken string) *Provider {
	tokens := newTokenCache(oauthToken, nil)
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		tok, err := tokens.Get(req.Context())
		if err != nil {
			return nil, err
		}
		applyCopilotHeaders(req, tok)
		return http.DefaultTransport.RoundTrip(req)
	})

	cfg := openai.DefaultConfig("unused")
	cfg.BaseURL = copilotBaseURL
	cfg.HTTPClient = &http.Client{Transport: transport}

	return &Provider{
		client: openai.NewClientWithConfig(cfg),
		tokens: tokens,
		models: newModelCache(tokens, nil),
	}
}

// Discover builds a Copilot provider from the editor's local OAuth
// credential store (apps.json).
func Discover() (*Provider, error) {
	tok, err := loadOAuthToken()
	if err != nil {
		return nil, err
	}
	return New(tok), nil
}

func (p *Provider) Name() string { return "copilot" }

// Models returns the cached Copilot model catalog, refetching it at
// most once an hour.
func (p *Provider) Models(ctx context.Context) ([]string, error) {
	return p.models.List(ctx)
}

func toOpenAIMessages(msgs []llmexec.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func (p *Provider) Complete(ctx context.Context, req llmexec.CompletionRequest) (llmexec.CompletionResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return llmexec.CompletionResponse{}, coreerr.Wrap(coreerr.UpstreamError, "Complete", "copilot request failed", err)
	}
	if len(resp.Choices) == 0 {
		return llmexec.CompletionResponse{}, coreerr.New(coreerr.UpstreamError, "Complete", "copilot returned no choices")
	}
	return llmexec.CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (p *Provider) Stream(ctx context.Context, req llmexec.CompletionRequest) (<-chan llmexec.StreamChunk, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Stream:      true,
	})
	if err != nil {
		return nil, coreerr.Wrap(coreerr.UpstreamError, "Stream", "copilot stream request failed", err)
	}

	out := make(chan llmexec.StreamChunk)
	go func() {
		defer close(out)
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					out <- llmexec.StreamChunk{Kind: llmexec.ChunkCompleted, StopReason: "stop"}
					return
				}
				out <- llmexec.StreamChunk{Kind: llmexec.ChunkError, Error: err.Error()}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if delta := resp.Choices[0].Delta.Content; delta != "" {
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
