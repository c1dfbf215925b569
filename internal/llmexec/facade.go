package llmexec

import (
	"context"
	"sync"

	"github.com/routa-core/routa/internal/coreerr"
	"github.com/routa-core/routa/internal/llmexec/modelmeta"
	"github.com/routa-core/routa/internal/llmexec/providers"
	"github.com/routa-core/routa/internal/llmexec/providers/copilot"
)

// ProviderRegistry is a process-wide table of dynamically registered
// executors (e.g. a discovered Copilot session), consulted before the
// built-in provider-tag dispatch. Tests should call Clear() in
// t.Cleanup to avoid cross-test leakage, since the table is shared
// process state rather than per-Facade.
type ProviderRegistry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

var registry = &ProviderRegistry{executors: make(map[string]Executor)}

// Register adds or replaces a dynamically built executor under name,
// e.g. a GitHub Copilot provider discovered from the local editor
// credential store.
func Register(name string, exec Executor) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.executors[name] = exec
}

// Clear empties the process-wide registry. Intended for test
// isolation between cases that register distinct executors.
func Clear() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.executors = make(map[string]Executor)
}

func lookup(name string) (Executor, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	exec, ok := registry.executors[name]
	return exec, ok
}

// Facade resolves a NamedModelConfig to an Executor: the process-wide
// registry is consulted first (by config name and by provider tag),
// then a built-in builder is constructed from the config's provider
// tag, API key, and base URL.
type Facade struct{}

// NewFacade builds a Facade. It holds no state of its own; resolution
// reads the process-wide ProviderRegistry.
func NewFacade() *Facade { return &Facade{} }

// Resolve returns the Executor for cfg, dispatching by provider tag
// when no dynamically registered executor matches.
//
// The upstream createGenericModel implementation always built an
// OpenAI client regardless of the requested provider; this façade
// honors cfg.Provider instead of reproducing that bug.
func (f *Facade) Resolve(ctx context.Context, cfg NamedModelConfig) (Executor, error) {
	if exec, ok := lookup(cfg.Name); ok {
		return exec, nil
	}
	if exec, ok := lookup(cfg.Provider); ok {
		return exec, nil
	}

	baseURL := modelmeta.NormalizeBaseURL(cfg.BaseURL)

	switch cfg.Provider {
	case "ANTHROPIC":
		return providers.NewAnthropic(cfg.APIKey, baseURL), nil
	case "GOOGLE":
		return providers.NewGoogle(ctx, cfg.APIKey)
	case "OPENAI":
		if baseURL == "" {
			baseURL = modelmeta.DefaultBaseURL("OPENAI")
		}
		return providers.NewOpenAICompatible("openai", cfg.APIKey, baseURL), nil
	case "AZURE":
		if baseURL == "" {
			return nil, coreerr.New(coreerr.BadInput, "Resolve", "AZURE provider requires an explicit baseUrl")
		}
		return providers.NewAzure(cfg.APIKey, baseURL), nil
	case "CUSTOM_OPENAI_BASE":
		if baseURL == "" {
			return nil, coreerr.New(coreerr.BadInput, "Resolve", "CUSTOM_OPENAI_BASE provider requires an explicit baseUrl")
		}
		return providers.NewOpenAICompatible("custom_openai_base", cfg.APIKey, baseURL), nil
	case "DEEPSEEK", "OLLAMA", "OPENROUTER", "GLM", "QWEN", "KIMI", "MINIMAX":
		if baseURL == "" {
			baseURL = modelmeta.DefaultBaseURL(cfg.Provider)
		}
		name := lowerProviderName(cfg.Provider)
		return providers.NewOpenAICompatible(name, cfg.APIKey, baseURL), nil
	case "COPILOT":
		if cfg.APIKey != "" {
			return copilot.New(cfg.APIKey), nil
		}
		return copilot.Discover()
	default:
		return nil, coreerr.New(coreerr.BadInput, "Resolve", "unknown provider \""+cfg.Provider+"\"")
	}
}

func lowerProviderName(provider string) string {
	switch provider {
	case "DEEPSEEK":
		return "deepseek"
	case "OLLAMA":
		return "ollama"
	case "OPENROUTER":
		return "openrouter"
	case "GLM":
		return "glm"
	case "QWEN":
		return "qwen"
	case "KIMI":
		return "kimi"
	case "MINIMAX":
		return "minimax"
	default:
		return provider
	}
}
