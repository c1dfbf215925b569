// Package modelmeta is a pure lookup table deriving model capabilities
// and context/output token limits from model-name prefixes and
// substrings, per a fixed rule table.
package modelmeta

import "strings"

// Capability is one entry in the fixed capability vocabulary a model
// may support.
type Capability string

const (
	Completion      Capability = "Completion"
	Temperature     Capability = "Temperature"
	Tools           Capability = "Tools"
	ToolChoice      Capability = "ToolChoice"
	VisionImage     Capability = "Vision.Image"
	VisionVideo     Capability = "Vision.Video"
	Audio           Capability = "Audio"
	Document        Capability = "Document"
	MultipleChoices Capability = "MultipleChoices"
	Speculation     Capability = "Speculation"
	Embed           Capability = "Embed"
)

// Model is the resolved metadata for one provider/model pair.
type Model struct {
	Provider        string
	ID              string
	Capabilities    []Capability
	ContextLength   int
	MaxOutputTokens int // 0 means unspecified
}

type rule struct {
	substrings      []string // any-of match against the lowercased model id
	capabilities    []Capability
	contextLength   int
	maxOutputTokens int
}

// defaultContextLength is used for unrecognized model names.
const defaultContextLength = 128000

var rules = []rule{
	{
		substrings:      []string{"o1", "o3", "o4-mini"},
		capabilities:    []Capability{Completion, Tools, ToolChoice},
		contextLength:   200000,
		maxOutputTokens: 100000,
	},
	{
		substrings:      []string{"gpt-4.1"},
		capabilities:    []Capability{Completion, Temperature, Tools, ToolChoice, VisionImage},
		contextLength:   1047576,
		maxOutputTokens: 32768,
	},
	{
		substrings:      []string{"gpt-4o"},
		capabilities:    []Capability{Completion, Temperature, Tools, ToolChoice, VisionImage, Audio},
		contextLength:   128000,
		maxOutputTokens: 16384,
	},
	{
		substrings:      []string{"claude-3-5", "claude-3.5"},
		capabilities:    []Capability{Completion, Temperature, Tools, ToolChoice, VisionImage, Document},
		contextLength:   200000,
		maxOutputTokens: 8192,
	},
	{
		substrings:      []string{"claude-opus-4", "claude-sonnet-4", "claude-haiku-4"},
		capabilities:    []Capability{Completion, Temperature, Tools, ToolChoice, VisionImage, VisionVideo, Document},
		contextLength:   200000,
		maxOutputTokens: 64000,
	},
	{
		substrings:      []string{"gemini-2", "gemini-1.5"},
		capabilities:    []Capability{Completion, Temperature, Tools, ToolChoice, VisionImage, VisionVideo, Audio, Document},
		contextLength:   1000000,
		maxOutputTokens: 8192,
	},
	{
		substrings:      []string{"deepseek"},
		capabilities:    []Capability{Completion, Temperature, Tools, ToolChoice},
		contextLength:   64000,
		maxOutputTokens: 8192,
	},
	{
		substrings:      []string{"embedding", "embed-"},
		capabilities:    []Capability{Embed},
		contextLength:   8192,
		maxOutputTokens: 0,
	},
}

// CreateModel derives the capability set and token limits for a model
// name by prefix/substring match against the fixed rule table.
// Unknown names fall back to a generic {Completion, Temperature} with
// the package default context length.
func CreateModel(provider, name string) Model {
	lower := strings.ToLower(name)
	for _, r := range rules {
		for _, s := range r.substrings {
			if strings.Contains(lower, s) {
				return Model{
					Provider:        provider,
					ID:              name,
					Capabilities:    append([]Capability(nil), r.capabilities...),
					ContextLength:   r.contextLength,
					MaxOutputTokens: r.maxOutputTokens,
				}
			}
		}
	}
	return Model{
		Provider:      provider,
		ID:            name,
		Capabilities:  []Capability{Completion, Temperature},
		ContextLength: defaultContextLength,
	}
}

// HasCapability reports whether m supports cap.
func (m Model) HasCapability(cap Capability) bool {
	for _, c := range m.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// defaultBaseURLs maps a provider tag to its default API base URL,
// used when NamedModelConfig.BaseURL is empty.
var defaultBaseURLs = map[string]string{
	"OLLAMA":     "http://localhost:11434/",
	"OPENROUTER": "https://openrouter.ai/api/v1/",
	"GLM":        "https://open.bigmodel.cn/api/paas/v4/",
	"QWEN":       "https://dashscope.aliyuncs.com/compatible-mode/v1/",
	"KIMI":       "https://api.moonshot.cn/v1/",
	"MINIMAX":    "https://api.minimax.chat/v1/",
	"DEEPSEEK":   "https://api.deepseek.com/",
}

// DefaultBaseURL returns the built-in default base URL for a
// provider, or "" if the provider has none (e.g. requires an explicit
// baseUrl, or is cloud-SDK-routed rather than HTTP-base-URL-routed).
func DefaultBaseURL(provider string) string {
	return defaultBaseURLs[strings.ToUpper(provider)]
}

// NormalizeBaseURL ensures a base URL ends with "/", since downstream
// URL joining replaces the last path segment otherwise.
func NormalizeBaseURL(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasSuffix(raw, "/") {
		return raw
	}
	return raw + "/"
}
