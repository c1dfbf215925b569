package modelmeta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateModelMatchesKnownPrefixes(t *testing.T) {
	cases := []struct {
		name            string
		wantContext     int
		wantMaxOutput   int
		wantCapability  Capability
		lacksCapability Capability
	}{
		{"o3-mini", 200000, 100000, ToolChoice, VisionImage},
		{"gpt-4.1", 1047576, 32768, VisionImage, Audio},
		{"gpt-4o-mini", 128000, 16384, Audio, Embed},
		{"claude-3-5-sonnet-20241022", 200000, 8192, Document, VisionVideo},
		{"claude-sonnet-4-20250514", 200000, 64000, VisionVideo, Embed},
		{"gemini-2.0-flash", 1000000, 8192, VisionVideo, Embed},
		{"deepseek-chat", 64000, 8192, ToolChoice, VisionImage},
		{"text-embedding-3-large", 8192, 0, Embed, Tools},
	}
	for _, c := range cases {
		m := CreateModel("PROVIDER", c.name)
		assert.Equal(t, c.wantContext, m.ContextLength, c.name)
		assert.Equal(t, c.wantMaxOutput, m.MaxOutputTokens, c.name)
		assert.True(t, m.HasCapability(c.wantCapability), "%s should have %s", c.name, c.wantCapability)
		assert.False(t, m.HasCapability(c.lacksCapability), "%s should not have %s", c.name, c.lacksCapability)
	}
}

func TestCreateModelUnknownNameFallsBackToDefaults(t *testing.T) {
	m := CreateModel("CUSTOM_OPENAI_BASE", "some-unlisted-model")
	assert.Equal(t, defaultContextLength, m.ContextLength)
	assert.Equal(t, 0, m.MaxOutputTokens)
	assert.True(t, m.HasCapability(Completion))
	assert.True(t, m.HasCapability(Temperature))
	assert.False(t, m.HasCapability(Tools))
}

func TestCreateModelIsCaseInsensitive(t *testing.T) {
	m := CreateModel("OPENAI", "GPT-4O")
	assert.True(t, m.HasCapability(VisionImage))
}

func TestCreateModelCapabilitiesAreIndependentCopies(t *testing.T) {
	m1 := CreateModel("OPENAI", "gpt-4o")
	m2 := CreateModel("OPENAI", "gpt-4o")
	m1.Capabilities[0] = "mutated"
	assert.NotEqual(t, m1.Capabilities[0], m2.Capabilities[0])
}

func TestDefaultBaseURLKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "http://localhost:11434/", DefaultBaseURL("ollama"))
	assert.Equal(t, "https://api.deepseek.com/", DefaultBaseURL("DEEPSEEK"))
	assert.Empty(t, DefaultBaseURL("ANTHROPIC"))
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "", NormalizeBaseURL(""))
	assert.Equal(t, "https://example.com/", NormalizeBaseURL("https://example.com"))
	assert.Equal(t, "https://example.com/", NormalizeBaseURL("https://example.com/"))
}
