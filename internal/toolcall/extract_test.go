package toolcall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractXMLToolCall(t *testing.T) {
	response := `Let me check that file.
<tool_call>
{"name": "read_file", "arguments": {"path": "README.md"}}
</tool_call>`

	calls := Extract(response)
	require.Len(t, calls, 1)
	assert.Equal(t, "read_file", calls[0].Name)
	assert.Equal(t, "README.md", calls[0].Arguments["path"])
}

func TestExtractXMLTakesPrecedenceOverFenced(t *testing.T) {
	response := "<tool_call>\n{\"name\": \"read_file\", \"arguments\": {\"path\": \"a.txt\"}}\n</tool_call>\n" +
		"```json\n{\"name\": \"list_files\", \"arguments\": {\"path\": \"src\"}}\n```"

	calls := Extract(response)
	require.Len(t, calls, 1)
	assert.Equal(t, "read_file", calls[0].Name)
}

func TestExtractFencedJSONDedupsByName(t *testing.T) {
	response := "```json\n{\"name\": \"list_files\", \"arguments\": {\"path\": \"src\"}}\n```\n" +
		"```json\n{\"name\": \"list_files\", \"arguments\": {\"path\": \"other\"}}\n```"

	calls := Extract(response)
	require.Len(t, calls, 1)
	assert.Equal(t, "src", calls[0].Arguments["path"])
}

func TestExtractNestedObjectArgumentCoercedToString(t *testing.T) {
	response := `<tool_call>
{"name": "write_file", "arguments": {"path": "a.txt", "options": {"append": true}}}
</tool_call>`

	calls := Extract(response)
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"append":true}`, calls[0].Arguments["options"])
}

func TestExtractMalformedJSONYieldsNoCalls(t *testing.T) {
	response := "<tool_call>\nnot json\n</tool_call>"
	calls := Extract(response)
	assert.Empty(t, calls)
}

func TestHasToolCallsAndRemoveToolCalls(t *testing.T) {
	response := "before\n<tool_call>\n{\"name\": \"read_file\", \"arguments\": {}}\n</tool_call>\nafter"
	assert.True(t, HasToolCalls(response))
	assert.Equal(t, "before\n\nafter", RemoveToolCalls(response))
}

func TestHasToolCallsFalseForPlainText(t *testing.T) {
	assert.False(t, HasToolCalls("just a plain response, nothing to do"))
}
