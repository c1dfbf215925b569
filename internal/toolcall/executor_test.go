package toolcall

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "b.txt"), []byte("beta"), 0o644))
	return dir
}

func TestExecutorListFiles(t *testing.T) {
	dir := writeWorkspace(t)
	exec := NewExecutor(dir)

	result := exec.Execute(ToolCall{Name: "list_files", Arguments: map[string]string{"path": "src"}})
	require.True(t, result.Success)
	assert.Equal(t, "[file] a.txt\n[file] b.txt", result.Output)
}

func TestExecutorReadFile(t *testing.T) {
	dir := writeWorkspace(t)
	exec := NewExecutor(dir)

	result := exec.Execute(ToolCall{Name: "read_file", Arguments: map[string]string{"path": "src/a.txt"}})
	require.True(t, result.Success)
	assert.Equal(t, "alpha", result.Output)
}

func TestExecutorReadFileNotFound(t *testing.T) {
	dir := writeWorkspace(t)
	exec := NewExecutor(dir)

	result := exec.Execute(ToolCall{Name: "read_file", Arguments: map[string]string{"path": "src/missing.txt"}})
	assert.False(t, result.Success)
	assert.Contains(t, result.Output, "NOT_FOUND")
}

func TestExecutorRejectsPathEscape(t *testing.T) {
	dir := writeWorkspace(t)
	exec := NewExecutor(dir)

	result := exec.Execute(ToolCall{Name: "read_file", Arguments: map[string]string{"path": "../../etc/passwd"}})
	assert.False(t, result.Success)
	assert.Contains(t, result.Output, "escapes workspace")
}

func TestExecutorWriteFileDisabled(t *testing.T) {
	dir := writeWorkspace(t)
	exec := NewExecutor(dir)

	result := exec.Execute(ToolCall{Name: "write_file", Arguments: map[string]string{"path": "x.txt", "content": "hi"}})
	assert.False(t, result.Success)
	assert.Contains(t, result.Output, "disabled")
}

func TestExecutorUnknownToolListsAvailable(t *testing.T) {
	dir := writeWorkspace(t)
	exec := NewExecutor(dir)

	result := exec.Execute(ToolCall{Name: "does_not_exist"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Output, "unknown tool")
	assert.Contains(t, result.Output, "list_files")
}

func TestFormatResults(t *testing.T) {
	results := []ToolResult{
		{ToolName: "list_files", Success: true, Output: "[file] a.txt"},
		{ToolName: "read_file", Success: false, Output: "Error: NOT_FOUND"},
	}
	formatted := FormatResults(results)
	assert.Contains(t, formatted, "<tool_name>list_files</tool_name>")
	assert.Contains(t, formatted, "<status>success</status>")
	assert.Contains(t, formatted, "<status>error</status>")
}
