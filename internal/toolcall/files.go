package toolcall

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/routa-core/routa/internal/coreerr"
)

// pathResolver resolves and validates cwd-relative paths, rejecting
// any resolution that escapes the workspace root.
type pathResolver struct {
	Root string
}

func (r pathResolver) Resolve(path string) (string, error) {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return "", coreerr.New(coreerr.BadInput, "Resolve", "path is required")
	}
	root := strings.TrimSpace(r.Root)
	if root == "" {
		root = "."
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", coreerr.Wrap(coreerr.BadInput, "Resolve", "resolve workspace root", err)
	}
	var target string
	if filepath.IsAbs(clean) {
		target = filepath.Clean(clean)
	} else {
		target = filepath.Join(rootAbs, clean)
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return "", coreerr.Wrap(coreerr.BadInput, "Resolve", "resolve path", err)
	}
	rel, err := filepath.Rel(rootAbs, targetAbs)
	if err != nil {
		return "", coreerr.Wrap(coreerr.BadInput, "Resolve", "resolve path", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", coreerr.New(coreerr.AccessDenied, "Resolve", "path escapes workspace")
	}
	return targetAbs, nil
}

// readFile implements the built-in read_file tool.
func readFile(cwd, path string) ToolResult {
	resolved, err := pathResolver{Root: cwd}.Resolve(path)
	if err != nil {
		return ToolResult{ToolName: "read_file", Success: false, Output: "Error: " + err.Error()}
	}
	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return ToolResult{ToolName: "read_file", Success: false, Output: "Error: NOT_FOUND"}
		}
		return ToolResult{ToolName: "read_file", Success: false, Output: "Error: " + err.Error()}
	}
	if info.IsDir() {
		return ToolResult{ToolName: "read_file", Success: false, Output: "Error: NOT_A_FILE"}
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return ToolResult{ToolName: "read_file", Success: false, Output: "Error: " + err.Error()}
	}
	return ToolResult{ToolName: "read_file", Success: true, Output: string(data)}
}

// listFiles implements the built-in list_files tool: immediate
// children, sorted by name, prefixed [dir] or [file].
func listFiles(cwd, path string) ToolResult {
	if path == "" {
		path = "."
	}
	resolved, err := pathResolver{Root: cwd}.Resolve(path)
	if err != nil {
		return ToolResult{ToolName: "list_files", Success: false, Output: "Error: " + err.Error()}
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return ToolResult{ToolName: "list_files", Success: false, Output: "Error: NOT_FOUND"}
		}
		return ToolResult{ToolName: "list_files", Success: false, Output: "Error: " + err.Error()}
	}
	names := make([]string, 0, len(entries))
	byName := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
		byName[e.Name()] = e
	}
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		e := byName[n]
		if e.IsDir() {
			fmt.Fprintf(&b, "[dir] %s\n", n)
		} else {
			fmt.Fprintf(&b, "[file] %s\n", n)
		}
	}
	return ToolResult{ToolName: "list_files", Success: true, Output: strings.TrimRight(b.String(), "\n")}
}

// writeFile is disabled: the text-based executor directs callers to
// delegate file creation through a @@@task block instead.
func writeFile() ToolResult {
	return ToolResult{
		ToolName: "write_file",
		Success:  false,
		Output:   "Error: write_file is disabled; delegate file changes via @@@task",
	}
}
