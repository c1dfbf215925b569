package toolcall

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/routa-core/routa/internal/agenttools"
)

// Tool is an additional, typed tool the executor can dispatch to
// beyond the built-in file tools.
type Tool interface {
	Descriptor() agenttools.Descriptor
	Execute(args map[string]any) ToolResult
}

// Executor dispatches ToolCall values against the built-in file tools
// and any additional registered tools, resolving paths relative to
// cwd.
type Executor struct {
	cwd   string
	tools map[string]Tool
}

// NewExecutor builds an Executor rooted at cwd with the given
// additional tools.
func NewExecutor(cwd string, tools ...Tool) *Executor {
	m := make(map[string]Tool, len(tools))
	for _, t := range tools {
		m[t.Descriptor().Name] = t
	}
	return &Executor{cwd: cwd, tools: m}
}

// Execute runs a single ToolCall, never returning a fatal error: any
// failure is captured into a ToolResult with Success=false.
func (e *Executor) Execute(call ToolCall) ToolResult {
	switch call.Name {
	case "read_file":
		return readFile(e.cwd, call.Arguments["path"])
	case "list_files":
		return listFiles(e.cwd, call.Arguments["path"])
	case "write_file":
		return writeFile()
	}

	tool, ok := e.tools[call.Name]
	if !ok {
		return ToolResult{ToolName: call.Name, Success: false, Output: "Error: unknown tool \"" + call.Name + "\". Available tools: " + e.availableNames()}
	}
	typed := rebuildArgs(tool.Descriptor(), call.Arguments)
	return tool.Execute(typed)
}

// ExecuteAll runs every call in order and returns their results.
func (e *Executor) ExecuteAll(calls []ToolCall) []ToolResult {
	results := make([]ToolResult, 0, len(calls))
	for _, c := range calls {
		results = append(results, e.Execute(c))
	}
	return results
}

func (e *Executor) availableNames() string {
	names := []string{"read_file", "list_files", "write_file"}
	for n := range e.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// rebuildArgs reconstructs a typed JSON-ish argument map from the
// ToolCall's string arguments by consulting the tool's parameter
// descriptor.
func rebuildArgs(d agenttools.Descriptor, raw map[string]string) map[string]any {
	byName := make(map[string]agenttools.Param, len(d.Params))
	for _, p := range d.Params {
		byName[p.Name] = p
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		p, ok := byName[k]
		if !ok {
			out[k] = v
			continue
		}
		out[k] = coerceParam(p, v)
	}
	return out
}

func coerceParam(p agenttools.Param, v string) any {
	switch p.Type {
	case agenttools.ParamBoolean:
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
		return strings.EqualFold(v, "true")
	case agenttools.ParamInteger:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return int64(0)
		}
		return n
	case agenttools.ParamFloat:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return float64(0)
		}
		return f
	case agenttools.ParamList:
		var list []any
		if err := json.Unmarshal([]byte(v), &list); err == nil {
			return list
		}
		return []any{v}
	case agenttools.ParamObject:
		var obj map[string]any
		if err := json.Unmarshal([]byte(v), &obj); err == nil {
			return obj
		}
		return v
	default:
		return v
	}
}

// FormatResults renders an ordered list of ToolResult values into the
// <tool_result> block grammar, concatenated.
func FormatResults(results []ToolResult) string {
	var b strings.Builder
	for _, r := range results {
		status := "success"
		if !r.Success {
			status = "error"
		}
		fmt.Fprintf(&b, "<tool_result>\n<tool_name>%s</tool_name>\n<status>%s</status>\n<output>\n%s\n</output>\n</tool_result>\n", r.ToolName, status, r.Output)
	}
	return strings.TrimRight(b.String(), "\n")
}
