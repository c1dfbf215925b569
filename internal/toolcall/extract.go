package toolcall

import (
	"encoding/json"
	"regexp"
	"strings"
)

var xmlToolCallRe = regexp.MustCompile(`(?s)<tool_call>(.*?)</tool_call>`)
var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)```")

// Extract parses an LLM response string into an ordered list of tool
// calls. The XML-tagged form takes precedence over fenced code blocks
// when present; the two are never combined.
func Extract(response string) []ToolCall {
	if calls, ok := extractXML(response); ok {
		return calls
	}
	return extractFenced(response)
}

// extractXML reports ok=true only when at least one <tool_call> region
// parsed successfully; tagged-but-all-malformed input falls through to
// extractFenced rather than short-circuiting to an empty result.
func extractXML(response string) ([]ToolCall, bool) {
	matches := xmlToolCallRe.FindAllStringSubmatch(response, -1)
	if len(matches) == 0 {
		return nil, false
	}
	var calls []ToolCall
	for _, m := range matches {
		call, ok := parseCallJSON(m[1])
		if ok {
			calls = append(calls, call)
		}
	}
	if len(calls) == 0 {
		return nil, false
	}
	return calls, true
}

func extractFenced(response string) []ToolCall {
	matches := fencedJSONRe.FindAllStringSubmatch(response, -1)
	seen := make(map[string]bool)
	var calls []ToolCall
	for _, m := range matches {
		call, ok := parseCallJSON(m[1])
		if !ok {
			continue
		}
		if seen[call.Name] {
			continue
		}
		seen[call.Name] = true
		calls = append(calls, call)
	}
	return calls
}

// parseCallJSON parses a single {"name":..., "arguments": {...}} JSON
// object. Malformed JSON yields no call for that region, not an error.
func parseCallJSON(raw string) (ToolCall, bool) {
	var parsed struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return ToolCall{}, false
	}
	if parsed.Name == "" {
		return ToolCall{}, false
	}
	args := map[string]string{}
	if len(parsed.Arguments) > 0 {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(parsed.Arguments, &m); err == nil {
			for k, v := range m {
				args[k] = coerceToString(v)
			}
		}
	}
	return ToolCall{Name: parsed.Name, Arguments: args}, true
}

// coerceToString renders a raw JSON value to its string form:
// primitives become their content, nested objects/arrays become their
// JSON serialization.
func coerceToString(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return string(raw)
		}
		return string(b)
	default:
		return strings.TrimSpace(string(raw))
	}
}

// HasToolCalls reports whether the XML form appears or the extractor
// yields at least one call.
func HasToolCalls(response string) bool {
	if xmlToolCallRe.MatchString(response) {
		return true
	}
	return len(Extract(response)) > 0
}

// RemoveToolCalls strips every XML tool-call occurrence and trims the
// remainder.
func RemoveToolCalls(response string) string {
	stripped := xmlToolCallRe.ReplaceAllString(response, "")
	return strings.TrimSpace(stripped)
}
