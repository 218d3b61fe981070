package llm

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

// toolCallPattern matches the literal marker the system prompt teaches the
// local model: TOOL_CALL: name("key": value, ...). The tag is case-sensitive.
var toolCallPattern = regexp.MustCompile(`TOOL_CALL:\s*(\w+)\(([^)]*)\)`)

// parseToolCalls extracts every well-formed tool-call marker from text, in
// order of appearance. The argument fragment is wrapped in braces and parsed
// as a JSON object; fragments that do not parse are logged and dropped rather
// than failing the whole response.
func parseToolCalls(text string) []ToolCallRequest {
	matches := toolCallPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	calls := make([]ToolCallRequest, 0, len(matches))
	for _, m := range matches {
		name, fragment := m[1], m[2]
		var args map[string]any
		if err := json.Unmarshal([]byte("{"+fragment+"}"), &args); err != nil {
			slog.Warn("Dropping malformed emulated tool call", "tool", name, "fragment", fragment, "error", err)
			continue
		}
		calls = append(calls, ToolCallRequest{Name: name, Args: args})
	}
	return calls
}

// stripToolCalls removes every tool-call marker from the surfaced text.
func stripToolCalls(text string) string {
	return strings.TrimSpace(toolCallPattern.ReplaceAllString(text, ""))
}
