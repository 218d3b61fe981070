// Package relay drives the streamed tool-calling conversation: it sends the
// user's message to the model adapter, executes any requested tool calls in
// order, and serializes every step as a wire event.
package relay

// Event types, tagged in the frame's "type" field.
const (
	EventThinking     = "thinking"
	EventFunctionCall = "function_call"
	EventContent      = "content"
	EventComplete     = "complete"
	EventError        = "error"
)

// Tool-call statuses carried on function_call events.
const (
	StatusExecuting = "executing"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Event is one frame of the chat stream. Its JSON encoding is the wire
// format: one object per line, field set depending on Type. Ordering within a
// response reflects the causal order of the orchestration loop.
type Event struct {
	Type     string         `json:"type"`
	Content  string         `json:"content,omitempty"`
	Function string         `json:"function,omitempty"`
	Args     map[string]any `json:"args,omitempty"`
	Status   string         `json:"status,omitempty"`
	Result   any            `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
	Message  string         `json:"message,omitempty"`
}

func thinkingEvent(content string) Event {
	return Event{Type: EventThinking, Content: content}
}

func contentEvent(content string) Event {
	return Event{Type: EventContent, Content: content}
}

func executingEvent(function string, args map[string]any) Event {
	return Event{Type: EventFunctionCall, Function: function, Args: args, Status: StatusExecuting}
}

func completedEvent(function string, args map[string]any, result any) Event {
	return Event{Type: EventFunctionCall, Function: function, Args: args, Status: StatusCompleted, Result: result}
}

func failedEvent(function string, args map[string]any, errMsg string) Event {
	return Event{Type: EventFunctionCall, Function: function, Args: args, Status: StatusError, Error: errMsg}
}

func completeEvent() Event {
	return Event{Type: EventComplete}
}

func errorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}
