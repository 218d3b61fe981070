package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/Yogeshknaik/MCP-server/internal/domain"
	"github.com/Yogeshknaik/MCP-server/internal/llm"
)

// ToolExecutor runs one requested tool call. *tool.Registry satisfies this.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) (any, error)
}

// ChatRequest is the client's chat payload. History is owned and resubmitted
// by the client; the server keeps no session state between requests.
type ChatRequest struct {
	Message string        `json:"message"`
	History []domain.Turn `json:"conversation_history"`
}

// Orchestrator drives one chat request through the model/tool loop. It is
// explicitly constructed with its collaborators; there are no package-level
// singletons.
type Orchestrator struct {
	client  llm.Client
	tools   ToolExecutor
	timeout time.Duration
}

// New creates an Orchestrator. timeout bounds each individual provider
// round-trip; zero disables the bound.
func New(client llm.Client, tools ToolExecutor, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		client:  client,
		tools:   tools,
		timeout: timeout,
	}
}

// Run executes the conversation loop and yields its events in causal order.
// The sequence is finite and non-restartable: it ends with a complete event
// on success or an error event on provider failure. A single tool's failure
// is recovered locally and does not abort the remaining queued calls.
func (o *Orchestrator) Run(ctx context.Context, req ChatRequest) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		if !yield(thinkingEvent("Processing your request...")) {
			return
		}

		reply, err := o.send(ctx, req.History, req.Message)
		if err != nil {
			slog.Error("Model request failed", "error", err)
			yield(errorEvent(err.Error()))
			return
		}

		if len(reply.ToolCalls) == 0 {
			if !yield(contentEvent(reply.Text)) {
				return
			}
			yield(completeEvent())
			return
		}

		// Tool calls run strictly in the order the model returned them.
		for _, call := range reply.ToolCalls {
			if !yield(executingEvent(call.Name, call.Args)) {
				return
			}

			result, err := o.tools.Execute(ctx, call.Name, call.Args)
			if err != nil {
				slog.Error("Tool execution failed", "tool", call.Name, "error", err)
				if !yield(failedEvent(call.Name, call.Args, err.Error())) {
					return
				}
				msg := fmt.Sprintf("Sorry, the %s call failed: %s", call.Name, err.Error())
				if !yield(contentEvent(msg)) {
					return
				}
				continue
			}

			if !yield(completedEvent(call.Name, call.Args, result)) {
				return
			}
			if !yield(contentEvent(o.summarize(ctx, call.Name, result))) {
				return
			}
		}

		yield(completeEvent())
	}
}

// send performs one adapter round-trip under the configured timeout.
func (o *Orchestrator) send(ctx context.Context, history []domain.Turn, message string) (*llm.Reply, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	return o.client.Send(ctx, history, message)
}

// summarize asks the model to phrase a tool result as natural language. If
// the follow-up call fails the raw result is surfaced instead; the stream is
// never aborted over a summary.
func (o *Orchestrator) summarize(ctx context.Context, toolName string, result any) string {
	payload, err := json.Marshal(result)
	if err != nil {
		payload = []byte(fmt.Sprint(result))
	}

	prompt := fmt.Sprintf(
		"The %s tool returned this result: %s. Summarize it for the user in one or two plain sentences. Do not call any tools.",
		toolName, payload,
	)
	reply, err := o.send(ctx, nil, prompt)
	if err != nil || reply.Text == "" {
		slog.Warn("Tool result summarization failed", "tool", toolName, "error", err)
		return fmt.Sprintf("The %s tool returned: %s", toolName, payload)
	}
	return reply.Text
}
