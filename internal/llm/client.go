// Package llm normalizes the two model backends behind one client interface:
// send the conversation, get back natural-language text plus any tool calls
// the model requested. The OpenAI-style backend returns structured tool calls
// natively; the Ollama backend emulates them with a text marker pattern.
package llm

import (
	"context"
	"fmt"

	"github.com/Yogeshknaik/MCP-server/internal/domain"
)

// ToolCallRequest is a single tool invocation requested by the model.
type ToolCallRequest struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Reply is the normalized result of one model round-trip.
type Reply struct {
	Text      string
	ToolCalls []ToolCallRequest
}

// Client is the model adapter contract. Implementations must not retry; any
// transport or provider failure is wrapped in ProviderError and returned.
type Client interface {
	Send(ctx context.Context, history []domain.Turn, message string) (*Reply, error)
}

// ProviderError tags a transport or provider failure with the backend name.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
