package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Yogeshknaik/MCP-server/internal/domain"
	"github.com/Yogeshknaik/MCP-server/internal/tool"
)

// OllamaClient talks to a locally hosted Ollama server. Ollama has no native
// function-calling API here; tool use is emulated through a system preamble
// that teaches the model the TOOL_CALL marker syntax, and the response text is
// scanned for markers.
type OllamaClient struct {
	baseURL string
	model   string
	tools   []tool.Descriptor
	http    *http.Client
}

// NewOllamaClient creates a client for the Ollama chat API.
func NewOllamaClient(baseURL, model string, tools []tool.Descriptor) *OllamaClient {
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		tools:   tools,
		http:    &http.Client{},
	}
}

// BaseURL returns the configured Ollama server URL.
func (c *OllamaClient) BaseURL() string { return c.baseURL }

// Model returns the configured model identifier.
func (c *OllamaClient) Model() string { return c.model }

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Send submits the conversation and returns the normalized reply. Emulated
// tool-call markers are parsed out of the response text and stripped from the
// surfaced content.
func (c *OllamaClient) Send(ctx context.Context, history []domain.Turn, message string) (*Reply, error) {
	messages := []ollamaMessage{{Role: "system", Content: systemPreamble(c.tools)}}
	for _, t := range buildMessages(history, message) {
		messages = append(messages, ollamaMessage{Role: t.Role, Content: t.Content})
	}

	body, err := json.Marshal(ollamaChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return nil, &ProviderError{Provider: "ollama", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: "ollama", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: "ollama", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, &ProviderError{
			Provider: "ollama",
			Err:      fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(data))),
		}
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, &ProviderError{Provider: "ollama", Err: fmt.Errorf("decode response: %w", err)}
	}

	text := chatResp.Message.Content
	return &Reply{
		Text:      stripToolCalls(text),
		ToolCalls: parseToolCalls(text),
	}, nil
}

// ListModels fetches the locally available model names (used by the health
// endpoint).
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, &ProviderError{Provider: "ollama", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: "ollama", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: "ollama", Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, &ProviderError{Provider: "ollama", Err: fmt.Errorf("decode response: %w", err)}
	}

	names := make([]string, len(tags.Models))
	for i, m := range tags.Models {
		names[i] = m.Name
	}
	return names, nil
}

// systemPreamble teaches the model the available tools and the exact marker
// syntax the parser recognizes.
func systemPreamble(tools []tool.Descriptor) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant with access to the following tools:\n\n")
	for _, d := range tools {
		fmt.Fprintf(&b, "- %s: %s\n", d.Name, d.Description)
		for _, p := range d.Params {
			required := "optional"
			if p.Required {
				required = "required"
			}
			fmt.Fprintf(&b, "    %s (%s, %s): %s\n", p.Name, p.Type, required, p.Description)
		}
	}
	b.WriteString("\nTo call a tool, include a line of exactly this form in your reply:\n")
	b.WriteString("TOOL_CALL: toolName(\"param\": \"value\")\n")
	b.WriteString("Use JSON syntax for the arguments. ")
	b.WriteString("If no tool is needed, answer the user directly.")
	return b.String()
}
