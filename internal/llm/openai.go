package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Yogeshknaik/MCP-server/internal/domain"
	"github.com/Yogeshknaik/MCP-server/internal/tool"
)

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint. Tool
// definitions are passed natively and the returned tool_calls objects pass
// through unchanged.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	model   string
	tools   []tool.Descriptor
	http    *http.Client
}

// NewOpenAIClient creates a client for an OpenAI-compatible API.
func NewOpenAIClient(baseURL, apiKey, model string, tools []tool.Descriptor) *OpenAIClient {
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		tools:   tools,
		http:    &http.Client{},
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type openAITool struct {
	Type     string         `json:"type"`
	Function openAIFunction `json:"function"`
}

type openAIChatRequest struct {
	Model      string          `json:"model"`
	Messages   []openAIMessage `json:"messages"`
	Tools      []openAITool    `json:"tools,omitempty"`
	ToolChoice string          `json:"tool_choice,omitempty"`
	Stream     bool            `json:"stream"`
}

type openAIToolCall struct {
	ID       string `json:"id"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content   string           `json:"content"`
			ToolCalls []openAIToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// Send submits the conversation with native tool definitions and returns the
// normalized reply.
func (c *OpenAIClient) Send(ctx context.Context, history []domain.Turn, message string) (*Reply, error) {
	messages := make([]openAIMessage, 0, historyWindow+1)
	for _, t := range buildMessages(history, message) {
		messages = append(messages, openAIMessage{Role: t.Role, Content: t.Content})
	}

	chatReq := openAIChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	}
	for _, d := range c.tools {
		chatReq.Tools = append(chatReq.Tools, openAITool{
			Type: "function",
			Function: openAIFunction{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Schema(),
			},
		})
	}
	if len(chatReq.Tools) > 0 {
		chatReq.ToolChoice = "auto"
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, &ProviderError{Provider: "openai", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: "openai", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: "openai", Err: decodeAPIError(resp)}
	}

	var chatResp openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, &ProviderError{Provider: "openai", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(chatResp.Choices) == 0 {
		return nil, &ProviderError{Provider: "openai", Err: fmt.Errorf("response contained no choices")}
	}

	choice := chatResp.Choices[0].Message
	reply := &Reply{Text: choice.Content}
	for _, tc := range choice.ToolCalls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				slog.Warn("Dropping tool call with undecodable arguments",
					"tool", tc.Function.Name, "error", err)
				continue
			}
		}
		reply.ToolCalls = append(reply.ToolCalls, ToolCallRequest{
			Name: tc.Function.Name,
			Args: args,
		})
	}
	return reply, nil
}

// decodeAPIError extracts the provider's error message from a non-200 body.
func decodeAPIError(resp *http.Response) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error.Message == "" {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return fmt.Errorf("unexpected status %s: %s", resp.Status, errResp.Error.Message)
}
