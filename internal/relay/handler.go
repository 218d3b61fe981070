package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Yogeshknaik/MCP-server/internal/api"
	"github.com/Yogeshknaik/MCP-server/internal/llm"
	"github.com/go-chi/chi/v5"
)

// maxRequestBodySize bounds the chat request body (1MB).
const maxRequestBodySize = 1 << 20

// Handler serves the chat-relay HTTP surface.
type Handler struct {
	orch *Orchestrator
	// ollama is non-nil only when the local provider is selected; it backs
	// the health endpoint.
	ollama *llm.OllamaClient
}

// NewHandler creates the chat handler. Pass a nil ollama client when the
// cloud provider is selected; the health endpoint is then not registered.
func NewHandler(orch *Orchestrator, ollama *llm.OllamaClient) *Handler {
	return &Handler{orch: orch, ollama: ollama}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.HandleChat)
	if h.ollama != nil {
		r.Get("/api/health", h.HandleHealth)
	}
}

// HandleChat handles POST /api/chat: it decodes the request and streams the
// orchestrator's events as newline-delimited JSON over a chunked response.
// The stream is terminated by a complete frame (or an error frame); closure
// without one is an abnormal termination the client must detect.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	encoder := json.NewEncoder(w)
	for event := range h.orch.Run(r.Context(), req) {
		if err := encoder.Encode(event); err != nil {
			slog.Warn("Failed to write stream frame", "error", err)
			return
		}
		flusher.Flush()
	}
}

// HandleHealth handles GET /api/health for the local-model variant: it asks
// Ollama for its available models and reports connectivity.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	models, err := h.ollama.ListModels(r.Context())
	if err != nil {
		slog.Error("Ollama health check failed", "error", err)
		api.JSON(w, http.StatusInternalServerError, map[string]any{
			"status":     "unhealthy",
			"error":      err.Error(),
			"ollama_url": h.ollama.BaseURL(),
		})
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"status":           "healthy",
		"ollama_url":       h.ollama.BaseURL(),
		"ollama_model":     h.ollama.Model(),
		"available_models": models,
	})
}
