// Chat relay server: user CRUD API plus a streamed LLM tool-calling chat.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Yogeshknaik/MCP-server/internal/api"
	"github.com/Yogeshknaik/MCP-server/internal/config"
	"github.com/Yogeshknaik/MCP-server/internal/llm"
	"github.com/Yogeshknaik/MCP-server/internal/mcpserver"
	"github.com/Yogeshknaik/MCP-server/internal/middleware"
	"github.com/Yogeshknaik/MCP-server/internal/relay"
	"github.com/Yogeshknaik/MCP-server/internal/store"
	"github.com/Yogeshknaik/MCP-server/internal/tool"
	"github.com/Yogeshknaik/MCP-server/web"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var mcpMode bool
	var port string

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Chat relay backend with LLM tool calling",
		Long: `Relay serves a user-management CRUD API and proxies chat requests to a
cloud or locally hosted language model, streaming the tool-calling
conversation to the client as newline-delimited JSON.

With --mcp it instead exposes the tools over MCP stdio for external agents.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// In MCP mode stdout carries the protocol, so logs go to stderr.
			logOut := os.Stdout
			if mcpMode {
				logOut = os.Stderr
			}
			logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))
			slog.SetDefault(logger)

			if err := godotenv.Load(); err != nil {
				slog.Info("No .env file found, using environment variables")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			registry := tool.NewRegistry()
			if err := tool.RegisterBuiltins(registry, tool.Collaborators{
				WeatherURL:  cfg.WeatherAPIURL,
				UsersURL:    cfg.UsersAPIURL,
				DeleteToken: cfg.DeleteAuthToken,
			}); err != nil {
				return fmt.Errorf("register tools: %w", err)
			}

			if mcpMode {
				slog.Info("Serving tools over MCP stdio")
				return mcpserver.Serve(registry)
			}
			return runServer(cfg, registry)
		},
	}

	cmd.Flags().BoolVar(&mcpMode, "mcp", false, "serve the tools over MCP stdio instead of HTTP")
	cmd.Flags().StringVar(&port, "port", "", "listening port (overrides PORT)")

	return cmd
}

func runServer(cfg *config.Config, registry *tool.Registry) error {
	slog.Info("Starting server", "port", cfg.Port, "provider", cfg.Provider, "dev", cfg.IsDevelopment())

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	slog.Info("Database connected")

	var client llm.Client
	var ollamaClient *llm.OllamaClient
	switch cfg.Provider {
	case config.ProviderOllama:
		ollamaClient = llm.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, registry.Descriptors())
		client = ollamaClient
		slog.Info("Ollama client initialized", "url", cfg.OllamaURL, "model", cfg.OllamaModel)
	case config.ProviderOpenAI:
		client = llm.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, registry.Descriptors())
		slog.Info("OpenAI client initialized", "model", cfg.OpenAIModel)
	}

	orch := relay.New(client, registry, cfg.ProviderTimeout)
	chatHandler := relay.NewHandler(orch, ollamaClient)
	userHandler := api.NewUserHandler(repo, cfg.DeleteAuthToken)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS([]string{"*"}))

	userHandler.RegisterRoutes(r)
	chatHandler.RegisterRoutes(r)

	// Embedded browser chat client.
	r.Handle("/*", web.Handler())

	// The chat endpoint streams, so no write timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	slog.Info("Server stopped successfully")
	return nil
}
