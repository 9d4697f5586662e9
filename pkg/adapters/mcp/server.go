package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/pdasim"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/aretw0/pdasim/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// BlueprintsURI is the resource listing the stored blueprint IDs.
const BlueprintsURI = "pdasim://blueprints"

// ValidateResponse is the structured result of validate_definition.
type ValidateResponse struct {
	Results []domain.ExampleResult `json:"results" jsonschema_description:"One verdict per example"`
	Passed  bool                   `json:"passed" jsonschema_description:"True when every example passed"`
}

// Engine defines the interface required by the MCP server.
type Engine interface {
	ports.Simulator
	Blueprints(ctx context.Context) ([]string, error)
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for tool failures and the SSE listener.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("pdasim-mcp", strings.TrimSpace(pdasim.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func blueprintOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("blueprint_id", mcp.Description("ID of a stored automaton (ignored when rules are given)")),
		mcp.WithArray("rules",
			mcp.Description(`Transition rules such as "d(q0,a,Z0)=(q0,AZ0)"; ε or an empty field is the empty word`),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("final",
			mcp.Description("Final states, e.g. [\"q1\"]"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	}
}

func (s *Server) registerTools() {
	// TOOL: simulate
	simulateOpts := append(blueprintOptions(),
		mcp.WithDescription("Run an input word on a pushdown automaton until it is accepted or rejected. Returns the full configuration tree."),
		mcp.WithString("input", mcp.Required(), mcp.Description("The input word")),
		mcp.WithOutputSchema[domain.Snapshot](),
	)
	s.mcpServer.AddTool(mcp.NewTool("simulate", simulateOpts...), mcp.NewStructuredToolHandler(s.handleSimulate))

	// TOOL: validate_definition
	validateOpts := append(blueprintOptions(),
		mcp.WithDescription("Compile an automaton and run its examples, reporting each verdict against the expected one."),
		mcp.WithArray("examples",
			mcp.Description(`Examples as objects {"input": "ab", "expect": "accept"|"reject"}`),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(mcp.NewTool("validate_definition", validateOpts...), mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: export_graph
	graphOpts := append(blueprintOptions(),
		mcp.WithDescription("Export the transition diagram as Mermaid. With an input, the states its run visits are highlighted."),
		mcp.WithString("input", mcp.Description("Optional input word to overlay")),
	)
	s.mcpServer.AddTool(mcp.NewTool("export_graph", graphOpts...), s.handleExportGraph)

	// TOOL: step_session
	sessionOpts := append(blueprintOptions(),
		mcp.WithDescription("Advance a stored session by count levels. A session is created from the blueprint and input when it does not exist."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("input", mcp.Description("Input word, used when the session is created")),
		mcp.WithNumber("count", mcp.Description("Number of levels to explore (default 1)")),
		mcp.WithOutputSchema[domain.Snapshot](),
	)
	s.mcpServer.AddTool(mcp.NewTool("step_session", sessionOpts...), mcp.NewStructuredToolHandler(s.handleStepSession))
}

func (s *Server) resolve(ctx context.Context, args BlueprintArgs) (*domain.Blueprint, error) {
	switch {
	case args.inline():
		return args.blueprint(), nil
	case args.BlueprintID != "":
		return s.engine.Blueprint(ctx, args.BlueprintID)
	default:
		return nil, errMissingBlueprint
	}
}

func (s *Server) handleSimulate(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (domain.Snapshot, error) {
	var args SimulateArgs
	if err := decodeArgs(raw, &args); err != nil {
		return domain.Snapshot{}, err
	}
	bp, err := s.resolve(ctx, args.BlueprintArgs)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap, err := s.engine.Simulate(ctx, bp, args.Input)
	if err != nil {
		s.logger.Warn("MCP Simulate failed", "blueprint", bp.ID, "err", err)
		return domain.Snapshot{}, fmt.Errorf("simulate failed: %w", err)
	}
	return *snap, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (ValidateResponse, error) {
	var args BlueprintArgs
	if err := decodeArgs(raw, &args); err != nil {
		return ValidateResponse{}, err
	}
	bp, err := s.resolve(ctx, args)
	if err != nil {
		return ValidateResponse{}, err
	}

	results, err := s.engine.Validate(ctx, bp)
	if err != nil {
		return ValidateResponse{}, fmt.Errorf("validate failed: %w", err)
	}
	resp := ValidateResponse{Results: results, Passed: true}
	for _, res := range results {
		resp.Passed = resp.Passed && res.Passed
	}
	return resp, nil
}

func (s *Server) handleExportGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args SimulateArgs
	if err := decodeArgs(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bp, err := s.resolve(ctx, args.BlueprintArgs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	diagram, err := s.engine.Graph(ctx, bp, args.Input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}
	return mcp.NewToolResultText(diagram), nil
}

func (s *Server) handleStepSession(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (domain.Snapshot, error) {
	var args SessionArgs
	if err := decodeArgs(raw, &args); err != nil {
		return domain.Snapshot{}, err
	}
	if args.SessionID == "" {
		return domain.Snapshot{}, errors.New("session_id is required")
	}

	if _, err := s.engine.Session(ctx, args.SessionID); errors.Is(err, domain.ErrSessionNotFound) {
		bp, err := s.resolve(ctx, args.BlueprintArgs)
		if err != nil {
			return domain.Snapshot{}, err
		}
		if _, err := s.engine.StartSession(ctx, args.SessionID, bp, args.Input); err != nil {
			return domain.Snapshot{}, fmt.Errorf("start session failed: %w", err)
		}
	} else if err != nil {
		return domain.Snapshot{}, err
	}

	snap, err := s.engine.StepSession(ctx, args.SessionID, max(args.Count, 1))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("step failed: %w", err)
	}
	return *snap, nil
}

func (s *Server) registerResources() {
	// EXPOSE: pdasim://blueprints
	s.mcpServer.AddResource(mcp.NewResource(BlueprintsURI, "Stored automata",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.engine.Blueprints(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blueprints: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      BlueprintsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
