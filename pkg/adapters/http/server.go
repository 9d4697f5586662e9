package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/pdasim"
	"github.com/aretw0/pdasim/internal/compiler"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/aretw0/pdasim/pkg/ports"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines what the HTTP adapter needs from the simulation core.
type Engine interface {
	ports.Simulator
	Blueprints(ctx context.Context) ([]string, error)
	ResetSession(ctx context.Context, sessionID string) (*domain.Snapshot, error)
	Watch(ctx context.Context) (<-chan string, error)
}

// errMissingBlueprint is returned when a request names neither an inline blueprint nor an ID.
var errMissingBlueprint = errors.New("blueprint or blueprint_id is required")

// Server implements ServerInterface
type Server struct {
	Engine  Engine
	Streams *StreamManager
	Logger  *slog.Logger
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

type handlerConfig struct {
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// HandlerOption configures NewHandler.
type HandlerOption func(*handlerConfig)

// WithLogger sets the logger used for request failures and streams.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// WithMetrics exposes the collectors of gatherer at /metrics.
func WithMetrics(gatherer prometheus.Gatherer) HandlerOption {
	return func(c *handlerConfig) {
		c.gatherer = gatherer
	}
}

// NewHandler creates a new HTTP handler for the engine.
// Requests to documented routes are validated against the embedded OpenAPI document.
func NewHandler(engine Engine, opts ...HandlerOption) (http.Handler, error) {
	cfg := handlerConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	server := &Server{
		Engine:  engine,
		Streams: NewStreamManager(cfg.logger),
		Logger:  cfg.logger,
	}

	spec, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(spec, server.handleError)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(validate)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if cfg.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	}

	handler := HandlerWithOptions(server, ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: server.handleError,
	})
	return enableCORS(handler), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>pdasim API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "pdasim-http",
		"version":     strings.TrimSpace(pdasim.Version),
		"api_version": apiVersion,
	})
}

// ListBlueprints handles the GET /blueprints request.
func (s *Server) ListBlueprints(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.Blueprints(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, IDList{Ids: nonNil(ids)})
}

// GetBlueprint handles the GET /blueprints/{id} request.
func (s *Server) GetBlueprint(w http.ResponseWriter, r *http.Request, id string) {
	bp, err := s.Engine.Blueprint(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bp)
}

// Simulate handles the POST /simulate request.
func (s *Server) Simulate(w http.ResponseWriter, r *http.Request) {
	var body SimulateJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	bp, err := s.resolve(r.Context(), body.BlueprintRef)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	snap, err := s.Engine.Simulate(r.Context(), bp, body.Input)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Validate handles the POST /validate request.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	var body ValidateJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	bp, err := s.resolve(r.Context(), body)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	results, err := s.Engine.Validate(r.Context(), bp)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	resp := ValidateResponse{Results: results, Passed: true}
	for _, res := range results {
		if !res.Passed {
			resp.Passed = false
		}
	}
	if resp.Results == nil {
		resp.Results = []domain.ExampleResult{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.ListSessions(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, IDList{Ids: nonNil(ids)})
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	bp, err := s.resolve(r.Context(), body.BlueprintRef)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var sessionID string
	if body.SessionId != nil {
		sessionID = *body.SessionId
	}
	snap, err := s.Engine.StartSession(r.Context(), sessionID, bp, body.Input)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.broadcast(nil, snap)
	writeJSON(w, http.StatusCreated, snap)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := s.Engine.Session(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.Engine.DeleteSession(r.Context(), id); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StepSession handles the POST /sessions/{id}/step request and broadcasts the change.
func (s *Server) StepSession(w http.ResponseWriter, r *http.Request, id string, params StepSessionParams) {
	count := 1
	if params.Count != nil {
		count = *params.Count
	}

	before, _ := s.Engine.Session(r.Context(), id)
	snap, err := s.Engine.StepSession(r.Context(), id, count)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.broadcast(before, snap)
	writeJSON(w, http.StatusOK, snap)
}

// ResetSession handles the POST /sessions/{id}/reset request and broadcasts the change.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request, id string) {
	before, _ := s.Engine.Session(r.Context(), id)
	snap, err := s.Engine.ResetSession(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.broadcast(before, snap)
	writeJSON(w, http.StatusOK, snap)
}

// GetSessionGraph handles the GET /sessions/{id}/graph request.
func (s *Server) GetSessionGraph(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := s.Engine.Session(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	diagram, err := s.Engine.Graph(r.Context(), &snap.Blueprint, snap.Input)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, diagram)
}

// SubscribeEvents handles the GET /events request (SSE): one event per changed blueprint.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNotImplemented, Error{Error: fmt.Sprintf("Watch error: %v", err)})
		return
	}

	setStreamHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// SubscribeSessionEvents handles the GET /sessions/{id}/events request (SSE of snapshot diffs).
func (s *Server) SubscribeSessionEvents(w http.ResponseWriter, r *http.Request, id string, params SubscribeSessionEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeSessionEvents: Streaming not supported")
		return
	}

	s.Logger.Info("SSE: Subscribing to Session Updates", "session_id", id)
	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	setStreamHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var watchList []string
	if params.Watch != nil {
		watchList = strings.Split(*params.Watch, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !watched(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// watched reports whether the serialized diff touches any of the fields.
func watched(msg string, fields []string) bool {
	var diff domain.SnapshotDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range fields {
		switch strings.TrimSpace(field) {
		case "status":
			if diff.Status != nil {
				return true
			}
		case "steps":
			if diff.Steps != nil {
				return true
			}
		case "output":
			if diff.Appended != "" || diff.Reset {
				return true
			}
		}
	}
	return false
}

func (s *Server) broadcast(before, after *domain.Snapshot) {
	diff := domain.Diff(before, after)
	if diff == nil {
		s.Logger.Debug("No diff calculated", "session_id", after.SessionID)
		return
	}
	bytes, err := json.Marshal(diff)
	if err != nil {
		s.Logger.Error("Diff encode failed", "err", err)
		return
	}
	s.Streams.Broadcast(after.SessionID, string(bytes))
}

func (s *Server) resolve(ctx context.Context, ref BlueprintRef) (*domain.Blueprint, error) {
	switch {
	case ref.Blueprint != nil:
		return ref.Blueprint, nil
	case ref.BlueprintId != nil && *ref.BlueprintId != "":
		return s.Engine.Blueprint(ctx, *ref.BlueprintId)
	default:
		return nil, errMissingBlueprint
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		s.Logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusBadRequest, Error{Error: "Invalid request body"})
		return false
	}
	return true
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.Logger.Warn("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, Error{Error: err.Error()})
}

func statusFor(err error) int {
	var (
		syntaxErr  *compiler.SyntaxError
		paramErr   *InvalidParamFormatError
		requestErr *openapi3filter.RequestError
	)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrDefinitionNotFound):
		return http.StatusNotFound
	case errors.As(err, &syntaxErr),
		errors.Is(err, domain.ErrInvalidDefinition),
		errors.Is(err, domain.ErrExplorationLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errMissingBlueprint), errors.As(err, &paramErr), errors.As(err, &requestErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func setStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
