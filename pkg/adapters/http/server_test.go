package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/pdasim"
	"github.com/aretw0/pdasim/pkg/adapters/memory"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/aretw0/pdasim/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anbn() *domain.Blueprint {
	return &domain.Blueprint{
		ID:    "anbn",
		Rules: []string{"d(q0,a,Z0)=(q0,AZ0)", "d(q0,a,A)=(q0,AA)", "d(q0,b,A)=(q1,ε)", "d(q1,b,A)=(q1,ε)"},
		Final: []string{"q1"},
		Examples: []domain.Example{
			{Input: "aabb", Expect: domain.ExpectAccept},
			{Input: "ba", Expect: domain.ExpectReject},
		},
	}
}

func newTestHandler(t *testing.T, opts ...HandlerOption) http.Handler {
	t.Helper()
	loader, err := memory.NewLoader(anbn())
	require.NoError(t, err)
	eng, err := pdasim.New("", pdasim.WithLoader(loader))
	require.NoError(t, err)

	handler, err := NewHandler(eng, opts...)
	require.NoError(t, err)
	return handler
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) domain.Snapshot {
	t.Helper()
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap), w.Body.String())
	return snap
}

func TestGetSwagger_IsValid(t *testing.T) {
	spec, err := GetSwagger()
	require.NoError(t, err)
	require.NoError(t, spec.Validate(context.Background()))
	assert.NotNil(t, spec.Paths.Find("/sessions/{id}/step"))
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "pdasim-http", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, h, "GET", "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}

func TestSimulate(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/simulate", SimulateRequest{BlueprintRef: BlueprintRef{Blueprint: anbn()}, Input: "aabb"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := decodeSnapshot(t, w)
	assert.Equal(t, domain.StatusAccepted, snap.Status)
	assert.True(t, strings.HasSuffix(snap.Output, "ACCEPTED!!!"))

	id := "anbn"
	w = do(t, h, "POST", "/simulate", SimulateRequest{BlueprintRef: BlueprintRef{BlueprintId: &id}, Input: "aab"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.StatusRejected, decodeSnapshot(t, w).Status)
}

func TestSimulate_Errors(t *testing.T) {
	h := newTestHandler(t)

	// Missing "input" is caught by the OpenAPI validator.
	w := do(t, h, "POST", "/simulate", map[string]any{"blueprint_id": "anbn"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/simulate", map[string]any{"input": "ab"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "blueprint or blueprint_id is required")

	missing := "missing"
	w = do(t, h, "POST", "/simulate", SimulateRequest{BlueprintRef: BlueprintRef{BlueprintId: &missing}, Input: "a"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	bad := &domain.Blueprint{Rules: []string{"d(q0,a,Z0)=(q0,AZ0) junk"}, Final: []string{"q0"}}
	w = do(t, h, "POST", "/simulate", SimulateRequest{BlueprintRef: BlueprintRef{Blueprint: bad}, Input: "a"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestValidateAndBlueprints(t *testing.T) {
	h := newTestHandler(t)

	id := "anbn"
	w := do(t, h, "POST", "/validate", BlueprintRef{BlueprintId: &id})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Passed)
	assert.Len(t, resp.Results, 2)

	w = do(t, h, "GET", "/blueprints", nil)
	assert.JSONEq(t, `{"ids":["anbn"]}`, w.Body.String())

	w = do(t, h, "GET", "/blueprints/anbn", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"d(q0,b,A)=(q1,ε)"`)
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestHandler(t)

	sid := "sess-1"
	w := do(t, h, "POST", "/sessions", CreateSessionRequest{
		SimulateRequest: SimulateRequest{BlueprintRef: BlueprintRef{Blueprint: anbn()}, Input: "ab"},
		SessionId:       &sid,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, domain.StatusIdle, decodeSnapshot(t, w).Status)

	w = do(t, h, "POST", "/sessions/sess-1/step", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decodeSnapshot(t, w).Steps)

	w = do(t, h, "POST", "/sessions/sess-1/step?count=50", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusAccepted, decodeSnapshot(t, w).Status)

	w = do(t, h, "POST", "/sessions/sess-1/step?count=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "count below the documented minimum")

	w = do(t, h, "POST", "/sessions/sess-1/step?count=many", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "GET", "/sessions/sess-1/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph LR"))
	assert.Contains(t, w.Body.String(), "class q1 current;")

	w = do(t, h, "GET", "/sessions", nil)
	assert.JSONEq(t, `{"ids":["sess-1"]}`, w.Body.String())

	w = do(t, h, "POST", "/sessions/sess-1/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusIdle, decodeSnapshot(t, w).Status)

	w = do(t, h, "DELETE", "/sessions/sess-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, "GET", "/sessions/sess-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "POST", "/sessions/sess-1/step", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// syncRecorder guards the body against the concurrent reads of the test.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestSubscribeSessionEvents(t *testing.T) {
	h := newTestHandler(t)

	sid := "sess-sse"
	w := do(t, h, "POST", "/sessions", CreateSessionRequest{
		SimulateRequest: SimulateRequest{BlueprintRef: BlueprintRef{Blueprint: anbn()}, Input: "ab"},
		SessionId:       &sid,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}
	reqSub := httptest.NewRequest("GET", "/sessions/sess-sse/events?watch=status,output", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(sub, reqSub)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(sub.String(), "event: ping")
	}, 2*time.Second, 10*time.Millisecond)

	w = do(t, h, "POST", "/sessions/sess-sse/step", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.Eventually(t, func() bool {
		return strings.Contains(sub.String(), `"steps":1`)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	out := sub.String()
	assert.Contains(t, out, `"session_id":"sess-sse"`)
	assert.Contains(t, out, `"status":"exploring"`)
}

func TestSubscribeEvents_UnsupportedLoader(t *testing.T) {
	h := newTestHandler(t)
	w := do(t, h, "GET", "/events", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	loader, err := memory.NewLoader(anbn())
	require.NoError(t, err)
	eng, err := pdasim.New("", pdasim.WithLoader(loader), pdasim.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)
	h, err := NewHandler(eng, WithMetrics(reg))
	require.NoError(t, err)

	w := do(t, h, "POST", "/simulate", SimulateRequest{BlueprintRef: BlueprintRef{Blueprint: anbn()}, Input: "ab"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `pdasim_outcomes_total{status="accepted"} 1`)
	assert.Contains(t, w.Body.String(), "pdasim_frontiers_total")
}

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager(slogDiscard())
	ch, cancel := sm.Subscribe("s")
	assert.Equal(t, 1, sm.Subscribers("s"))

	sm.Broadcast("s", "hello")
	assert.Equal(t, "hello", <-ch)

	// A full buffer drops instead of blocking.
	for i := 0; i < 20; i++ {
		sm.Broadcast("s", "x")
	}
	assert.Len(t, ch, cap(ch))

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("s"))
}

func TestWatched(t *testing.T) {
	status := domain.StatusAccepted
	statusOnly, _ := json.Marshal(domain.SnapshotDiff{SessionID: "s", Status: &status})
	output, _ := json.Marshal(domain.SnapshotDiff{SessionID: "s", Appended: "x"})

	assert.True(t, watched(string(statusOnly), []string{"status"}))
	assert.False(t, watched(string(statusOnly), []string{"output", "steps"}))
	assert.True(t, watched(string(output), []string{" output"}))
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
