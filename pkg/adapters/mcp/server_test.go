package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/pdasim"
	"github.com/aretw0/pdasim/pkg/adapters/memory"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anbnRules = []any{"d(q0,a,Z0)=(q0,AZ0)", "d(q0,a,A)=(q0,AA)", "d(q0,b,A)=(q1,ε)", "d(q1,b,A)=(q1,ε)"}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	loader, err := memory.NewLoader(&domain.Blueprint{
		ID:       "anbn",
		Rules:    []string{"d(q0,a,Z0)=(q0,AZ0)", "d(q0,a,A)=(q0,AA)", "d(q0,b,A)=(q1,ε)", "d(q1,b,A)=(q1,ε)"},
		Final:    []string{"q1"},
		Examples: []domain.Example{{Input: "ab", Expect: domain.ExpectAccept}, {Input: "abb", Expect: domain.ExpectAccept}},
	})
	require.NoError(t, err)
	eng, err := pdasim.New("", pdasim.WithLoader(loader))
	require.NoError(t, err)
	return NewServer(eng)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestHandleSimulate(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	args := map[string]any{"rules": anbnRules, "final": []any{"q1"}, "input": "aabb"}
	snap, err := s.handleSimulate(ctx, callRequest(args), args)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, snap.Status)
	assert.Contains(t, snap.Output, "ACCEPTED")

	args = map[string]any{"blueprint_id": "anbn", "input": "ba"}
	snap, err = s.handleSimulate(ctx, callRequest(args), args)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, snap.Status)
}

func TestHandleSimulate_SingleRuleString(t *testing.T) {
	s := newTestServer(t)
	args := map[string]any{"rules": "d(q0,a,Z0)=(q1,Z0)", "final": "q1", "input": "a"}
	snap, err := s.handleSimulate(context.Background(), callRequest(args), args)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, snap.Status)
}

func TestHandleSimulate_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	args := map[string]any{"input": "a"}
	_, err := s.handleSimulate(ctx, callRequest(args), args)
	assert.ErrorIs(t, err, errMissingBlueprint)

	args = map[string]any{"blueprint_id": "missing", "input": "a"}
	_, err = s.handleSimulate(ctx, callRequest(args), args)
	assert.ErrorIs(t, err, domain.ErrDefinitionNotFound)

	args = map[string]any{"rules": []any{"not a rule"}, "input": "a"}
	_, err = s.handleSimulate(ctx, callRequest(args), args)
	assert.Error(t, err)

	args = map[string]any{"blueprint_id": "anbn", "input": map[string]any{"nested": true}}
	_, err = s.handleSimulate(ctx, callRequest(args), args)
	assert.ErrorContains(t, err, "invalid arguments")
}

func TestHandleValidate(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	args := map[string]any{"blueprint_id": "anbn"}
	resp, err := s.handleValidate(ctx, callRequest(args), args)
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Passed)
	assert.False(t, resp.Results[1].Passed)
	assert.False(t, resp.Passed)

	args = map[string]any{
		"rules":    anbnRules,
		"final":    []any{"q1"},
		"examples": []any{map[string]any{"input": "aabb", "expect": "accept"}},
	}
	resp, err = s.handleValidate(ctx, callRequest(args), args)
	require.NoError(t, err)
	assert.True(t, resp.Passed)
	assert.Equal(t, domain.StatusAccepted, resp.Results[0].Status)
}

func TestHandleExportGraph(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleExportGraph(context.Background(), callRequest(map[string]any{"blueprint_id": "anbn", "input": "ab"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "graph LR")
	assert.Contains(t, text.Text, "class q1 current;")

	res, err = s.handleExportGraph(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleStepSession(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	args := map[string]any{"session_id": "s1", "blueprint_id": "anbn", "input": "ab"}
	snap, err := s.handleStepSession(ctx, callRequest(args), args)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Steps)

	// The stored session is reused; blueprint arguments are no longer needed.
	args = map[string]any{"session_id": "s1", "count": 10.0}
	snap, err = s.handleStepSession(ctx, callRequest(args), args)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, snap.Status)

	args = map[string]any{"session_id": ""}
	_, err = s.handleStepSession(ctx, callRequest(args), args)
	assert.Error(t, err)
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t)

	msg := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(msg)
	require.NoError(t, err)

	for _, name := range []string{"simulate", "validate_definition", "export_graph", "step_session"} {
		assert.Contains(t, string(out), `"name":"`+name+`"`)
	}
}
