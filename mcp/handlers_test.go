package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/internal/config"
	"github.com/ludo-technologies/treedit/mcp"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTool(
	t *testing.T,
	arguments interface{},
	handlerFunc func(*mcp.HandlerSet, context.Context, mcplib.CallToolRequest) (*mcplib.CallToolResult, error),
) *mcplib.CallToolResult {
	t.Helper()
	h := mcp.NewHandlerSet(mcp.NewDependencies(nil, nil))

	req := mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Arguments: arguments,
		},
	}

	res, err := handlerFunc(h, context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func decode(t *testing.T, res *mcplib.CallToolResult) map[string]interface{} {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	return out
}

func TestHandleTreeDistance(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]interface{}
		wantCost  float64
		wantAlgo  string
		wantPairs int
	}{
		{
			name:      "bracket notation",
			args:      map[string]interface{}{"tree1": "A(B(D),C)", "tree2": "A(X(D),Y)"},
			wantCost:  2,
			wantAlgo:  "bnb",
			wantPairs: 4,
		},
		{
			name: "json documents with backtracking",
			args: map[string]interface{}{
				"tree1":     `{"label":"A","children":[{"label":"B"}]}`,
				"tree2":     `{"label":"A"}`,
				"algorithm": "backtracking",
			},
			wantCost:  1,
			wantAlgo:  "backtracking",
			wantPairs: 1,
		},
		{
			name:      "weighted relabel",
			args:      map[string]interface{}{"tree1": "A", "tree2": "B", "relabel_cost": float64(5)},
			wantCost:  2,
			wantAlgo:  "bnb",
			wantPairs: 0,
		},
		{
			name:      "identical trees",
			args:      map[string]interface{}{"tree1": "A(B,C)", "tree2": "A(B,C)", "algorithm": "dp"},
			wantCost:  0,
			wantAlgo:  "dp",
			wantPairs: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runTool(t, tt.args, (*mcp.HandlerSet).HandleTreeDistance)
			out := decode(t, res)

			assert.Equal(t, tt.wantCost, out["cost"])
			assert.Equal(t, tt.wantAlgo, out["algorithm"])
			assert.Equal(t, true, out["exact"])
			pairs, _ := out["pairs"].([]interface{})
			assert.Len(t, pairs, tt.wantPairs)
		})
	}
}

func TestHandleTreeDistance_FullMode(t *testing.T) {
	res := runTool(t, map[string]interface{}{
		"tree1":       "A(B)",
		"tree2":       "A(C)",
		"output_mode": "full",
	}, (*mcp.HandlerSet).HandleTreeDistance)

	require.False(t, res.IsError)
	var full domain.DistanceResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &full))
	assert.Equal(t, 1, full.Cost)
	assert.Equal(t, 2, full.Tree1.Nodes)
	assert.NotEmpty(t, full.RunID)
}

func TestHandleTreeDistance_FilePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "left.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"label":"A","children":[{"label":"B"}]}`), 0o644))

	res := runTool(t, map[string]interface{}{"tree1": path, "tree2": "A(B)"}, (*mcp.HandlerSet).HandleTreeDistance)
	out := decode(t, res)
	assert.Equal(t, float64(0), out["cost"])
}

func TestHandleTreeDistance_Errors(t *testing.T) {
	tests := []struct {
		name      string
		arguments interface{}
		contains  string
	}{
		{"bad arguments", "not a map", "invalid arguments format"},
		{"missing tree1", map[string]interface{}{"tree2": "A"}, "tree1 parameter is required"},
		{"missing tree2", map[string]interface{}{"tree1": "A"}, "tree2 parameter is required"},
		{"unknown algorithm", map[string]interface{}{"tree1": "A", "tree2": "B", "algorithm": "greedy"}, "INVALID_INPUT"},
		{"negative cost", map[string]interface{}{"tree1": "A", "tree2": "B", "delete_cost": float64(-1)}, "INVALID_INPUT"},
		{"negative timeout", map[string]interface{}{"tree1": "A", "tree2": "B", "timeout_ms": float64(-5)}, "timeout_ms"},
		{"malformed notation", map[string]interface{}{"tree1": "A(B", "tree2": "B"}, "PARSE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runTool(t, tt.arguments, (*mcp.HandlerSet).HandleTreeDistance)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.contains)
		})
	}
}

func TestHandleTreeMappings(t *testing.T) {
	res := runTool(t, map[string]interface{}{
		"tree1": "A(B(D),C)",
		"tree2": "A(X(D),Y)",
	}, (*mcp.HandlerSet).HandleTreeMappings)
	out := decode(t, res)

	assert.Equal(t, float64(2), out["min_cost"])
	mappings, _ := out["mappings"].([]interface{})
	require.NotEmpty(t, mappings)
	assert.Equal(t, out["total"], out["returned"])

	optimal := 0
	for _, raw := range mappings {
		m := raw.(map[string]interface{})
		assert.GreaterOrEqual(t, m["cost"].(float64), float64(2))
		if m["optimal"] == true {
			optimal++
		}
	}
	assert.Positive(t, optimal)
}

func TestHandleTreeMappings_Limits(t *testing.T) {
	res := runTool(t, map[string]interface{}{
		"tree1":         "A(B(D),C)",
		"tree2":         "A(X(D),Y)",
		"max_solutions": float64(3),
	}, (*mcp.HandlerSet).HandleTreeMappings)
	out := decode(t, res)
	assert.Equal(t, float64(3), out["total"])
	assert.Equal(t, true, out["truncated"])

	res = runTool(t, map[string]interface{}{
		"tree1":        "A(B,C)",
		"tree2":        "A(C)",
		"optimal_only": true,
	}, (*mcp.HandlerSet).HandleTreeMappings)
	out = decode(t, res)
	for _, raw := range out["mappings"].([]interface{}) {
		assert.Equal(t, true, raw.(map[string]interface{})["optimal"])
	}

	res = runTool(t, map[string]interface{}{
		"tree1":         "A",
		"tree2":         "B",
		"max_solutions": float64(0),
	}, (*mcp.HandlerSet).HandleTreeMappings)
	assert.True(t, res.IsError)
	assert.True(t, strings.Contains(resultText(t, res), "max_solutions"))
}

func TestNewDependencies_UsesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Solver.Algorithm = "dp-size"

	deps := mcp.NewDependencies(cfg, nil)
	assert.Equal(t, "dp-size", deps.Defaults().Algorithm)
	assert.Nil(t, deps.Defaults().OutputWriter)
	assert.Same(t, cfg, deps.Config())

	h := mcp.NewHandlerSet(deps)
	res, err := h.HandleTreeDistance(context.Background(), mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{Arguments: map[string]interface{}{"tree1": "A", "tree2": "A"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "dp-size", decode(t, res)["algorithm"])
}

func TestRegisterTools(t *testing.T) {
	server := mcpserver.NewMCPServer("treedit-test", "0.0.0", mcpserver.WithToolCapabilities(true))
	mcp.RegisterTools(server, mcp.NewHandlerSet(nil))

	msg := server.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(data), mcp.ToolTreeDistance)
	assert.Contains(t, string(data), mcp.ToolTreeMappings)
}
