package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/internal/constants"
	"github.com/ludo-technologies/treedit/internal/logging"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultMaxSolutions caps tree_mappings when the caller sets no limit
const defaultMaxSolutions = 100

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies(nil, nil)
	}
	return &HandlerSet{deps: deps}
}

// HandleTreeDistance handles the tree_distance tool
func (h *HandlerSet) HandleTreeDistance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	req, errMsg := h.buildRequest(args)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	if algorithm, ok := args["algorithm"].(string); ok && algorithm != "" {
		req.Algorithm = algorithm
	}
	for key, dst := range map[string]*int{
		"delete_cost":  &req.Costs.Delete,
		"insert_cost":  &req.Costs.Insert,
		"relabel_cost": &req.Costs.Relabel,
	} {
		if v, ok := args[key].(float64); ok {
			*dst = int(v)
		}
	}
	if err := req.Validate(); err != nil {
		return toolError(err), nil
	}

	ctx = logging.WithLogger(ctx, h.deps.Logger())
	result, err := h.deps.Distance().Distance(ctx, *req)
	if err != nil {
		return toolError(err), nil
	}

	outputMode := "summary"
	if om, ok := args["output_mode"].(string); ok {
		outputMode = om
	}

	var responseData interface{}
	switch outputMode {
	case "full":
		responseData = result
	default:
		responseData = map[string]interface{}{
			"algorithm": result.Algorithm,
			"cost":      result.Cost,
			"exact":     result.Exact,
			"breakdown": result.Breakdown,
			"pairs":     formatPairs(result.Pairs),
			"deleted":   labelsOf(result.Tree1, result.Deleted),
			"inserted":  labelsOf(result.Tree2, result.Inserted),
			"warnings":  result.Warnings,
		}
	}

	return jsonResult(responseData)
}

// HandleTreeMappings handles the tree_mappings tool
func (h *HandlerSet) HandleTreeMappings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	req, errMsg := h.buildRequest(args)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	req.MaxSolutions = defaultMaxSolutions
	if ms, ok := args["max_solutions"].(float64); ok {
		if ms < 1 {
			return mcp.NewToolResultError("max_solutions must be at least 1"), nil
		}
		req.MaxSolutions = int(ms)
	}
	optimalOnly, _ := args["optimal_only"].(bool)

	if err := req.Validate(); err != nil {
		return toolError(err), nil
	}

	ctx = logging.WithLogger(ctx, h.deps.Logger())
	result, err := h.deps.Distance().Mappings(ctx, *req)
	if err != nil {
		return toolError(err), nil
	}

	mappings := make([]map[string]interface{}, 0, len(result.Mappings))
	for _, m := range result.Mappings {
		if optimalOnly && !m.Optimal {
			continue
		}
		mappings = append(mappings, map[string]interface{}{
			"index":     m.Index,
			"cost":      m.Cost,
			"breakdown": m.Breakdown,
			"optimal":   m.Optimal,
			"pairs":     formatPairs(m.Pairs),
		})
	}

	return jsonResult(map[string]interface{}{
		"min_cost":  result.MinCost,
		"total":     len(result.Mappings),
		"returned":  len(mappings),
		"truncated": result.Truncated,
		"mappings":  mappings,
		"warnings":  result.Warnings,
	})
}

// buildRequest reads the two trees and the timeout shared by every tool.
// It returns a message suitable for a tool error on failure.
func (h *HandlerSet) buildRequest(args map[string]interface{}) (*domain.DistanceRequest, string) {
	tree1, ok := args["tree1"].(string)
	if !ok || strings.TrimSpace(tree1) == "" {
		return nil, "tree1 parameter is required and must be a string"
	}
	tree2, ok := args["tree2"].(string)
	if !ok || strings.TrimSpace(tree2) == "" {
		return nil, "tree2 parameter is required and must be a string"
	}

	req := h.deps.Defaults()
	req.Source1 = treeSource(tree1)
	req.Source2 = treeSource(tree2)

	if ms, ok := args["timeout_ms"].(float64); ok {
		if ms < 0 {
			return nil, "timeout_ms must be >= 0"
		}
		timeout := time.Duration(ms) * time.Millisecond
		if timeout > 0 && (req.Timeout == 0 || timeout < req.Timeout) {
			req.Timeout = timeout
		}
	}

	return &req, ""
}

// treeSource treats an existing file with a tree extension as a path and
// anything else as an inline tree
func treeSource(arg string) domain.TreeSource {
	arg = strings.TrimSpace(arg)
	ext := strings.ToLower(filepath.Ext(arg))
	for _, supported := range constants.SupportedTreeExtensions {
		if ext != supported {
			continue
		}
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			return domain.TreeSource{Path: arg}
		}
	}
	return domain.TreeSource{Inline: arg}
}

// toolError reports a failure with its domain code so clients can react to it
func toolError(err error) *mcp.CallToolResult {
	if code := domain.ErrorCode(err); code != "" {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", code, err))
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// formatPairs renders matched pairs as "from->to" with labels
func formatPairs(pairs []domain.NodePair) []string {
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.Relabeled {
			out = append(out, fmt.Sprintf("%d:%s -> %d:%s (relabel)", p.From, p.FromLabel, p.To, p.ToLabel))
		} else {
			out = append(out, fmt.Sprintf("%d:%s -> %d:%s", p.From, p.FromLabel, p.To, p.ToLabel))
		}
	}
	return out
}

func labelsOf(tree domain.TreeSummary, nodes []int) []string {
	out := make([]string, 0, len(nodes))
	for _, v := range nodes {
		label := ""
		if v >= 0 && v < len(tree.Labels) {
			label = tree.Labels[v]
		}
		out = append(out, fmt.Sprintf("%d:%s", v, label))
	}
	return out
}
