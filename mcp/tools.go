package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names
const (
	ToolTreeDistance = "tree_distance"
	ToolTreeMappings = "tree_mappings"
)

// RegisterTools registers all treedit MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	// Tool 1: tree_distance - minimum edit distance between two trees
	s.AddTool(mcp.NewTool(ToolTreeDistance,
		mcp.WithDescription("Compute the exact tree edit distance between two labeled ordered trees, with the node mapping and edit counts that achieve it"),
		mcp.WithString("tree1",
			mcp.Required(),
			mcp.Description(`First tree: a JSON document such as {"label":"A","children":[{"label":"B"}]}, bracket notation such as "A(B,C)", or a path to a tree file`)),
		mcp.WithString("tree2",
			mcp.Required(),
			mcp.Description("Second tree, in the same forms as tree1")),
		mcp.WithString("algorithm",
			mcp.Enum("bnb", "backtracking", "dp", "dp-size"),
			mcp.Description("Solver: bnb (default), backtracking, dp (leaf-cost distance), dp-size")),
		mcp.WithNumber("timeout_ms",
			mcp.Description("Search time limit in milliseconds, capped by the server limit (default: server limit)")),
		mcp.WithNumber("delete_cost",
			mcp.Description("Cost of deleting a node (default: 1)")),
		mcp.WithNumber("insert_cost",
			mcp.Description("Cost of inserting a node (default: 1)")),
		mcp.WithNumber("relabel_cost",
			mcp.Description("Cost of relabeling a node (default: 1)")),
		mcp.WithString("output_mode",
			mcp.Enum("summary", "full"),
			mcp.Description("summary returns cost, counts and matched pairs; full adds both trees and search statistics (default: summary)")),
	), h.HandleTreeDistance)

	// Tool 2: tree_mappings - every valid mapping with its cost
	s.AddTool(mcp.NewTool(ToolTreeMappings,
		mcp.WithDescription("Enumerate every valid node mapping between two trees with its cost; the number of mappings grows exponentially with tree size"),
		mcp.WithString("tree1",
			mcp.Required(),
			mcp.Description("First tree: JSON document, bracket notation or tree file path")),
		mcp.WithString("tree2",
			mcp.Required(),
			mcp.Description("Second tree, in the same forms as tree1")),
		mcp.WithNumber("max_solutions",
			mcp.Description("Maximum number of mappings to return (default: 100)")),
		mcp.WithBoolean("optimal_only",
			mcp.Description("Return only minimum-cost mappings (default: false)")),
		mcp.WithNumber("timeout_ms",
			mcp.Description("Search time limit in milliseconds, capped by the server limit")),
	), h.HandleTreeMappings)
}
