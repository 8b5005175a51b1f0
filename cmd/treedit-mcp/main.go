package main

import (
	"fmt"
	"os"

	"github.com/ludo-technologies/treedit/internal/logging"
	"github.com/ludo-technologies/treedit/internal/version"
	"github.com/ludo-technologies/treedit/mcp"
	"github.com/ludo-technologies/treedit/service"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"
)

const serverName = "treedit"

func main() {
	configPath := pflag.StringP("config", "c", "", "Path to configuration file")
	verbose := pflag.BoolP("verbose", "v", false, "Enable debug logging on stderr")
	pflag.Parse()

	// MCP uses stdout for JSON-RPC
	logger := logging.New(os.Stderr, logging.Level(*verbose))

	cfg, err := service.NewConfigurationLoader().LoadConfig(*configPath, ".")
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	mcp.RegisterTools(server, mcp.NewHandlerSet(mcp.NewDependencies(cfg, logger)))

	logger.Info("starting MCP server",
		"name", serverName,
		"version", version.Short(),
		"tools", []string{mcp.ToolTreeDistance, mcp.ToolTreeMappings})

	// Blocks until the client disconnects
	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
