package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/treedit/internal/logging"
	"github.com/ludo-technologies/treedit/service"
)

// ServeCommand runs the HTTP API
type ServeCommand struct {
	flags *solverFlags
	addr  string
}

// NewServeCommand creates a new serve command
func NewServeCommand() *ServeCommand {
	return &ServeCommand{flags: newSolverFlags()}
}

// CreateCobraCommand creates the cobra command for the HTTP API
func (s *ServeCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tree distance HTTP API",
		Long: `Serve tree edit distance over HTTP.

Endpoints:
  GET  /v1/health      Liveness and version
  GET  /v1/algorithms  Available solvers and the default
  POST /v1/distance    {"tree1": ..., "tree2": ..., "algorithm": "bnb"}
  POST /v1/mappings    Enumerate every valid mapping
  GET  /metrics        Prometheus metrics

Solver flags set the defaults for requests that leave a setting out.
A request timeout can only shorten the server timeout.

Examples:
  # Listen on the configured address (default :8080)
  treedit serve

  # Listen on localhost with a 10s per-request limit
  treedit serve --addr 127.0.0.1:9000 --timeout 10s`,
		Args: cobra.NoArgs,
		RunE: s.runServe,
	}

	s.flags.register(cmd.Flags())
	cmd.Flags().StringVar(&s.addr, "addr", "", "Listen address (default: from config, :8080)")

	// Reports are JSON only
	_ = cmd.Flags().MarkHidden(service.FlagFormat)
	_ = cmd.Flags().MarkHidden("output")
	_ = cmd.Flags().MarkHidden(service.FlagMaxSolutions)

	return cmd
}

// runServe executes the serve command
func (s *ServeCommand) runServe(cmd *cobra.Command, args []string) error {
	loader := service.NewConfigurationLoaderWithFlags(newFlagTracker(cmd))

	cfg, err := service.NewConfigurationLoader().LoadConfig(s.flags.configFile, ".")
	if err != nil {
		return err
	}
	base, err := loader.LoadDistanceRequest(s.flags.configFile, ".")
	if err != nil {
		return err
	}
	override := s.flags.distanceRequest(cmd, base.OutputFormat)
	defaults := loader.MergeDistanceRequest(base, &override)
	if err := defaults.Validate(); err != nil {
		return fmt.Errorf("invalid server defaults: %w", err)
	}

	addr := cfg.Server.Addr
	if s.addr != "" {
		addr = s.addr
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	level := logging.Level(verbose)
	if level > log.InfoLevel {
		level = log.InfoLevel
	}
	logger := logging.New(cmd.ErrOrStderr(), level)

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := service.NewHTTPHandler(service.NewDistanceService(nil), *defaults, logger)
	return service.Serve(cmd.Context(), addr, service.NewRouter(handler), logger)
}

// NewServeCmd creates and returns the serve cobra command
func NewServeCmd() *cobra.Command {
	return NewServeCommand().CreateCobraCommand()
}
