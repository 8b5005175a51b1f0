package mcp

import (
	"github.com/charmbracelet/log"
	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/internal/config"
	"github.com/ludo-technologies/treedit/internal/logging"
	"github.com/ludo-technologies/treedit/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	distance *service.DistanceServiceImpl
	config   *config.Config
	defaults domain.DistanceRequest
	logger   *log.Logger
}

// NewDependencies constructs the dependency set with sane defaults.
func NewDependencies(cfg *config.Config, logger *log.Logger) *Dependencies {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	defaults := service.NewConfigurationLoader().DistanceDefaults(cfg)
	defaults.OutputWriter = nil
	defaults.OutputFormat = domain.OutputFormatJSON

	return &Dependencies{
		distance: service.NewDistanceService(nil),
		config:   cfg,
		defaults: *defaults,
		logger:   logger,
	}
}

// Config exposes the loaded configuration snapshot.
func (d *Dependencies) Config() *config.Config {
	return d.config
}

// Defaults returns a copy of the solver settings requests start from.
func (d *Dependencies) Defaults() domain.DistanceRequest {
	return d.defaults
}

// Distance returns the distance service.
func (d *Dependencies) Distance() domain.DistanceService {
	return d.distance
}

// Logger returns the server logger.
func (d *Dependencies) Logger() *log.Logger {
	return d.logger
}
