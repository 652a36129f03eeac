package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/starbridge-labs/starbridge/internal/cli/config"
	"github.com/starbridge-labs/starbridge/internal/cli/output"
	intconfig "github.com/starbridge-labs/starbridge/internal/config"
	"github.com/starbridge-labs/starbridge/internal/engine"

	// Register the warehouse adapters the CLI can target.
	_ "github.com/starbridge-labs/starbridge/pkg/adapters/duckdb"
	_ "github.com/starbridge-labs/starbridge/pkg/adapters/postgres"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need database access.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	dataDir := getEnvOrDefault("STARBRIDGE_DATA_DIR", intconfig.DefaultDataDir)
	database := getEnvOrDefault("STARBRIDGE_DATABASE", intconfig.DefaultDatabasePath)
	bridgeTable := getEnvOrDefault("STARBRIDGE_BRIDGE_TABLE", intconfig.DefaultBridgeTable)
	erdOutput := getEnvOrDefault("STARBRIDGE_ERD_OUTPUT", intconfig.DefaultERDOutput)
	statePath := getEnvOrDefault("STARBRIDGE_STATE_PATH", config.DefaultStateFile)
	verbose := os.Getenv("STARBRIDGE_VERBOSE") == "true"
	outputFormat := os.Getenv("STARBRIDGE_OUTPUT")

	cfg := &config.Config{
		DataDir:      dataDir,
		Database:     database,
		BridgeTable:  bridgeTable,
		ERDOutput:    erdOutput,
		StatePath:    statePath,
		Verbose:      verbose,
		OutputFormat: outputFormat,
		Target: &config.TargetConfig{
			Type: "duckdb",
			Path: database,
		},
	}
	intconfig.ApplyTargetDefaults(cfg.Target)

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	// Ensure state directory exists
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, err
		}
	}

	schema := cfg.Model()

	engineCfg := engine.Config{
		DataDir:       cfg.DataDir,
		AdapterConfig: cfg.Target,
		StatePath:     cfg.StatePath,
		BridgeTable:   cfg.BridgeTable,
		ERDOutput:     cfg.ERDOutput,
		Schema:        &schema,
		Logger:        logger,
	}

	return engine.New(engineCfg)
}
