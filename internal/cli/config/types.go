// Package config provides configuration management for the starbridge CLI.
//
// This package layers CLI flags, environment variables, and the project
// config file on top of the shared defaults from internal/config. The
// declared model is part of the configuration: a starbridge.yaml that
// declares tables replaces the built-in star schema wholesale.
package config

import (
	sharedcfg "github.com/starbridge-labs/starbridge/internal/config"
	"github.com/starbridge-labs/starbridge/internal/model"
	"github.com/starbridge-labs/starbridge/internal/state"
	"github.com/starbridge-labs/starbridge/pkg/core"
)

// TargetConfig is an alias for the shared adapter configuration.
// This allows CLI code to use config.TargetConfig without importing pkg/core.
type TargetConfig = core.AdapterConfig

// Config holds all CLI configuration options.
type Config struct {
	DataDir     string `koanf:"data_dir"`
	Database    string `koanf:"database"`
	BridgeTable string `koanf:"bridge_table"`
	ERDOutput   string `koanf:"erd_output"`
	StatePath   string `koanf:"state_path"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	Target *TargetConfig `koanf:"target"`

	// Tables and Relationships declare the model. When Tables is empty the
	// built-in star schema is used; a config file that declares tables
	// replaces it entirely, it is never merged.
	Tables        []model.Table        `koanf:"tables"`
	Relationships []model.Relationship `koanf:"relationships"`

	// ProjectRoot is the directory all relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
}

// Model returns the declared star schema.
func (c *Config) Model() model.Schema {
	if len(c.Tables) == 0 {
		return model.Default()
	}
	return model.Schema{Tables: c.Tables, Relationships: c.Relationships}
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultDataDir     = sharedcfg.DefaultDataDir
	DefaultDatabase    = sharedcfg.DefaultDatabasePath
	DefaultBridgeTable = sharedcfg.DefaultBridgeTable
	DefaultERDOutput   = sharedcfg.DefaultERDOutput
	DefaultStateFile   = state.DefaultPath
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)
