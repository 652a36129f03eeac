// Package config provides shared configuration defaults and validation for
// starbridge. This package is decoupled from CLI concerns so that tools
// other than the CLI can resolve project settings without importing cobra.
package config

import "github.com/starbridge-labs/starbridge/pkg/core"

// Default configuration values.
const (
	DefaultDataDir      = "data"
	DefaultDatabasePath = "data/starbridge.duckdb"
	DefaultBridgeTable  = "bridge"
	DefaultERDOutput    = "er-diagram.mermaid"
)

// DefaultSchemaForType returns the default schema for a database type.
func DefaultSchemaForType(dbType string) string {
	if dbType == "postgres" {
		return "public"
	}
	return "main"
}

// ApplyTargetDefaults applies default values to an adapter config based on
// the target type.
func ApplyTargetDefaults(t *core.AdapterConfig) {
	if t == nil {
		return
	}

	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}

	if t.Type == "postgres" && t.Port == 0 {
		t.Port = 5432
	}
}
