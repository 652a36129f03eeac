package config

import (
	"fmt"
	"strings"

	"github.com/starbridge-labs/starbridge/pkg/adapter"
	"github.com/starbridge-labs/starbridge/pkg/core"
)

// ValidateTarget checks if the target configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func ValidateTarget(t *core.AdapterConfig) error {
	if t == nil {
		return fmt.Errorf("target configuration is required")
	}
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	// Use adapter registry as single source of truth
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}

	return nil
}
