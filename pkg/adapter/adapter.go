// Package adapter provides warehouse adapter interfaces and shared plumbing
// for starbridge's loader, bridge generator, and ERD generator.
//
// This package contains the contract that all warehouse adapters implement.
// Concrete adapter implementations are in pkg/adapters/ subdirectories and
// register themselves with the registry in their init() functions.
//
// Core types (Config, Column, Metadata, Rows) are defined in pkg/core and
// aliased here so adapter implementations only need one import.
package adapter

import (
	"context"

	"github.com/starbridge-labs/starbridge/pkg/core"
)

// Type aliases for the shared types defined in pkg/core.
type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.Column.
	Column = core.Column

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata

	// Rows is an alias for core.Rows.
	Rows = core.Rows
)

// Adapter defines the interface that all warehouse adapters must implement.
// It provides methods for connecting to databases, executing SQL, loading
// CSV files, and retrieving schema metadata.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows (e.g., CREATE, INSERT).
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// GetTableMetadata retrieves metadata for a specified table. The column
	// list reflects whatever types the engine inferred when the table was
	// created; nothing is re-inferred here.
	GetTableMetadata(ctx context.Context, table string) (*Metadata, error)

	// LoadCSV loads data from a CSV file into a table with replace semantics.
	// The table's column types come from the engine's own inference.
	LoadCSV(ctx context.Context, tableName string, filePath string) error

	// DialectName returns the SQL dialect name for this adapter.
	DialectName() string
}
