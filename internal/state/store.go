// Package state provides the run ledger for starbridge using SQLite.
// It records pipeline runs and the per-table load counts of each run.
package state

import "time"

// DefaultPath is the default location of the run ledger database.
const DefaultPath = ".starbridge/state.db"

// Store defines the interface for run ledger operations.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	// Run operations
	CreateRun(command, database string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	// Per-table results of a run
	AddRunTable(runID, tableName string, rows int64, position int) error
	GetRunTables(runID string) ([]*RunTable, error)
}

// RunStatus represents the status of a pipeline run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run represents one invocation of a starbridge pipeline command.
type Run struct {
	ID          string
	Command     string
	Database    string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// RunTable records the outcome of loading one table during a run.
// Position preserves the declaration order of the table.
type RunTable struct {
	RunID     string
	TableName string
	Rows      int64
	Position  int
}
