package output

import "time"

// Typed documents emitted in JSON mode. Field names are part of the CLI's
// machine-readable surface; renames break scripts.

// LoadTableInfo describes one loaded table.
type LoadTableInfo struct {
	Name string `json:"name"`
	File string `json:"file"`
	Rows int64  `json:"rows"`
}

// LoadSummary aggregates a load.
type LoadSummary struct {
	TotalTables int   `json:"total_tables"`
	TotalRows   int64 `json:"total_rows"`
	Skipped     bool  `json:"skipped"`
}

// LoadOutput is the JSON document for the load command.
type LoadOutput struct {
	Tables  []LoadTableInfo `json:"tables"`
	Summary LoadSummary     `json:"summary"`
}

// StageInfo is the per-source row count of the bridge table.
type StageInfo struct {
	Stage string `json:"stage"`
	Rows  int64  `json:"rows"`
}

// BridgeOutput is the JSON document for the bridge command.
type BridgeOutput struct {
	Table  string      `json:"table"`
	SQL    string      `json:"sql"`
	DryRun bool        `json:"dry_run"`
	Rows   int64       `json:"rows"`
	Stages []StageInfo `json:"stages,omitempty"`
}

// ERDOutput is the JSON document for the erd command. Path is empty
// when the file was not written.
type ERDOutput struct {
	Path          string `json:"path,omitempty"`
	Entities      int    `json:"entities"`
	Relationships int    `json:"relationships"`
}

// RunOutput is the JSON document for the run command.
type RunOutput struct {
	RunID  string        `json:"run_id,omitempty"`
	Load   *LoadOutput   `json:"load,omitempty"`
	Bridge *BridgeOutput `json:"bridge,omitempty"`
	ERD    *ERDOutput    `json:"erd,omitempty"`
}

// RunTableInfo describes one table loaded during a recorded run.
type RunTableInfo struct {
	Table    string `json:"table"`
	Rows     int64  `json:"rows"`
	Position int    `json:"position"`
}

// RunInfo describes one recorded run for the history command.
type RunInfo struct {
	ID          string         `json:"id"`
	Command     string         `json:"command"`
	Database    string         `json:"database"`
	Status      string         `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Duration    string         `json:"duration,omitempty"`
	Error       string         `json:"error,omitempty"`
	Tables      []RunTableInfo `json:"tables,omitempty"`
}

// HistoryOutput is the JSON document for the history command.
type HistoryOutput struct {
	Runs []RunInfo `json:"runs"`
}
