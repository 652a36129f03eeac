package engine

// load.go - CSV loading with load-before-anything validation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starbridge-labs/starbridge/internal/state"
)

// LoadOptions holds options for loading the declared CSV files.
type LoadOptions struct {
	// Force removes an existing database file and reloads from scratch.
	Force bool
}

// LoadResult describes one loaded table.
type LoadResult struct {
	Table string
	File  string
	Rows  int64
}

// LoadReport describes the outcome of a load.
type LoadReport struct {
	Tables []LoadResult
	// Skipped is true when an existing database file was reused.
	Skipped bool
}

// Load loads every declared CSV into the warehouse in declaration order.
// All declared files are resolved and checked before any table is created,
// so a missing file never leaves a partial database behind.
func (e *Engine) Load(ctx context.Context, opts LoadOptions) (*LoadReport, error) {
	run := e.beginRun("load")
	report, err := e.load(ctx, opts, run)
	e.finishRun(run, err)
	return report, err
}

func (e *Engine) load(ctx context.Context, opts LoadOptions, run *state.Run) (*LoadReport, error) {
	e.logger.Info("loading tables", "data_dir", e.dataDir, "tables", len(e.schema.Tables))

	// Resolve and stat every declared file before touching the database.
	paths := make([]string, len(e.schema.Tables))
	for i, t := range e.schema.Tables {
		path := filepath.Join(e.dataDir, t.CSVFile())
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("missing CSV for table %s: %w", t.Name, err)
		}
		paths[i] = path
	}

	dbPath := e.dbConfig.Path
	fileBacked := e.dbConfig.Type == "duckdb" && dbPath != "" && dbPath != ":memory:"
	if fileBacked && !e.isConnected() {
		if _, err := os.Stat(dbPath); err == nil {
			if !opts.Force {
				e.logger.Info("database exists, skipping load", "path", dbPath)
				return e.existingReport(ctx, run)
			}
			e.logger.Info("removing existing database", "path", dbPath)
			if err := os.Remove(dbPath); err != nil {
				return nil, fmt.Errorf("failed to remove existing database: %w", err)
			}
			_ = os.Remove(dbPath + ".wal")
		}
	}

	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	results := make([]LoadResult, 0, len(e.schema.Tables))
	for i, t := range e.schema.Tables {
		e.logger.Debug("loading table", "table", t.Name, "file", paths[i])

		if err := e.db.LoadCSV(ctx, t.Name, paths[i]); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", t.CSVFile(), err)
		}

		meta, err := e.db.GetTableMetadata(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to read back table %s: %w", t.Name, err)
		}

		e.logger.Debug("table loaded", "table", t.Name, "rows", meta.RowCount)
		results = append(results, LoadResult{Table: t.Name, File: paths[i], Rows: meta.RowCount})
		if run != nil {
			_ = e.store.AddRunTable(run.ID, t.Name, meta.RowCount, i)
		}
	}

	if err := e.verifySample(ctx); err != nil {
		return nil, err
	}

	e.logger.Info("load complete", "tables", len(results))
	return &LoadReport{Tables: results}, nil
}

// existingReport reports the state of an already-loaded database.
func (e *Engine) existingReport(ctx context.Context, run *state.Run) (*LoadReport, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	results := make([]LoadResult, 0, len(e.schema.Tables))
	for i, t := range e.schema.Tables {
		meta, err := e.db.GetTableMetadata(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("existing database is missing table %s (re-run with --force): %w", t.Name, err)
		}
		results = append(results, LoadResult{
			Table: t.Name,
			File:  filepath.Join(e.dataDir, t.CSVFile()),
			Rows:  meta.RowCount,
		})
		if run != nil {
			_ = e.store.AddRunTable(run.ID, t.Name, meta.RowCount, i)
		}
	}

	return &LoadReport{Tables: results, Skipped: true}, nil
}

// verifySample confirms the database answers queries after a load.
func (e *Engine) verifySample(ctx context.Context) error {
	if len(e.schema.Tables) == 0 {
		return nil
	}

	table := e.schema.Tables[0].Name
	rows, err := e.db.Query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 5", table))
	if err != nil {
		return fmt.Errorf("post-load verification failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	n := 0
	for rows.Next() {
		n++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("post-load verification failed: %w", err)
	}

	e.logger.Debug("verified sample read", "table", table, "rows", n)
	return nil
}
