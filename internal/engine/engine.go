// Package engine orchestrates the starbridge pipeline: loading declared
// CSVs into the warehouse, building the bridge table, and generating the
// entity-relationship diagram.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/starbridge-labs/starbridge/internal/bridge"
	"github.com/starbridge-labs/starbridge/internal/erd"
	"github.com/starbridge-labs/starbridge/internal/model"
	"github.com/starbridge-labs/starbridge/internal/state"
	"github.com/starbridge-labs/starbridge/pkg/adapter"
)

// Engine coordinates the warehouse adapter, the declared model, and the
// run ledger.
type Engine struct {
	// Database adapter (lazy initialized)
	db          adapter.Adapter
	dbConfig    adapter.Config
	dbConnected bool
	dbMu        sync.Mutex

	logger *slog.Logger
	store  state.Store

	schema      model.Schema
	dataDir     string
	bridgeTable string
	erdOutput   string
}

// Config holds engine configuration.
type Config struct {
	// DataDir is the directory holding the declared CSV files
	DataDir string
	// AdapterConfig contains the warehouse adapter configuration
	AdapterConfig *adapter.Config
	// StatePath is the path to the SQLite run ledger
	StatePath string
	// BridgeTable is the name of the bridge table
	BridgeTable string
	// ERDOutput is the default path of the rendered diagram
	ERDOutput string
	// Schema is the declared star schema (nil uses the built-in model)
	Schema *model.Schema
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a new engine with lazy database connection.
// The warehouse adapter is only connected when the first operation runs.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	schema := model.Default()
	if cfg.Schema != nil {
		schema = *cfg.Schema
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = state.DefaultPath
	}

	logger.Debug("initializing engine", "data_dir", dataDir, "tables", len(schema.Tables))

	store := state.NewSQLiteStore(logger)
	if err := store.Open(statePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	var dbConfig adapter.Config
	if cfg.AdapterConfig != nil {
		dbConfig = *cfg.AdapterConfig
	}
	if dbConfig.Type == "" {
		dbConfig.Type = "duckdb"
	}

	bridgeTable := cfg.BridgeTable
	if bridgeTable == "" {
		bridgeTable = bridge.DefaultTableName
	}

	erdOutput := cfg.ERDOutput
	if erdOutput == "" {
		erdOutput = erd.DefaultOutputFile
	}

	return &Engine{
		db:          nil, // Lazy
		dbConfig:    dbConfig,
		dbConnected: false,
		logger:      logger,
		store:       store,
		schema:      schema,
		dataDir:     dataDir,
		bridgeTable: bridgeTable,
		erdOutput:   erdOutput,
	}, nil
}

// ensureDBConnected lazily connects to the warehouse.
func (e *Engine) ensureDBConnected(ctx context.Context) error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if e.dbConnected {
		return nil
	}

	e.logger.Debug("connecting to database", "adapter_type", e.dbConfig.Type)

	// File-backed DuckDB needs its parent directory to exist.
	if e.dbConfig.Type == "duckdb" && e.dbConfig.Path != "" && e.dbConfig.Path != ":memory:" {
		if dir := filepath.Dir(e.dbConfig.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := adapter.NewAdapter(e.dbConfig, e.logger)
	if err != nil {
		return fmt.Errorf("failed to create database adapter: %w", err)
	}

	if err := db.Connect(ctx, e.dbConfig); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	e.db = db
	e.dbConnected = true

	e.logger.Debug("database connected", "dialect", db.DialectName())

	return nil
}

// isConnected reports whether the warehouse connection is established.
func (e *Engine) isConnected() bool {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()
	return e.dbConnected
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	var errs []error
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing engine: %v", errs)
	}
	return nil
}

// databaseLabel describes the connected database for ledger entries and logs.
func (e *Engine) databaseLabel() string {
	if e.dbConfig.Path != "" {
		return e.dbConfig.Path
	}
	if e.dbConfig.Database != "" {
		return e.dbConfig.Database
	}
	return ":memory:"
}

// beginRun records the start of a ledger run. Ledger failures are logged
// and never fail the operation.
func (e *Engine) beginRun(command string) *state.Run {
	run, err := e.store.CreateRun(command, e.databaseLabel())
	if err != nil {
		e.logger.Warn("failed to record run", "command", command, "error", err)
		return nil
	}
	return run
}

// finishRun closes a ledger run with the outcome of the operation.
func (e *Engine) finishRun(run *state.Run, opErr error) {
	if run == nil {
		return
	}
	if opErr != nil {
		_ = e.store.CompleteRun(run.ID, state.RunStatusFailed, opErr.Error())
		return
	}
	_ = e.store.CompleteRun(run.ID, state.RunStatusCompleted, "")
}

// --- Getters (public accessors) ---

// StateStore returns the run ledger.
func (e *Engine) StateStore() state.Store {
	return e.store
}

// Model returns the declared star schema.
func (e *Engine) Model() model.Schema {
	return e.schema
}

// BridgeTable returns the configured bridge table name.
func (e *Engine) BridgeTable() string {
	return e.bridgeTable
}
