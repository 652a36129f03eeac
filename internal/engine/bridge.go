package engine

// bridge.go - bridge table construction

import (
	"context"

	"github.com/starbridge-labs/starbridge/internal/bridge"
)

// BuildBridge generates the bridge statement and, unless opts.DryRun is
// set, executes it and reads back the per-stage row counts.
func (e *Engine) BuildBridge(ctx context.Context, opts bridge.Options) (*bridge.Result, error) {
	run := e.beginRun("bridge")
	res, err := e.buildBridge(ctx, opts)
	e.finishRun(run, err)
	return res, err
}

func (e *Engine) buildBridge(ctx context.Context, opts bridge.Options) (*bridge.Result, error) {
	if opts.TableName == "" {
		opts.TableName = e.bridgeTable
	}

	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	e.logger.Info("building bridge", "table", opts.TableName, "dry_run", opts.DryRun)

	res, err := bridge.Build(ctx, e.db, e.schema, opts)
	if err != nil {
		return nil, err
	}

	if !opts.DryRun {
		e.logger.Info("bridge built", "table", opts.TableName, "rows", res.Rows, "stages", len(res.Stages))
	}
	return res, nil
}
