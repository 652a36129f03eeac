package engine

// run.go - full pipeline orchestration

import (
	"context"

	"github.com/starbridge-labs/starbridge/internal/bridge"
	"github.com/starbridge-labs/starbridge/internal/state"
)

// RunOptions holds options for the full pipeline.
type RunOptions struct {
	// Force reloads the database even if the file already exists.
	Force bool
}

// RunResult collects the artifacts of a full pipeline run.
type RunResult struct {
	Run    *state.Run
	Load   *LoadReport
	Bridge *bridge.Result
	ERD    *ERDResult
}

// Run executes the full pipeline: load the declared CSVs, build the bridge
// table, and generate the diagram, stopping at the first failure.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	e.logger.Info("starting run", "database", e.databaseLabel())

	run := e.beginRun("run")
	result := &RunResult{Run: run}

	err := e.runPipeline(ctx, opts, run, result)
	e.finishRun(run, err)

	if err != nil {
		e.logger.Info("run failed", "error", err.Error())
		return result, err
	}

	e.logger.Info("run completed",
		"tables", len(result.Load.Tables),
		"bridge_rows", result.Bridge.Rows,
		"erd", result.ERD.Path,
	)
	return result, nil
}

func (e *Engine) runPipeline(ctx context.Context, opts RunOptions, run *state.Run, result *RunResult) error {
	report, err := e.load(ctx, LoadOptions{Force: opts.Force}, run)
	if err != nil {
		return err
	}
	result.Load = report

	bres, err := e.buildBridge(ctx, bridge.Options{TableName: e.bridgeTable})
	if err != nil {
		return err
	}
	result.Bridge = bres

	eres, err := e.generateERD(ctx, "")
	if err != nil {
		return err
	}
	result.ERD = eres

	return nil
}
