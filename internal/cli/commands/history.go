package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/starbridge-labs/starbridge/internal/cli/output"
	"github.com/starbridge-labs/starbridge/internal/state"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs",
		Long: `Show recent runs from the local ledger.

Every load, bridge, erd, and run invocation is recorded with its status
and per-table row counts. The ledger is observational: nothing is ever
replayed from it.`,
		Example: `  # Show the last 20 runs
  starbridge history

  # Show more runs
  starbridge history --limit 50

  # Full run documents as JSON
  starbridge history -f json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit, format)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, csv, md")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int, format string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := cc.Engine.StateStore().ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if format == "json" {
		return historyJSON(cc, runs)
	}

	cols := []string{"id", "command", "database", "status", "started", "duration", "error"}
	results := make([]map[string]any, 0, len(runs))
	for _, run := range runs {
		results = append(results, map[string]any{
			"id":       shortRunID(run.ID),
			"command":  run.Command,
			"database": run.Database,
			"status":   string(run.Status),
			"started":  run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			"duration": runDuration(run),
			"error":    run.Error,
		})
	}

	return renderCollected(cmd.OutOrStdout(), cols, results, format)
}

func historyJSON(cc *CommandContext, runs []*state.Run) error {
	infos := make([]output.RunInfo, 0, len(runs))
	for _, run := range runs {
		info := output.RunInfo{
			ID:        run.ID,
			Command:   run.Command,
			Database:  run.Database,
			Status:    string(run.Status),
			StartedAt: run.StartedAt,
			Error:     run.Error,
		}
		if run.CompletedAt != nil {
			info.CompletedAt = run.CompletedAt
			info.Duration = runDuration(run)
		}

		tables, err := cc.Engine.StateStore().GetRunTables(run.ID)
		if err == nil {
			for _, rt := range tables {
				info.Tables = append(info.Tables, output.RunTableInfo{
					Table:    rt.TableName,
					Rows:     rt.Rows,
					Position: rt.Position,
				})
			}
		}

		infos = append(infos, info)
	}

	return cc.Renderer.JSON(output.HistoryOutput{Runs: infos})
}

// shortRunID truncates a run UUID for table display. JSON output carries
// the full ID.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runDuration(run *state.Run) string {
	if run.CompletedAt == nil {
		return ""
	}
	return run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}
