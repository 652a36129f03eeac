package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/starbridge-labs/starbridge/internal/bridge"
	"github.com/starbridge-labs/starbridge/internal/cli/output"
)

// NewBridgeCommand creates the bridge command.
func NewBridgeCommand() *cobra.Command {
	var tableName string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Build the Puppini bridge table",
		Long: `Generate and execute the Puppini bridge statement.

The bridge unions the primary key of every declared table, cast to VARCHAR,
tagged with the table name as its stage. The statement is a single
CREATE OR REPLACE TABLE, so rebuilding is idempotent: either the whole
union succeeds or the previous bridge table is left untouched.

The generated statement is always printed. Use --dry-run to print it
without executing.`,
		Example: `  # Build the bridge table
  starbridge bridge

  # Print the statement without executing it
  starbridge bridge --dry-run

  # Build under a different table name
  starbridge bridge --table _bridge`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBridge(cmd, tableName, dryRun)
		},
	}

	cmd.Flags().StringVar(&tableName, "table", "", "Bridge table name (defaults to bridge_table from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the generated statement without executing it")

	return cmd
}

func runBridge(cmd *cobra.Command, tableName string, dryRun bool) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cc.Renderer

	res, err := cc.Engine.BuildBridge(cmd.Context(), bridge.Options{
		TableName: tableName,
		DryRun:    dryRun,
	})
	if err != nil {
		return err
	}

	if tableName == "" {
		tableName = cc.Engine.BridgeTable()
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return bridgeJSON(r, tableName, res, dryRun)
	case output.ModeMarkdown:
		return bridgeMarkdown(r, tableName, res, dryRun)
	default:
		return bridgeText(r, tableName, res, dryRun)
	}
}

// bridgeText outputs the bridge result in styled text format.
func bridgeText(r *output.Renderer, tableName string, res *bridge.Result, dryRun bool) error {
	r.Header(1, "Bridge")
	r.Println(res.SQL)
	r.Println("")

	if dryRun {
		r.Muted("Dry run: statement not executed")
		return nil
	}

	r.Header(2, "Stages")
	for _, sc := range res.Stages {
		r.StatusLine(sc.Stage, "success", fmt.Sprintf("%d rows", sc.Rows))
	}

	r.Println("")
	r.Success(fmt.Sprintf("Bridge table %s built (%d rows)", tableName, res.Rows))
	return nil
}

// bridgeMarkdown outputs the bridge result in markdown format.
func bridgeMarkdown(r *output.Renderer, tableName string, res *bridge.Result, dryRun bool) error {
	r.Println(output.FormatHeader(1, "Bridge"))
	r.Println("")
	r.Println(output.FormatCodeBlock("sql", res.SQL))
	r.Println("")

	if dryRun {
		r.Println("Dry run: statement not executed.")
		return nil
	}

	r.Println(output.FormatKeyValue("Table", tableName))
	r.Printf("**Rows:** %d\n", res.Rows)
	r.Println("")

	for _, sc := range res.Stages {
		r.Printf("- %s: %d rows\n", sc.Stage, sc.Rows)
	}
	return nil
}

// bridgeJSON outputs the bridge result in JSON format.
func bridgeJSON(r *output.Renderer, tableName string, res *bridge.Result, dryRun bool) error {
	stages := make([]output.StageInfo, 0, len(res.Stages))
	for _, sc := range res.Stages {
		stages = append(stages, output.StageInfo{Stage: sc.Stage, Rows: sc.Rows})
	}

	return r.JSON(output.BridgeOutput{
		Table:  tableName,
		SQL:    res.SQL,
		DryRun: dryRun,
		Rows:   res.Rows,
		Stages: stages,
	})
}
