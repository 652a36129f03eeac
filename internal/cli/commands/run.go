package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/starbridge-labs/starbridge/internal/cli/output"
	"github.com/starbridge-labs/starbridge/internal/engine"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load tables, build the bridge, and generate the ERD",
		Long: `Execute the full pipeline: load every declared CSV into the warehouse,
build the Puppini bridge table, and generate the Mermaid diagram.

The pipeline stops at the first failure. Each run is recorded in the
local ledger; see 'starbridge history'.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # Run the full pipeline
  starbridge run

  # Reload the database from scratch first
  starbridge run --force

  # Run with JSON output
  starbridge run --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove an existing database and reload from scratch")

	return cmd
}

func runPipeline(cmd *cobra.Command, force bool) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cc.Renderer
	effectiveMode := r.EffectiveMode()

	var spinner *output.Spinner
	if effectiveMode == output.ModeText {
		spinner = r.NewSpinner("Running pipeline...")
		spinner.Start()
	}

	start := time.Now()
	res, err := cc.Engine.Run(cmd.Context(), engine.RunOptions{Force: force})
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		if spinner != nil {
			spinner.Fail("Pipeline failed")
		}
		return err
	}

	if spinner != nil {
		spinner.Success(fmt.Sprintf("Pipeline completed in %s", elapsed))
	}

	switch effectiveMode {
	case output.ModeJSON:
		return runJSON(cc, res)
	case output.ModeMarkdown:
		return runMarkdown(r, res, elapsed)
	default:
		return runText(r, res, elapsed)
	}
}

// runText outputs pipeline results in styled text format.
func runText(r *output.Renderer, res *engine.RunResult, elapsed time.Duration) error {
	r.Println("")
	r.Header(2, "Pipeline")

	loadDetail := fmt.Sprintf("%d tables, %d rows", len(res.Load.Tables), totalRows(res.Load))
	if res.Load.Skipped {
		loadDetail += ", existing database reused"
	}
	r.StatusLine("load", "success", loadDetail)
	r.StatusLine("bridge", "success", fmt.Sprintf("%d rows", res.Bridge.Rows))
	r.StatusLine("erd", "success", res.ERD.Path)

	r.Println("")
	if res.Run != nil {
		r.Success(fmt.Sprintf("Run %s completed in %s", res.Run.ID, elapsed))
	} else {
		r.Success(fmt.Sprintf("Run completed in %s", elapsed))
	}
	return nil
}

// runMarkdown outputs pipeline results in markdown format.
func runMarkdown(r *output.Renderer, res *engine.RunResult, elapsed time.Duration) error {
	r.Println(output.FormatHeader(1, "Pipeline Run"))
	r.Println("")

	if res.Run != nil {
		r.Println(output.FormatKeyValue("Run ID", res.Run.ID))
	}
	r.Println(output.FormatKeyValue("Duration", elapsed.String()))
	r.Println("")

	r.Println(output.FormatHeader(2, "Load"))
	for _, t := range res.Load.Tables {
		r.Printf("- %s: %d rows\n", t.Table, t.Rows)
	}
	r.Println("")

	r.Println(output.FormatHeader(2, "Bridge"))
	r.Printf("**Rows:** %d\n", res.Bridge.Rows)
	for _, sc := range res.Bridge.Stages {
		r.Printf("- %s: %d rows\n", sc.Stage, sc.Rows)
	}
	r.Println("")

	r.Println(output.FormatHeader(2, "ERD"))
	r.Println(output.FormatKeyValue("Written To", res.ERD.Path))
	return nil
}

// runJSON outputs pipeline results in JSON format.
func runJSON(cc *CommandContext, res *engine.RunResult) error {
	tables := make([]output.LoadTableInfo, 0, len(res.Load.Tables))
	for _, t := range res.Load.Tables {
		tables = append(tables, output.LoadTableInfo{Name: t.Table, File: t.File, Rows: t.Rows})
	}

	stages := make([]output.StageInfo, 0, len(res.Bridge.Stages))
	for _, sc := range res.Bridge.Stages {
		stages = append(stages, output.StageInfo{Stage: sc.Stage, Rows: sc.Rows})
	}

	schema := cc.Engine.Model()
	doc := output.RunOutput{
		Load: &output.LoadOutput{
			Tables: tables,
			Summary: output.LoadSummary{
				TotalTables: len(tables),
				TotalRows:   totalRows(res.Load),
				Skipped:     res.Load.Skipped,
			},
		},
		Bridge: &output.BridgeOutput{
			Table:  cc.Engine.BridgeTable(),
			SQL:    res.Bridge.SQL,
			Rows:   res.Bridge.Rows,
			Stages: stages,
		},
		ERD: &output.ERDOutput{
			Path:          res.ERD.Path,
			Entities:      len(schema.Tables),
			Relationships: len(schema.Relationships),
		},
	}
	if res.Run != nil {
		doc.RunID = res.Run.ID
	}

	return cc.Renderer.JSON(doc)
}
