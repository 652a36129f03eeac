package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/starbridge-labs/starbridge/internal/cli/output"
	"github.com/starbridge-labs/starbridge/internal/engine"
)

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load declared CSV files into the warehouse",
		Long: `Load every declared CSV file from the data directory into the warehouse.

Each table is created from its CSV with engine-native type inference and
replace semantics, in declaration order. All declared files are checked
before any table is created, so a missing file never leaves a partial
database behind.

If the database file already exists the load is skipped; use --force to
drop it and reload from scratch.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # Load all declared tables (auto-detect output format)
  starbridge load

  # Reload even if the database already exists
  starbridge load --force

  # Load with JSON output
  starbridge load --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove an existing database and reload from scratch")

	return cmd
}

func runLoad(cmd *cobra.Command, force bool) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cc.Renderer
	effectiveMode := r.EffectiveMode()

	// Show spinner for TTY mode
	var spinner *output.Spinner
	if effectiveMode == output.ModeText {
		spinner = r.NewSpinner("Loading declared tables...")
		spinner.Start()
	}

	report, err := cc.Engine.Load(cmd.Context(), engine.LoadOptions{Force: force})
	if err != nil {
		if spinner != nil {
			spinner.Fail("Failed to load tables")
		}
		return err
	}

	if spinner != nil {
		if report.Skipped {
			spinner.Success("Existing database reused")
		} else {
			spinner.Success(fmt.Sprintf("Loaded %d tables", len(report.Tables)))
		}
	}

	// Output based on mode
	switch effectiveMode {
	case output.ModeJSON:
		return loadJSON(r, report)
	case output.ModeMarkdown:
		return loadMarkdown(r, cc.Cfg.DataDir, report)
	default:
		return loadText(r, cc.Cfg.DataDir, report)
	}
}

func totalRows(report *engine.LoadReport) int64 {
	var total int64
	for _, t := range report.Tables {
		total += t.Rows
	}
	return total
}

// loadText outputs load results in styled text format.
func loadText(r *output.Renderer, dataDir string, report *engine.LoadReport) error {
	r.Println("")
	if report.Skipped {
		r.Header(2, "Existing Tables")
	} else {
		r.Header(2, "Loaded Tables")
	}

	for _, t := range report.Tables {
		r.StatusLine(t.Table, "success", fmt.Sprintf("%d rows", t.Rows))
	}

	r.Println("")
	r.Muted(fmt.Sprintf("Source: %s (%d rows total)", dataDir, totalRows(report)))
	if report.Skipped {
		r.Warning("Database already existed; counts reflect its current contents. Use --force to reload.")
	}
	return nil
}

// loadMarkdown outputs load results in markdown format.
func loadMarkdown(r *output.Renderer, dataDir string, report *engine.LoadReport) error {
	r.Println(output.FormatHeader(1, "Tables Loaded"))
	r.Println("")

	for _, t := range report.Tables {
		r.Println(output.FormatKeyValue("Table", t.Table))
		r.Println(output.FormatKeyValue("File", t.File))
		r.Println(output.FormatKeyValue("Rows", fmt.Sprintf("%d", t.Rows)))
		r.Println("")
	}

	r.Println(output.FormatKeyValue("Source Directory", dataDir))
	r.Printf("**Total Tables:** %d\n", len(report.Tables))
	r.Printf("**Total Rows:** %d\n", totalRows(report))
	if report.Skipped {
		r.Println("")
		r.Println("Existing database reused; run with `--force` to reload.")
	}
	return nil
}

// loadJSON outputs load results in JSON format.
func loadJSON(r *output.Renderer, report *engine.LoadReport) error {
	tables := make([]output.LoadTableInfo, 0, len(report.Tables))
	for _, t := range report.Tables {
		tables = append(tables, output.LoadTableInfo{
			Name: t.Table,
			File: t.File,
			Rows: t.Rows,
		})
	}

	return r.JSON(output.LoadOutput{
		Tables: tables,
		Summary: output.LoadSummary{
			TotalTables: len(tables),
			TotalRows:   totalRows(report),
			Skipped:     report.Skipped,
		},
	})
}
