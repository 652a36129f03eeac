package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Query the warehouse",
		Long: `Execute SQL against the loaded warehouse.

Queries run against the declared tables and the bridge table. Supports
multiple output formats for scripting and integration.

When invoked without arguments on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  starbridge query "SELECT stage, COUNT(*) FROM bridge GROUP BY stage"

  # List tables in the warehouse
  starbridge query tables

  # Show schema for a table
  starbridge query schema fact_sales

  # Output as JSON
  starbridge query "SELECT * FROM dim_product" --format json

  # Interactive mode
  starbridge query`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	// Subcommands
	cmd.AddCommand(newQueryTablesCommand(opts))
	cmd.AddCommand(newQuerySchemaCommand(opts))

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	if err := requireDatabase(); err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// Determine SQL source
	var sqlQuery string

	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, cc, opts)
	}

	return executeAndRender(cmd.Context(), cc, cmd.OutOrStdout(), sqlQuery, opts.Format)
}

// requireDatabase fails early when a file-backed database has not been
// loaded yet. Connecting would create an empty file as a side effect.
func requireDatabase() error {
	cfg := getConfig()
	t := cfg.Target
	if t == nil || t.Type != "duckdb" || t.Path == "" || t.Path == ":memory:" {
		return nil
	}
	if _, err := os.Stat(t.Path); os.IsNotExist(err) {
		return fmt.Errorf("database not found at %s (run 'starbridge load' first)", t.Path)
	}
	return nil
}

func executeAndRender(ctx context.Context, cc *CommandContext, w io.Writer, sqlQuery, format string) error {
	rows, err := cc.Engine.Query(ctx, sqlQuery)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return renderResults(w, rows.Rows, format)
}

// listWarehouseTables lists tables in the warehouse's current schema.
// information_schema works on both DuckDB and Postgres.
func listWarehouseTables(ctx context.Context, cc *CommandContext, w io.Writer, format string) error {
	query := `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		ORDER BY table_name
	`
	return executeAndRender(ctx, cc, w, query, format)
}

// newQueryTablesCommand creates the tables subcommand.
func newQueryTablesCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List all tables in the warehouse",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireDatabase(); err != nil {
				return err
			}
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return listWarehouseTables(cmd.Context(), cc, cmd.OutOrStdout(), opts.Format)
		},
	}
}

// newQuerySchemaCommand creates the schema subcommand.
func newQuerySchemaCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show schema for a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDatabase(); err != nil {
				return err
			}
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			meta, err := cc.Engine.Schema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderSchema(cmd.OutOrStdout(), meta, opts.Format)
		},
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
