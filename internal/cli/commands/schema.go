package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/starbridge-labs/starbridge/pkg/adapter"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema [table]",
		Short: "Show inferred table schemas",
		Long: `Show the column types the engine inferred when the declared CSVs
were loaded. Without an argument every declared table is shown; with a
table name only that table, which may also be the bridge table.`,
		Example: `  # Show all declared tables
  starbridge schema

  # Show one table
  starbridge schema fact_sales

  # Inspect the bridge table as JSON
  starbridge schema bridge -f json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tableName := ""
			if len(args) > 0 {
				tableName = args[0]
			}
			return runSchema(cmd, tableName, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, csv, md")

	return cmd
}

func runSchema(cmd *cobra.Command, tableName, format string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	if tableName != "" {
		meta, err := cc.Engine.Schema(ctx, tableName)
		if err != nil {
			return err
		}
		return renderSchema(w, meta, format)
	}

	metas, err := cc.Engine.Schemas(ctx)
	if err != nil {
		return err
	}

	if format == "json" {
		docs := make([]schemaDocument, 0, len(metas))
		for _, meta := range metas {
			docs = append(docs, newSchemaDocument(meta))
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	for i, meta := range metas {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		if err := renderSchema(w, meta, format); err != nil {
			return err
		}
	}
	return nil
}

// schemaColumn is the JSON shape of one inferred column.
type schemaColumn struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
}

// schemaDocument is the JSON shape of one table's inferred schema.
type schemaDocument struct {
	Name     string         `json:"name"`
	RowCount int64          `json:"row_count"`
	Columns  []schemaColumn `json:"columns"`
}

func newSchemaDocument(meta *adapter.Metadata) schemaDocument {
	cols := make([]schemaColumn, 0, len(meta.Columns))
	for _, c := range meta.Columns {
		cols = append(cols, schemaColumn{
			Name:       c.Name,
			Type:       c.Type,
			Nullable:   c.Nullable,
			PrimaryKey: c.PrimaryKey,
		})
	}
	return schemaDocument{Name: meta.Name, RowCount: meta.RowCount, Columns: cols}
}

// renderSchema renders one table's inferred schema in the requested format.
func renderSchema(w io.Writer, meta *adapter.Metadata, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newSchemaDocument(meta))
	case "csv", "md", "markdown":
		cols := []string{"column", "type", "nullable", "primary_key"}
		results := make([]map[string]any, 0, len(meta.Columns))
		for _, c := range meta.Columns {
			results = append(results, map[string]any{
				"column":      c.Name,
				"type":        c.Type,
				"nullable":    c.Nullable,
				"primary_key": c.PrimaryKey,
			})
		}
		return renderCollected(w, cols, results, format)
	default:
		return renderSchemaTable(w, meta)
	}
}

func renderSchemaTable(w io.Writer, meta *adapter.Metadata) error {
	_, _ = fmt.Fprintf(w, "Table: %s\n", meta.Name)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Nullable", "Key"})

	for _, c := range meta.Columns {
		nullable := "YES"
		if !c.Nullable {
			nullable = "NO"
		}
		key := ""
		if c.PrimaryKey {
			key = "PK"
		}
		t.AppendRow(table.Row{c.Name, c.Type, nullable, key})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", meta.RowCount)
	return nil
}
