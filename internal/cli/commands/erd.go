package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/starbridge-labs/starbridge/internal/cli/output"
	"github.com/starbridge-labs/starbridge/internal/engine"
)

// NewERDCommand creates the erd command.
func NewERDCommand() *cobra.Command {
	var outPath string
	var noWrite bool

	cmd := &cobra.Command{
		Use:   "erd",
		Short: "Generate the Mermaid entity-relationship diagram",
		Long: `Generate a Mermaid erDiagram for the declared star schema.

Entity blocks list each table's columns with the types the engine inferred
at load time. Relationship lines come from the declared metadata, never
from discovery, so the diagram shows the schema as designed.

The diagram is printed and written to the configured output file.`,
		Example: `  # Generate the diagram (writes er-diagram.mermaid)
  starbridge erd

  # Write to a different file
  starbridge erd --out docs/schema.mermaid

  # Print without writing the file
  starbridge erd --no-write

  # Diagram as JSON metadata
  starbridge erd --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runERD(cmd, outPath, noWrite)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output file path (defaults to erd_output from config)")
	cmd.Flags().BoolVar(&noWrite, "no-write", false, "Print the diagram without writing the file")

	return cmd
}

func runERD(cmd *cobra.Command, outPath string, noWrite bool) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cc.Renderer

	var res *engine.ERDResult
	if noWrite {
		doc, err := cc.Engine.RenderERD(cmd.Context())
		if err != nil {
			return err
		}
		res = &engine.ERDResult{Document: doc}
	} else {
		res, err = cc.Engine.GenerateERD(cmd.Context(), outPath)
		if err != nil {
			return err
		}
	}

	schema := cc.Engine.Model()

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.ERDOutput{
			Path:          res.Path,
			Entities:      len(schema.Tables),
			Relationships: len(schema.Relationships),
		})
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Entity-Relationship Diagram"))
		r.Println("")
		r.Println(output.FormatCodeBlock("mermaid", res.Document))
		if res.Path != "" {
			r.Println("")
			r.Println(output.FormatKeyValue("Written To", res.Path))
		}
		return nil
	default:
		r.Header(1, "Entity-Relationship Diagram")
		r.Println(res.Document)
		if res.Path != "" {
			r.Success("ERD written to " + res.Path)
		}
		r.Muted(fmt.Sprintf("%d entities, %d relationships", len(schema.Tables), len(schema.Relationships)))
		return nil
	}
}
