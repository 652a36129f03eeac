// Package erd renders a Mermaid entity-relationship diagram from the
// database's inferred schema and the declared relationship edges.
//
// Entity blocks come from information_schema introspection of the loaded
// tables; the column types are whatever the engine inferred at load time.
// Edges are the hand-declared relationships, drawn as-is: the generator
// never infers relationships from data.
package erd

import (
	"context"
	"fmt"
	"strings"

	"github.com/starbridge-labs/starbridge/internal/model"
	"github.com/starbridge-labs/starbridge/pkg/adapter"
	"github.com/starbridge-labs/starbridge/pkg/core"
)

// DefaultOutputFile is where the diagram is written when none is configured.
const DefaultOutputFile = "er-diagram.mermaid"

// Inspect reads the metadata of every declared table, in declaration
// order. A declared table missing from the database fails immediately,
// before any diagram text exists.
func Inspect(ctx context.Context, db adapter.Adapter, s model.Schema) ([]*core.TableMetadata, error) {
	entities := make([]*core.TableMetadata, 0, len(s.Tables))
	for _, t := range s.Tables {
		meta, err := db.GetTableMetadata(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect table %s: %w", t.Name, err)
		}
		entities = append(entities, meta)
	}
	return entities, nil
}

// Render builds the Mermaid erDiagram text: one entity block per table
// with "type column" field lines, then one relationship line per declared
// edge in the form `from cardinality to : "fromCol -> toCol"`.
func Render(entities []*core.TableMetadata, relationships []model.Relationship) string {
	var b strings.Builder
	b.WriteString("erDiagram\n")

	for _, e := range entities {
		fmt.Fprintf(&b, "  %s {\n", e.Name)
		for _, col := range e.Columns {
			fmt.Fprintf(&b, "    %s %s\n", strings.ToLower(col.Type), col.Name)
		}
		b.WriteString("  }\n")
	}

	for _, r := range relationships {
		fmt.Fprintf(&b, "  %s %s %s : %q\n", r.From, r.CardinalityOrDefault(), r.To, r.Label())
	}

	return b.String()
}

// Generate inspects the declared tables and renders the full diagram.
// Nothing is written anywhere until the whole document exists.
func Generate(ctx context.Context, db adapter.Adapter, s model.Schema) (string, error) {
	entities, err := Inspect(ctx, db, s)
	if err != nil {
		return "", err
	}
	return Render(entities, s.Relationships), nil
}
