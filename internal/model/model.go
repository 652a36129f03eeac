// Package model declares the star-schema metadata shared by the loader,
// the bridge generator, and the ERD generator: which tables exist, which
// CSV file feeds each one, which column is the primary key, and the fixed
// relationship edges drawn in the diagram.
//
// The metadata is declared, never discovered. Keys and edges come from the
// author (built-in default or starbridge.yaml), not from the data.
package model

import (
	"fmt"
	"strings"
)

// DefaultCardinality is the Mermaid cardinality used when an edge does not
// declare one: many-to-many, both sides optional.
const DefaultCardinality = "}o--o{"

// Table declares one source table: its name, the primary-key column used
// for bridge rows, and the CSV file that feeds it.
type Table struct {
	Name string `koanf:"name"`
	Key  string `koanf:"key"`

	// File is the CSV path relative to the data directory.
	// Empty means "<name>.csv".
	File string `koanf:"file"`
}

// CSVFile returns the CSV file name feeding this table.
func (t Table) CSVFile() string {
	if t.File != "" {
		return t.File
	}
	return t.Name + ".csv"
}

// Relationship declares one diagram edge between two tables. Edges are
// rendering metadata only; they are never enforced as constraints.
type Relationship struct {
	From       string `koanf:"from"`
	To         string `koanf:"to"`
	FromColumn string `koanf:"from_column"`
	ToColumn   string `koanf:"to_column"`

	// Cardinality is a Mermaid token such as "}o--o{" or "||--o{".
	// Empty means DefaultCardinality.
	Cardinality string `koanf:"cardinality"`
}

// CardinalityOrDefault returns the declared cardinality token, or the
// default when the edge does not declare one.
func (r Relationship) CardinalityOrDefault() string {
	if r.Cardinality != "" {
		return r.Cardinality
	}
	return DefaultCardinality
}

// Label returns the join-column annotation rendered after the edge.
func (r Relationship) Label() string {
	return fmt.Sprintf("%s -> %s", r.FromColumn, r.ToColumn)
}

// Schema is the declarative structure consumed by every component.
// Declaration order is preserved everywhere: load order, union order,
// entity-block order, and edge order all follow it.
type Schema struct {
	Tables        []Table        `koanf:"tables"`
	Relationships []Relationship `koanf:"relationships"`
}

// TableNames returns the declared table names in declaration order.
func (s Schema) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

// Table looks up a declared table by name.
func (s Schema) Table(name string) (Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// Validate checks that the declaration is internally consistent: names and
// keys present and unique, every edge endpoint declared, and cardinality
// tokens drawn from the Mermaid set.
func (s Schema) Validate() error {
	if len(s.Tables) == 0 {
		return fmt.Errorf("no tables declared")
	}

	seen := make(map[string]bool, len(s.Tables))
	for i, t := range s.Tables {
		if t.Name == "" {
			return fmt.Errorf("table %d: name is required", i)
		}
		if t.Key == "" {
			return fmt.Errorf("table %s: key column is required", t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("table %s: declared more than once", t.Name)
		}
		seen[t.Name] = true
	}

	for i, r := range s.Relationships {
		if r.From == "" || r.To == "" {
			return fmt.Errorf("relationship %d: from and to are required", i)
		}
		if !seen[r.From] {
			return fmt.Errorf("relationship %s -> %s: table %s is not declared", r.From, r.To, r.From)
		}
		if !seen[r.To] {
			return fmt.Errorf("relationship %s -> %s: table %s is not declared", r.From, r.To, r.To)
		}
		if r.FromColumn == "" || r.ToColumn == "" {
			return fmt.Errorf("relationship %s -> %s: join columns are required", r.From, r.To)
		}
		if r.Cardinality != "" && !isValidCardinality(r.Cardinality) {
			return fmt.Errorf("relationship %s -> %s: invalid cardinality %q", r.From, r.To, r.Cardinality)
		}
	}

	return nil
}

// Mermaid edge ends: exactly-one, zero-or-one, zero-or-more, one-or-more.
var (
	leftEnds  = map[string]bool{"||": true, "|o": true, "}o": true, "}|": true}
	rightEnds = map[string]bool{"||": true, "o|": true, "o{": true, "|{": true}
)

func isValidCardinality(token string) bool {
	parts := strings.Split(token, "--")
	if len(parts) != 2 {
		return false
	}
	return leftEnds[parts[0]] && rightEnds[parts[1]]
}
