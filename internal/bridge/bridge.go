// Package bridge generates and executes the Puppini Bridge statement: one
// SELECT per declared table casting its primary key to VARCHAR and tagging
// it with the table name, concatenated with UNION ALL and wrapped in a
// CREATE OR REPLACE TABLE.
//
// Generation is pure string assembly over the declared metadata, so the
// statement can be inspected (or dry-run) without a database. Execution is
// a single engine-level replace: either the whole union succeeds or the
// previous bridge table is left untouched.
package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/starbridge-labs/starbridge/internal/model"
	"github.com/starbridge-labs/starbridge/pkg/adapter"
)

// DefaultTableName is the bridge table created when none is configured.
const DefaultTableName = "bridge"

// Options controls Build.
type Options struct {
	// TableName overrides the bridge table name. Empty means DefaultTableName.
	TableName string

	// DryRun generates the statement without executing it.
	DryRun bool
}

// StageCount is the per-source row count read back after execution.
type StageCount struct {
	Stage string
	Rows  int64
}

// Result reports a bridge build: the statement, the total row count, and
// the per-stage breakdown. Rows and Stages are zero for dry runs.
type Result struct {
	SQL    string
	Rows   int64
	Stages []StageCount
}

// SelectClause returns the SELECT for one table: the key column cast to
// VARCHAR as bridge_key, and the table name as the stage label.
func SelectClause(t model.Table) string {
	return fmt.Sprintf("SELECT CAST(%s AS VARCHAR) AS bridge_key, '%s' AS stage FROM %s",
		t.Key, strings.ReplaceAll(t.Name, "'", "''"), t.Name)
}

// UnionSQL concatenates one SelectClause per declared table with UNION ALL,
// in declaration order. A bridge over zero tables is an error.
func UnionSQL(s model.Schema) (string, error) {
	if len(s.Tables) == 0 {
		return "", fmt.Errorf("no tables declared for bridge")
	}

	clauses := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		clauses[i] = SelectClause(t)
	}
	return strings.Join(clauses, "\nUNION ALL\n"), nil
}

// CreateSQL wraps the union in a CREATE OR REPLACE TABLE statement.
func CreateSQL(s model.Schema, tableName string) (string, error) {
	if tableName == "" {
		tableName = DefaultTableName
	}

	union, err := UnionSQL(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE OR REPLACE TABLE %s AS\n%s", tableName, union), nil
}

// Build generates the bridge statement and executes it against the
// database, then reads back the total and per-stage row counts. The
// resulting table has exactly one row per source row, duplicates
// included, so the total equals the sum of the source row counts.
func Build(ctx context.Context, db adapter.Adapter, s model.Schema, opts Options) (*Result, error) {
	tableName := opts.TableName
	if tableName == "" {
		tableName = DefaultTableName
	}

	sql, err := CreateSQL(s, tableName)
	if err != nil {
		return nil, err
	}

	res := &Result{SQL: sql}
	if opts.DryRun {
		return res, nil
	}

	if err := db.Exec(ctx, sql); err != nil {
		return nil, fmt.Errorf("failed to create bridge table: %w", err)
	}

	stages, total, err := readStageCounts(ctx, db, tableName)
	if err != nil {
		return nil, err
	}
	res.Stages = stages
	res.Rows = total

	return res, nil
}

// readStageCounts reads the per-stage row counts from the bridge table.
func readStageCounts(ctx context.Context, db adapter.Adapter, tableName string) ([]StageCount, int64, error) {
	query := fmt.Sprintf("SELECT stage, COUNT(*) FROM %s GROUP BY stage ORDER BY stage", tableName)
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bridge rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		stages []StageCount
		total  int64
	)
	for rows.Next() {
		var sc StageCount
		if err := rows.Scan(&sc.Stage, &sc.Rows); err != nil {
			return nil, 0, fmt.Errorf("failed to scan stage count: %w", err)
		}
		stages = append(stages, sc)
		total += sc.Rows
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating stage counts: %w", err)
	}

	return stages, total, nil
}
