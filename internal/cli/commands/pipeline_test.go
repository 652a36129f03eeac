package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/starbridge-labs/starbridge/internal/cli/config"
	"github.com/starbridge-labs/starbridge/internal/cli/output"
)

func chdir(t *testing.T, dir string) {
	t.Helper()

	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// setupStarProject creates a two-table star project in a temp directory,
// changes into it, and loads its configuration. JSON output keeps the
// command results machine-checkable.
func setupStarProject(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "starbridge.yaml"), `
data_dir: data
database: data/test.duckdb
output: json

tables:
  - name: fact_orders
    key: order_id
    file: orders.csv
  - name: dim_item
    key: item_id
    file: items.csv

relationships:
  - from: fact_orders
    to: dim_item
    from_column: item_id
    to_column: item_id
    cardinality: "}o--||"
`)
	writeTestFile(t, filepath.Join(dir, "data", "orders.csv"),
		"order_id,item_id,quantity\n1,A1,2\n2,A2,1\n3,A1,5\n")
	writeTestFile(t, filepath.Join(dir, "data", "items.csv"),
		"item_id,item_name\nA1,Widget\nA2,Gadget\n")

	chdir(t, dir)

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	_, err := config.LoadConfig("", nil)
	require.NoError(t, err)
}

func execCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	if args == nil {
		args = []string{}
	}

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())

	err := cmd.Execute()
	return buf.String(), err
}

func TestLoadCommand(t *testing.T) {
	setupStarProject(t)

	out, err := execCommand(t, NewLoadCommand())
	require.NoError(t, err)

	var doc output.LoadOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, 2, doc.Summary.TotalTables)
	assert.Equal(t, int64(5), doc.Summary.TotalRows)
	assert.False(t, doc.Summary.Skipped)

	require.Len(t, doc.Tables, 2)
	assert.Equal(t, "fact_orders", doc.Tables[0].Name, "declaration order is preserved")
	assert.Equal(t, int64(3), doc.Tables[0].Rows)
	assert.Equal(t, "dim_item", doc.Tables[1].Name)
	assert.Equal(t, int64(2), doc.Tables[1].Rows)
}

func TestLoadCommandSkipsExistingDatabase(t *testing.T) {
	setupStarProject(t)

	_, err := execCommand(t, NewLoadCommand())
	require.NoError(t, err)

	out, err := execCommand(t, NewLoadCommand())
	require.NoError(t, err)

	var doc output.LoadOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.True(t, doc.Summary.Skipped, "second load should reuse the existing database")
	assert.Equal(t, int64(5), doc.Summary.TotalRows)

	out, err = execCommand(t, NewLoadCommand(), "--force")
	require.NoError(t, err)

	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.False(t, doc.Summary.Skipped, "--force should reload from scratch")
}

func TestLoadCommandMissingCSV(t *testing.T) {
	setupStarProject(t)
	require.NoError(t, os.Remove(filepath.Join("data", "items.csv")))

	_, err := execCommand(t, NewLoadCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing CSV for table dim_item")

	_, statErr := os.Stat(filepath.Join("data", "test.duckdb"))
	assert.True(t, os.IsNotExist(statErr), "no database should be created when a declared CSV is missing")
}

func TestBridgeCommandDryRun(t *testing.T) {
	setupStarProject(t)

	_, err := execCommand(t, NewLoadCommand())
	require.NoError(t, err)

	out, err := execCommand(t, NewBridgeCommand(), "--dry-run")
	require.NoError(t, err)

	var doc output.BridgeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.True(t, doc.DryRun)
	assert.Contains(t, doc.SQL, "CREATE OR REPLACE TABLE bridge AS")
	assert.Contains(t, doc.SQL, "CAST(order_id AS VARCHAR) AS bridge_key")
	assert.Contains(t, doc.SQL, "UNION ALL")
	assert.Zero(t, doc.Rows)
	assert.Empty(t, doc.Stages)
}

func TestBridgeCommand(t *testing.T) {
	setupStarProject(t)

	_, err := execCommand(t, NewLoadCommand())
	require.NoError(t, err)

	out, err := execCommand(t, NewBridgeCommand())
	require.NoError(t, err)

	var doc output.BridgeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "bridge", doc.Table)
	assert.Equal(t, int64(5), doc.Rows, "bridge rows must equal the sum of source rows")

	require.Len(t, doc.Stages, 2)
	assert.Equal(t, "dim_item", doc.Stages[0].Stage)
	assert.Equal(t, int64(2), doc.Stages[0].Rows)
	assert.Equal(t, "fact_orders", doc.Stages[1].Stage)
	assert.Equal(t, int64(3), doc.Stages[1].Rows)
}

func TestERDCommand(t *testing.T) {
	setupStarProject(t)

	_, err := execCommand(t, NewLoadCommand())
	require.NoError(t, err)

	out, err := execCommand(t, NewERDCommand(), "--out", "custom.mmd")
	require.NoError(t, err)

	var doc output.ERDOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "custom.mmd", doc.Path)
	assert.Equal(t, 2, doc.Entities)
	assert.Equal(t, 1, doc.Relationships)

	content, err := os.ReadFile("custom.mmd")
	require.NoError(t, err)
	assert.Contains(t, string(content), "erDiagram")
	assert.Contains(t, string(content), `fact_orders }o--|| dim_item : "item_id -> item_id"`)
}

func TestERDCommandNoWrite(t *testing.T) {
	setupStarProject(t)

	_, err := execCommand(t, NewLoadCommand())
	require.NoError(t, err)

	out, err := execCommand(t, NewERDCommand(), "--no-write")
	require.NoError(t, err)

	var doc output.ERDOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Empty(t, doc.Path)
	assert.Equal(t, 2, doc.Entities)

	// Nothing was written to the configured output path.
	_, err = os.Stat("er-diagram.mermaid")
	assert.True(t, os.IsNotExist(err))
}

func TestRunCommand(t *testing.T) {
	setupStarProject(t)

	out, err := execCommand(t, NewRunCommand())
	require.NoError(t, err)

	var doc output.RunOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.NotEmpty(t, doc.RunID)

	require.NotNil(t, doc.Load)
	assert.Equal(t, int64(5), doc.Load.Summary.TotalRows)

	require.NotNil(t, doc.Bridge)
	assert.Equal(t, int64(5), doc.Bridge.Rows)

	require.NotNil(t, doc.ERD)
	assert.Equal(t, 2, doc.ERD.Entities)
	content, err := os.ReadFile(doc.ERD.Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "erDiagram")
}

func TestHistoryCommand(t *testing.T) {
	setupStarProject(t)

	_, err := execCommand(t, NewRunCommand())
	require.NoError(t, err)

	out, err := execCommand(t, NewHistoryCommand(), "-f", "json")
	require.NoError(t, err)

	var doc output.HistoryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	require.NotEmpty(t, doc.Runs)
	latest := doc.Runs[0]
	assert.Equal(t, "run", latest.Command)
	assert.Equal(t, "completed", latest.Status)
	assert.NotNil(t, latest.CompletedAt)
	assert.NotEmpty(t, latest.Duration)

	require.Len(t, latest.Tables, 2)
	assert.Equal(t, "fact_orders", latest.Tables[0].Table)
	assert.Equal(t, int64(3), latest.Tables[0].Rows)
}

func TestQueryCommand(t *testing.T) {
	setupStarProject(t)

	_, err := execCommand(t, NewRunCommand())
	require.NoError(t, err)

	out, err := execCommand(t, NewQueryCommand(),
		"SELECT stage, COUNT(*) AS n FROM bridge GROUP BY stage ORDER BY stage", "-f", "csv")
	require.NoError(t, err)

	assert.Contains(t, out, "stage,n")
	assert.Contains(t, out, "dim_item,2")
	assert.Contains(t, out, "fact_orders,3")
}

func TestQueryCommandMissingDatabase(t *testing.T) {
	setupStarProject(t)

	_, err := execCommand(t, NewQueryCommand(), "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not found")
	assert.Contains(t, err.Error(), "starbridge load")
}

func TestQueryTablesSubcommand(t *testing.T) {
	setupStarProject(t)

	_, err := execCommand(t, NewLoadCommand())
	require.NoError(t, err)

	out, err := execCommand(t, NewQueryCommand(), "tables")
	require.NoError(t, err)

	assert.Contains(t, out, "dim_item")
	assert.Contains(t, out, "fact_orders")
	assert.Contains(t, out, "(2 rows)")
}

func TestSchemaCommand(t *testing.T) {
	setupStarProject(t)

	_, err := execCommand(t, NewLoadCommand())
	require.NoError(t, err)

	out, err := execCommand(t, NewSchemaCommand(), "fact_orders", "-f", "json")
	require.NoError(t, err)

	var doc schemaDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "fact_orders", doc.Name)
	assert.Equal(t, int64(3), doc.RowCount)

	names := make([]string, 0, len(doc.Columns))
	for _, c := range doc.Columns {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "order_id")
	assert.Contains(t, names, "item_id")
	assert.Contains(t, names, "quantity")
}

func TestSchemaCommandAllTables(t *testing.T) {
	setupStarProject(t)

	_, err := execCommand(t, NewLoadCommand())
	require.NoError(t, err)

	out, err := execCommand(t, NewSchemaCommand(), "-f", "json")
	require.NoError(t, err)

	var docs []schemaDocument
	require.NoError(t, json.Unmarshal([]byte(out), &docs))

	require.Len(t, docs, 2)
	assert.Equal(t, "fact_orders", docs[0].Name, "declaration order is preserved")
	assert.Equal(t, "dim_item", docs[1].Name)
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	_, err := execCommand(t, NewInitCommand(), "proj")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join("proj", "starbridge.yaml"))
	assert.FileExists(t, filepath.Join("proj", ".gitignore"))
	for _, name := range []string{"fact_sales", "fact_returns", "dim_product", "dim_customer", "dim_store", "dim_time"} {
		assert.FileExists(t, filepath.Join("proj", "data", name+".csv"))
	}

	// Refuses to overwrite without --force
	_, err = execCommand(t, NewInitCommand(), "proj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execCommand(t, NewInitCommand(), "proj", "--force")
	require.NoError(t, err)
}

func TestInitCommandScaffoldRuns(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	_, err := execCommand(t, NewInitCommand())
	require.NoError(t, err)

	// The scaffold must be immediately runnable with the built-in model.
	_, err = config.LoadConfig("", nil)
	require.NoError(t, err)

	out, err := execCommand(t, NewRunCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "Run") // text or markdown mode, not asserting shape

	content, err := os.ReadFile("er-diagram.mermaid")
	require.NoError(t, err)
	assert.Contains(t, string(content), "erDiagram")
	assert.Contains(t, string(content), "fact_sales")
}
