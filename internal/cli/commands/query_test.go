package commands

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory SQLite database shaped like a small
// bridge table. The render helpers only see *sql.Rows, so any driver works.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE bridge (bridge_key TEXT, stage TEXT)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO bridge (bridge_key, stage) VALUES
		('1001', 'fact_sales'),
		('P001', 'dim_product'),
		(NULL, 'dim_store')`)
	require.NoError(t, err)

	return db
}

func queryTestRows(t *testing.T, db *sql.DB, query string) *sql.Rows {
	t.Helper()

	rows, err := db.Query(query)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rows.Close() })
	return rows
}

func TestRenderResultsTable(t *testing.T) {
	db := setupTestDB(t)
	rows := queryTestRows(t, db, "SELECT bridge_key, stage FROM bridge ORDER BY stage")

	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, rows, "table"))

	out := buf.String()
	assert.Contains(t, out, "BRIDGE_KEY") // go-pretty upcases headers
	assert.Contains(t, out, "1001")
	assert.Contains(t, out, "fact_sales")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(3 rows)")
}

func TestRenderResultsTableEmpty(t *testing.T) {
	db := setupTestDB(t)
	rows := queryTestRows(t, db, "SELECT bridge_key, stage FROM bridge WHERE 1=0")

	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, rows, "table"))

	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestRenderResultsJSON(t *testing.T) {
	db := setupTestDB(t)
	rows := queryTestRows(t, db, "SELECT bridge_key, stage FROM bridge ORDER BY stage")

	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, rows, "json"))

	var results []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &results))
	require.Len(t, results, 3)

	assert.Equal(t, "dim_product", results[0]["stage"])
	assert.Equal(t, "P001", results[0]["bridge_key"])
	assert.Nil(t, results[1]["bridge_key"], "NULL should be JSON null")
}

func TestRenderResultsCSV(t *testing.T) {
	db := setupTestDB(t)
	rows := queryTestRows(t, db, "SELECT bridge_key, stage FROM bridge ORDER BY stage")

	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, rows, "csv"))

	out := buf.String()
	assert.Contains(t, out, "bridge_key,stage")
	assert.Contains(t, out, "P001,dim_product")
	assert.Contains(t, out, "NULL,dim_store")
	assert.Contains(t, out, "1001,fact_sales")
}

func TestRenderResultsMarkdown(t *testing.T) {
	db := setupTestDB(t)
	rows := queryTestRows(t, db, "SELECT bridge_key, stage FROM bridge ORDER BY stage")

	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, rows, "md"))

	out := buf.String()
	assert.Contains(t, out, "| bridge_key | stage |")
	assert.Contains(t, out, "| --- | --- |")
	assert.Contains(t, out, "| P001 | dim_product |")
}

func TestCollectRows(t *testing.T) {
	db := setupTestDB(t)
	rows := queryTestRows(t, db, "SELECT bridge_key, stage FROM bridge ORDER BY stage")

	cols, results, err := collectRows(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"bridge_key", "stage"}, cols)
	require.Len(t, results, 3)
	assert.Equal(t, "dim_product", results[0]["stage"])
	assert.Nil(t, results[1]["bridge_key"])
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"string", "fact_sales", "fact_sales"},
		{"int64", int64(42), "42"},
		{"float", 3.14, "3.14"},
		{"bool", true, "true"},
		{"date at midnight", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "2024-01-15"},
		{"timestamp", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), "2024-01-15 10:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.in))
		})
	}
}

func TestEscapeCSV(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "fact_sales", "fact_sales"},
		{"comma", "a,b", `"a,b"`},
		{"quote", `say "hi"`, `"say ""hi"""`},
		{"newline", "line1\nline2", "\"line1\nline2\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeCSV(tt.in))
		})
	}
}
