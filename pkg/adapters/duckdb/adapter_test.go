package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/starbridge-labs/starbridge/pkg/adapter"
	"github.com/starbridge-labs/starbridge/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "warehouse.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
		{
			name: "empty path defaults to memory",
			setupPath: func(_ *testing.T) string {
				return ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			dbPath := tt.setupPath(t)
			require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: dbPath}))
			defer func() { _ = adp.Close() }()

			if tt.verify != nil {
				tt.verify(t, dbPath)
			}
		})
	}
}

func TestAdapter_NotConnected(t *testing.T) {
	tests := []struct {
		name      string
		operation func(ctx context.Context, adp *Adapter) error
	}{
		{
			name: "exec without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.Exec(ctx, "SELECT 1")
			},
		},
		{
			name: "query without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.Query(ctx, "SELECT 1")
				return err
			},
		},
		{
			name: "metadata without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.GetTableMetadata(ctx, "fact_sales")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.operation(context.Background(), New(nil))
			assert.Error(t, err, "expected error when operating without connection")
		})
	}
}

func TestAdapter_Close(t *testing.T) {
	tests := []struct {
		name    string
		connect bool
	}{
		{"close without connect", false},
		{"close after connect", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			if tt.connect {
				require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: ":memory:"}))
			}

			assert.NoError(t, adp.Close())
		})
	}
}

func TestAdapter_GetTableMetadata(t *testing.T) {
	tests := []struct {
		name        string
		setupTable  func(t *testing.T, ctx context.Context, adp *Adapter)
		tableName   string
		wantErr     bool
		wantColumns int
		wantRows    int64
		checkFunc   func(t *testing.T, meta *core.TableMetadata)
	}{
		{
			name: "existing table with data",
			setupTable: func(t *testing.T, ctx context.Context, adp *Adapter) {
				require.NoError(t, adp.Exec(ctx, `
					CREATE TABLE dim_product (
						product_id INTEGER NOT NULL,
						product_name VARCHAR,
						unit_price DOUBLE,
						discontinued BOOLEAN
					)
				`))
				require.NoError(t, adp.Exec(ctx, `
					INSERT INTO dim_product VALUES
						(1, 'Widget', 9.99, false),
						(2, 'Gadget', 19.99, true)
				`))
			},
			tableName:   "dim_product",
			wantColumns: 4,
			wantRows:    2,
			checkFunc: func(t *testing.T, meta *core.TableMetadata) {
				assert.Equal(t, "dim_product", meta.Name)
				assert.Equal(t, "main", meta.Schema)

				expectedTypes := map[string]string{
					"product_id":   "INTEGER",
					"product_name": "VARCHAR",
					"unit_price":   "DOUBLE",
					"discontinued": "BOOLEAN",
				}
				for _, col := range meta.Columns {
					want, ok := expectedTypes[col.Name]
					if !ok {
						t.Errorf("unexpected column: %s", col.Name)
						continue
					}
					assert.Equal(t, want, col.Type, "column %s", col.Name)
				}

				// information_schema order must follow ordinal_position
				for i, col := range meta.Columns {
					assert.Equal(t, i+1, col.Position, "column %s position", col.Name)
				}
				assert.Equal(t, "product_id", meta.Columns[0].Name)
			},
		},
		{
			name:      "nonexistent table",
			tableName: "no_such_table",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: ":memory:"}))
			defer func() { _ = adp.Close() }()

			if tt.setupTable != nil {
				tt.setupTable(t, ctx, adp)
			}

			metadata, err := adp.GetTableMetadata(ctx, tt.tableName)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, metadata.Columns, tt.wantColumns)
			assert.Equal(t, tt.wantRows, metadata.RowCount)

			if tt.checkFunc != nil {
				tt.checkFunc(t, metadata)
			}
		})
	}
}

func TestAdapter_LoadCSV(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: ":memory:"}))
	defer func() { _ = adp.Close() }()

	csvPath := filepath.Join(t.TempDir(), "dim_store.csv")
	csvContent := `store_id,store_name,opened
10,Downtown,2019-03-01
11,Airport,2021-07-15
12,Harbor,2023-11-30`
	require.NoError(t, os.WriteFile(csvPath, []byte(csvContent), 0600))

	require.NoError(t, adp.LoadCSV(ctx, "dim_store", csvPath))

	rows, err := adp.Query(ctx, "SELECT COUNT(*) FROM dim_store")
	require.NoError(t, err)
	var count int
	require.True(t, rows.Next())
	require.NoError(t, rows.Scan(&count))
	require.NoError(t, rows.Close())
	assert.Equal(t, 3, count)

	// Types come from the engine's inference, not from us
	metadata, err := adp.GetTableMetadata(ctx, "dim_store")
	require.NoError(t, err)
	require.Len(t, metadata.Columns, 3)
	assert.Equal(t, "BIGINT", metadata.Columns[0].Type)
	assert.Equal(t, "VARCHAR", metadata.Columns[1].Type)
	assert.Equal(t, "DATE", metadata.Columns[2].Type)
}

func TestAdapter_LoadCSV_Replace(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: ":memory:"}))
	defer func() { _ = adp.Close() }()

	tmpDir := t.TempDir()
	csvPath := filepath.Join(tmpDir, "dim_time.csv")

	require.NoError(t, os.WriteFile(csvPath, []byte("date_id,year\n20240101,2024\n20240102,2024\n"), 0600))
	require.NoError(t, adp.LoadCSV(ctx, "dim_time", csvPath))

	// Reload with fewer rows; the table is replaced, not appended to
	require.NoError(t, os.WriteFile(csvPath, []byte("date_id,year\n20250101,2025\n"), 0600))
	require.NoError(t, adp.LoadCSV(ctx, "dim_time", csvPath))

	metadata, err := adp.GetTableMetadata(ctx, "dim_time")
	require.NoError(t, err)
	assert.Equal(t, int64(1), metadata.RowCount)
}

func TestAdapter_LoadCSV_MissingFile(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: ":memory:"}))
	defer func() { _ = adp.Close() }()

	err := adp.LoadCSV(ctx, "dim_ghost", filepath.Join(t.TempDir(), "dim_ghost.csv"))
	assert.Error(t, err, "loading a missing file should surface the engine error")
}

func TestConnect_WithSettings(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	cfg := core.AdapterConfig{
		Path:    ":memory:",
		Options: map[string]string{"threads": "2"},
	}

	require.NoError(t, adp.Connect(ctx, cfg))
	defer func() { _ = adp.Close() }()

	rows, err := adp.Query(ctx, "SELECT current_setting('threads')")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())

	var threads string
	require.NoError(t, rows.Scan(&threads))
	assert.Equal(t, "2", threads)
}

func TestAdapter_Registry(t *testing.T) {
	factory, ok := adapter.Get("duckdb")
	require.True(t, ok, "duckdb adapter should be registered")

	adp := factory(nil)
	dd, ok := adp.(*Adapter)
	require.True(t, ok, "factory should return *Adapter")
	assert.Equal(t, "duckdb", dd.DialectName())
}
