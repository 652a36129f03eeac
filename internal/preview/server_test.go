package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starbridge-labs/starbridge/internal/bridge"
	"github.com/starbridge-labs/starbridge/internal/engine"
	"github.com/starbridge-labs/starbridge/internal/model"
	"github.com/starbridge-labs/starbridge/internal/testutil"
	"github.com/starbridge-labs/starbridge/pkg/adapter"

	_ "github.com/starbridge-labs/starbridge/pkg/adapters/duckdb" // register duckdb
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dataDir := t.TempDir()
	writeCSV(t, dataDir, "fact_orders.csv", "order_id,item_id,quantity\n1,10,2\n2,11,1\n3,10,5\n")
	writeCSV(t, dataDir, "dim_item.csv", "item_id,name\n10,Widget\n11,Gadget\n")

	eng, err := engine.New(engine.Config{
		DataDir:       dataDir,
		AdapterConfig: &adapter.Config{Type: "duckdb"},
		StatePath:     ":memory:",
		BridgeTable:   "bridge",
		ERDOutput:     filepath.Join(dataDir, "er-diagram.mermaid"),
		Schema: &model.Schema{
			Tables: []model.Table{
				{Name: "fact_orders", Key: "order_id"},
				{Name: "dim_item", Key: "item_id"},
			},
			Relationships: []model.Relationship{
				{From: "fact_orders", To: "dim_item", FromColumn: "item_id", ToColumn: "item_id", Cardinality: "}o--||"},
			},
		},
		Logger: testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	return NewServer(Config{
		Engine:  eng,
		DataDir: dataDir,
		Logger:  testutil.NewTestLogger(t),
	})
}

func TestNewServer_DefaultAddr(t *testing.T) {
	s := NewServer(Config{})
	assert.Equal(t, DefaultAddr, s.addr)

	s = NewServer(Config{Addr: ":9999"})
	assert.Equal(t, ":9999", s.addr)
}

func TestServer_Index(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.rebuild(context.Background()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "starbridge preview")
	assert.Contains(t, body, "fact_orders")
	assert.Contains(t, body, "(3 rows)")
	assert.Contains(t, body, "dim_item")
	assert.Contains(t, body, "(2 rows)")
	assert.Contains(t, body, "order_id")

	// The page fetches the diagram and subscribes to reload events.
	assert.Contains(t, body, "/erd.mermaid")
	assert.Contains(t, body, "EventSource('/events')")
}

func TestServer_IndexIncludesBridge(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.rebuild(ctx))

	_, err := s.engine.BuildBridge(ctx, bridge.Options{})
	require.NoError(t, err)
	require.NoError(t, s.rebuild(ctx))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "bridge_key")
	assert.Contains(t, body, "stage")
	assert.Contains(t, body, "(5 rows)")
}

func TestServer_Diagram(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.rebuild(context.Background()))

	req := httptest.NewRequest(http.MethodGet, "/erd.mermaid", nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "erDiagram")
	assert.Contains(t, body, `fact_orders }o--|| dim_item : "item_id -> item_id"`)
}

func TestServer_NotFound(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.rebuild(context.Background()))

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Events(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		s.handleEvents(rec, req)
		close(done)
	}()

	// Let the handler subscribe, ping it, then disconnect.
	time.Sleep(100 * time.Millisecond)
	s.notifier.Broadcast()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return after context cancellation")
	}

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "data: connected\n\n")
	assert.Contains(t, body, "data: reload\n\n")
}

func TestServer_RelevantChange(t *testing.T) {
	s := newTestServer(t)

	assert.True(t, s.relevantChange(filepath.Join("data", "fact_orders.csv")))
	assert.False(t, s.relevantChange(filepath.Join("data", "notes.txt")))

	// Without a config file only CSVs count.
	assert.False(t, s.relevantChange("starbridge.yaml"))

	s.configFile = filepath.Join("project", "starbridge.yaml")
	assert.True(t, s.relevantChange(filepath.Join("elsewhere", "starbridge.yaml")))
	assert.False(t, s.relevantChange(filepath.Join("elsewhere", "other.yaml")))
}

func TestServer_RebuildRefreshesDiagram(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.rebuild(ctx))

	s.mu.RLock()
	first := s.diagram
	s.mu.RUnlock()
	require.Contains(t, first, "fact_orders")

	// Another row lands in the CSV; a rebuild picks it up.
	writeCSV(t, s.dataDir, "fact_orders.csv", "order_id,item_id,quantity\n1,10,2\n2,11,1\n3,10,5\n4,11,3\n")
	require.NoError(t, s.rebuild(ctx))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "(4 rows)")
}
