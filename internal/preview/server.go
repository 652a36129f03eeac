// Package preview serves a live browser view of the warehouse: the
// Mermaid ER diagram plus the inferred table catalog, rebuilt whenever
// the source CSVs change.
package preview

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starbridge-labs/starbridge/internal/engine"
	"github.com/starbridge-labs/starbridge/internal/preview/notifier"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":4545"

// Config holds configuration for the preview server.
type Config struct {
	Addr       string
	Engine     *engine.Engine
	DataDir    string
	ConfigFile string
	Logger     *slog.Logger
}

// Server serves the ER diagram and catalog over HTTP and pushes reload
// events to connected pages when the source data changes.
type Server struct {
	addr       string
	engine     *engine.Engine
	dataDir    string
	configFile string
	logger     *slog.Logger
	notifier   *notifier.Notifier

	mu      sync.RWMutex
	page    []byte
	diagram string
}

// NewServer creates a new preview server instance.
func NewServer(cfg Config) *Server {
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	return &Server{
		addr:       addr,
		engine:     cfg.Engine,
		dataDir:    cfg.DataDir,
		configFile: cfg.ConfigFile,
		logger:     cfg.Logger,
		notifier:   notifier.New(),
	}
}

// Serve builds the initial view and blocks until the context is
// cancelled or a SIGINT/SIGTERM arrives.
func (s *Server) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.rebuild(ctx); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start file watcher
	eg.Go(func() error {
		return s.watchFiles(egctx)
	})

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down preview server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// routes wires the preview endpoints onto a chi mux.
func (s *Server) routes() *chi.Mux {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/", s.handleIndex)
	r.Get("/erd.mermaid", s.handleDiagram)
	r.Get("/events", s.handleEvents)

	return r
}

// rebuild reloads the declared CSVs, regenerates the diagram, and
// re-renders the page from the refreshed catalog.
func (s *Server) rebuild(ctx context.Context) error {
	if _, err := s.engine.Load(ctx, engine.LoadOptions{}); err != nil {
		return fmt.Errorf("failed to load tables: %w", err)
	}

	erd, err := s.engine.GenerateERD(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to generate ERD: %w", err)
	}

	metas, err := s.engine.Schemas(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect tables: %w", err)
	}

	data := pageData{
		Title:       "starbridge preview",
		DataDir:     s.dataDir,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Tables:      make([]tableView, 0, len(metas)+1),
	}
	for _, meta := range metas {
		data.Tables = append(data.Tables, newTableView(meta.Name, meta.RowCount, meta.Columns))
	}

	// The bridge table shows up in the catalog once it has been built.
	if meta, err := s.engine.Schema(ctx, s.engine.BridgeTable()); err == nil && len(meta.Columns) > 0 {
		data.Tables = append(data.Tables, newTableView(meta.Name, meta.RowCount, meta.Columns))
	}

	page, err := renderPage(data)
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	s.mu.Lock()
	s.page = page
	s.diagram = erd.Document
	s.mu.Unlock()

	s.logger.Debug("preview rebuilt", "tables", len(data.Tables))
	return nil
}

// handleIndex serves the rendered preview page.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	page := s.page
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write(page)
}

// handleDiagram serves the raw Mermaid document.
func (s *Server) handleDiagram(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	diagram := s.diagram
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(diagram))
}

// handleEvents streams reload pings to the page over SSE.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	ch := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(ch)

	_, _ = fmt.Fprint(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			_, _ = fmt.Fprint(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}

// watchFiles watches the data directory and the config file for changes.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, s.dataDir); err != nil {
		s.logger.Error("failed to watch data directory", "error", err)
		// Don't fail - continue without live reload
	}
	if s.configFile != "" {
		// Watch the parent directory; editors replace files on save.
		if err := watcher.Add(filepath.Dir(s.configFile)); err != nil {
			s.logger.Error("failed to watch config file", "error", err)
		}
	}

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !s.relevantChange(event.Name) {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("change detected", "file", filepath.Base(event.Name))

				if err := s.rebuild(ctx); err != nil {
					s.logger.Error("rebuild failed", "error", err)
					return
				}

				// Notify all SSE clients
				s.notifier.Broadcast()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// relevantChange reports whether a changed path should trigger a
// rebuild. Config edits reload the data too, but schema changes take
// effect only after a restart.
func (s *Server) relevantChange(name string) bool {
	if filepath.Ext(name) == ".csv" {
		return true
	}
	return s.configFile != "" && filepath.Base(name) == filepath.Base(s.configFile)
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
