package engine

// erd.go - entity-relationship diagram generation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starbridge-labs/starbridge/internal/erd"
)

// ERDResult holds the rendered diagram and where it was written.
type ERDResult struct {
	Document string
	Path     string
}

// GenerateERD inspects the loaded tables, renders the Mermaid diagram, and
// writes it to outPath (the configured default when empty). The document is
// rendered in full before the file is written.
func (e *Engine) GenerateERD(ctx context.Context, outPath string) (*ERDResult, error) {
	run := e.beginRun("erd")
	res, err := e.generateERD(ctx, outPath)
	e.finishRun(run, err)
	return res, err
}

// RenderERD renders the Mermaid document without writing it anywhere.
// Render-only calls are not recorded in the ledger.
func (e *Engine) RenderERD(ctx context.Context) (string, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return "", err
	}
	return erd.Generate(ctx, e.db, e.schema)
}

func (e *Engine) generateERD(ctx context.Context, outPath string) (*ERDResult, error) {
	if outPath == "" {
		outPath = e.erdOutput
	}

	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	e.logger.Info("generating ERD", "output", outPath)

	doc, err := erd.Generate(ctx, e.db, e.schema)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, []byte(doc), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write ERD file: %w", err)
	}

	e.logger.Info("ERD written", "path", outPath, "bytes", len(doc))
	return &ERDResult{Document: doc, Path: outPath}, nil
}
