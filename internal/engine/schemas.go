package engine

// schemas.go - inferred-schema inspection

import (
	"context"
	"fmt"

	"github.com/starbridge-labs/starbridge/pkg/adapter"
)

// Schemas returns the inferred metadata of every declared table in
// declaration order, with the declared key column flagged as primary key.
func (e *Engine) Schemas(ctx context.Context) ([]*adapter.Metadata, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	metas := make([]*adapter.Metadata, 0, len(e.schema.Tables))
	for _, t := range e.schema.Tables {
		meta, err := e.db.GetTableMetadata(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect table %s: %w", t.Name, err)
		}
		markDeclaredKey(meta, t.Key)
		metas = append(metas, meta)
	}

	return metas, nil
}

// Schema returns the inferred metadata of a single table. The table does
// not have to be declared, so the bridge table can be inspected too.
func (e *Engine) Schema(ctx context.Context, table string) (*adapter.Metadata, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	meta, err := e.db.GetTableMetadata(ctx, table)
	if err != nil {
		return nil, err
	}
	if t, ok := e.schema.Table(table); ok {
		markDeclaredKey(meta, t.Key)
	}
	return meta, nil
}

// markDeclaredKey flags the declared key column. CSV loads create no real
// constraints, so the flag reflects the declaration, not the engine.
func markDeclaredKey(meta *adapter.Metadata, key string) {
	for i := range meta.Columns {
		if meta.Columns[i].Name == key {
			meta.Columns[i].PrimaryKey = true
			return
		}
	}
}
