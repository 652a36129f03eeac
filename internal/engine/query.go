package engine

// query.go - ad-hoc SQL against the loaded warehouse

import (
	"context"

	"github.com/starbridge-labs/starbridge/pkg/adapter"
)

// Query runs an ad-hoc SQL query against the warehouse.
func (e *Engine) Query(ctx context.Context, query string) (*adapter.Rows, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	e.logger.Debug("executing query", "sql", query)
	return e.db.Query(ctx, query)
}

// Exec runs an ad-hoc SQL statement against the warehouse.
func (e *Engine) Exec(ctx context.Context, stmt string) error {
	if err := e.ensureDBConnected(ctx); err != nil {
		return err
	}

	e.logger.Debug("executing statement", "sql", stmt)
	return e.db.Exec(ctx, stmt)
}
