package repository

import (
	"context"
)

// Open returns the Store selected by driver: "memory" or one of the SQL
// dialects. SQL stores are migrated to the latest schema before use.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	if driver == "memory" {
		return NewMemoryStore(ctx, opts...), nil
	}
	return OpenSQL(ctx, driver, dsn, true)
}
