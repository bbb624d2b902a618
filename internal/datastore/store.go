// Package datastore writes rows to a local SQLite file or a remote Datasette
// instance.
package datastore

import "context"

// Store appends rows to a table. Implementations are not safe for
// concurrent writers; callers serialize writes.
type Store interface {
	// Connect opens or validates the target.
	Connect(ctx context.Context) error

	// CreateTable applies schema. Remote stores create tables on first insert.
	CreateTable(ctx context.Context, schema string) error

	// BatchInsert appends records to database/table. database is ignored by
	// single-file stores.
	BatchInsert(ctx context.Context, database, table string, records []map[string]any) error

	Close() error
}
