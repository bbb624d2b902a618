package cmdutil

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/lepinkainen/partly/internal/datastore"
)

// DatabaseName is the database rows are written to on a remote Datasette.
const DatabaseName = "partly"

// OpenStore returns the store selected by history.mode: a local SQLite file
// (history.dbfile) or a remote Datasette (history.remote_url).
func OpenStore() (datastore.Store, error) {
	switch mode := viper.GetString("history.mode"); mode {
	case "", "local":
		dbFile := viper.GetString("history.dbfile")
		if dbFile == "" {
			return nil, fmt.Errorf("history.dbfile is not set")
		}
		return datastore.NewSQLiteStore(dbFile), nil
	case "remote":
		remoteURL := viper.GetString("history.remote_url")
		if remoteURL == "" {
			return nil, fmt.Errorf("history.remote_url is not set")
		}
		return datastore.NewDatasetteClient(remoteURL, viper.GetString("history.api_token")), nil
	default:
		return nil, fmt.Errorf("unknown history mode %q", mode)
	}
}

// WriteToDatastore converts items with toMap and inserts them into table.
// It does nothing unless history.enabled is set.
func WriteToDatastore[T any](ctx context.Context, items []T, schema, table, description string, toMap func(T) map[string]any) error {
	if !viper.GetBool("history.enabled") {
		slog.Debug("History disabled, skipping write", "table", table)
		return nil
	}
	if len(items) == 0 {
		return nil
	}

	store, err := OpenStore()
	if err != nil {
		return err
	}
	if err := store.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to datastore: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateTable(ctx, schema); err != nil {
		return fmt.Errorf("failed to create %s table: %w", table, err)
	}

	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		records = append(records, toMap(item))
	}

	if err := store.BatchInsert(ctx, DatabaseName, table, records); err != nil {
		return fmt.Errorf("failed to insert %s: %w", description, err)
	}

	slog.Debug("Wrote rows to datastore", "table", table, "count", len(records), "description", description)
	return nil
}
