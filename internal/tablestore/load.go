package tablestore

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"cardcache/internal/kvstore"
	"cardcache/internal/logging"
)

// LoadAll reads every bulk table from store concurrently. A missing blob
// leaves the table empty. A malformed blob also leaves it empty and is
// logged, never returned. Store failures are returned and leave every table
// untouched.
func LoadAll(ctx context.Context, store kvstore.Store, logger *slog.Logger, tables ...Bulk) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	blobs := make([][]byte, len(tables))
	found := make([]bool, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	for i, table := range tables {
		g.Go(func() error {
			data, ok, err := store.Get(gctx, table.StoreKey())
			if err != nil {
				return fmt.Errorf("load %s: %w", table.Name(), err)
			}
			blobs[i], found[i] = data, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, table := range tables {
		if !found[i] {
			table.Reset()
			continue
		}
		if err := table.Decode(blobs[i]); err != nil {
			table.Reset()
			logging.WarnWithContext(logger, "cache table unreadable; starting empty", "cache_table_malformed",
				logging.String(logging.FieldTable, table.Name()),
				logging.String("key", table.StoreKey()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "entries are refetched from upstream as they are used"),
				logging.String(logging.FieldImpact, "previously cached entries in this table are dropped"),
			)
			continue
		}
		logger.Debug("cache table loaded",
			logging.String(logging.FieldTable, table.Name()),
			logging.Int("bytes", len(blobs[i])),
		)
	}
	return nil
}

// SaveAll writes every bulk table back with a single SetMany.
func SaveAll(ctx context.Context, store kvstore.Store, tables ...Bulk) error {
	items := make(map[string][]byte, len(tables))
	for _, table := range tables {
		data, err := table.Encode()
		if err != nil {
			return err
		}
		items[table.StoreKey()] = data
	}
	if err := store.SetMany(ctx, items); err != nil {
		return fmt.Errorf("save tables: %w", err)
	}
	return nil
}
