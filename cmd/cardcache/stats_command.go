package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cardcache/internal/cardcache"
	"cardcache/internal/config"
)

type statsRow struct {
	Table string `json:"table"`
	Count int    `json:"count"`
	Lazy  bool   `json:"lazy"`
}

type statsOutput struct {
	Backend     string     `json:"backend"`
	StoreBytes  int64      `json:"store_bytes,omitempty"`
	LastCleanup string     `json:"last_cleanup,omitempty"`
	Tables      []statsRow `json:"tables"`
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts per cache table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withEngine(cmd, false, func(_ context.Context, engine *cardcache.Engine) error {
				stats := engine.Stats()
				out := statsOutput{Backend: cfg.Storage.Backend, StoreBytes: storeSize(cfg)}
				if !stats.LastCleanup.IsZero() {
					out.LastCleanup = stats.LastCleanup.UTC().Format("2006-01-02T15:04:05Z")
				}
				for _, row := range stats.Tables() {
					out.Tables = append(out.Tables, statsRow{Table: row.Name, Count: row.Count, Lazy: row.Lazy})
				}
				if jsonOut {
					return writeJSON(cmd, out)
				}

				w := cmd.OutOrStdout()
				rows := make([][]string, 0, len(out.Tables))
				for _, row := range out.Tables {
					count := humanize.Comma(int64(row.Count))
					if row.Lazy {
						count += " loaded"
					}
					rows = append(rows, []string{row.Table, count, yesNo(row.Lazy)})
				}
				fmt.Fprintln(w, renderTable(w, []string{"Table", "Records", "Lazy"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
				fmt.Fprintf(w, "Backend: %s", cfg.Storage.Backend)
				if out.StoreBytes > 0 {
					fmt.Fprintf(w, " (%s)", humanize.Bytes(uint64(out.StoreBytes)))
				}
				fmt.Fprintln(w)
				if stats.LastCleanup.IsZero() {
					fmt.Fprintln(w, "Last cleanup: never")
				} else {
					fmt.Fprintf(w, "Last cleanup: %s\n", humanize.Time(stats.LastCleanup))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// storeSize reports the on-disk size of the backing store, or 0 when unknown.
func storeSize(cfg *config.Config) int64 {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		info, err := os.Stat(cfg.Storage.SQLiteFile)
		if err != nil {
			return 0
		}
		return info.Size()
	case config.BackendFile:
		entries, err := os.ReadDir(cfg.Storage.FileDir)
		if err != nil {
			return 0
		}
		var total int64
		for _, entry := range entries {
			if info, err := entry.Info(); err == nil && !info.IsDir() {
				total += info.Size()
			}
		}
		return total
	default:
		return 0
	}
}
