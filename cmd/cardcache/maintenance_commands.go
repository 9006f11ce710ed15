package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cardcache/internal/cardcache"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Run the cleanup sweep",
		Long: "Drop recency records of unused cards, detail text of cards that are no longer\n" +
			"actively used and FAQ entries that were not opened recently. Without --force the\n" +
			"sweep only runs when the cleanup interval has elapsed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, false, func(ctx context.Context, engine *cardcache.Engine) error {
				out := cmd.OutOrStdout()
				if report, ok := engine.StartupSweep(); ok && !force {
					fmt.Fprintln(out, "Cleanup was due and ran during startup")
					printCleanupReport(out, report)
					return nil
				}
				if !force && !engine.CleanupDue() {
					last := engine.Stats().LastCleanup
					fmt.Fprintf(out, "Cleanup not due; last sweep ran %s (use --force to run now)\n", humanize.Time(last))
					return nil
				}
				report, err := engine.Cleanup(ctx)
				if err != nil {
					return fmt.Errorf("cleanup: %w", err)
				}
				printCleanupReport(out, report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Run even if the cleanup interval has not elapsed")
	return cmd
}

func printCleanupReport(w io.Writer, report cardcache.CleanupReport) {
	fmt.Fprintf(w, "Sweep %s finished in %s\n", report.SweepID, report.Duration)
	fmt.Fprintf(w, "  recency records dropped: %s\n", humanize.Comma(int64(report.RecencyDropped)))
	fmt.Fprintf(w, "  card details dropped:    %s\n", humanize.Comma(int64(report.DetailsDropped)))
	fmt.Fprintf(w, "  FAQ entries dropped:     %s\n", humanize.Comma(int64(report.FAQsDropped)))
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to clear the cache without --yes")
			}
			return ctx.withEngine(cmd, false, func(ctx context.Context, engine *cardcache.Engine) error {
				if err := engine.ClearAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&confirm, "yes", "y", false, "Confirm deletion of all cached data")
	return cmd
}
