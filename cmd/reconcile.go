package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"pattern-catalog/core/catalog"
	"pattern-catalog/core/reconcile"
	catalogfeature "pattern-catalog/feature/catalog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	saveSnapshot bool
	yesConfirm   bool
)

// reconcileCmd compares the live listing with the persisted snapshot.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the live catalog with the database snapshot",
	Long: `Lists the backend and compares every entry with the rows persisted in catalog_entries.

Reports added, removed and changed keys.
Optionally replace the snapshot with the live listing.

Examples:
  # Report only
  reconcile

  # Replace the snapshot (with interactive confirmation)
  reconcile --save

  # Replace with auto-confirm (non-interactive)
  reconcile --save --yes`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&saveSnapshot, "save", false, "Replace the snapshot with the live listing")
	reconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, l, err := loadCatalogConfig(cmd)
	if err != nil {
		return err
	}
	defer l.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !cfg.Database.Enabled {
		return fmt.Errorf("reconcile requires the snapshot database (DB_ENABLED=true)")
	}
	db := connectOptional(cfg, l)
	if db == nil {
		return fmt.Errorf("failed to connect to database")
	}
	store := catalogfeature.NewSnapshotStore(db, l)
	if err := store.Migrate(); err != nil {
		return err
	}

	reg, err := newRegistry(cfg, l)
	if err != nil {
		return err
	}
	idx, loc, err := catalog.Open(ctx, cfg.Catalog, reg, catalog.WithLogger(l))
	if err != nil {
		return err
	}
	svc := catalogfeature.NewService(idx, loc, store, l)

	l.Info("Starting reconciliation", zap.String("catalog", idx.Name()))
	report, err := svc.Drift(ctx)
	if err != nil {
		return fmt.Errorf("failed to reconcile: %w", err)
	}

	if jsonFlag {
		report.Results = report.Drift()
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		printReconcileReport(l, report)
	}

	if !saveSnapshot {
		if !report.Summary.Clean() {
			l.Info("Snapshot is out of date. Use --save to replace it with the live listing.")
		}
		return nil
	}
	if report.Summary.Clean() {
		l.Info("No changes required.")
		return nil
	}

	if !confirmDestructiveAction(cmd.InOrStdin(), cmd.OutOrStdout()) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	entries, err := idx.Entries(ctx)
	if err != nil {
		return err
	}
	if _, err := store.Save(ctx, idx.Name(), entries); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	l.Info("Snapshot replaced", zap.Int("entries", len(entries)))
	return nil
}

// printReconcileReport prints a formatted reconciliation report using logger.
func printReconcileReport(l *zap.Logger, report reconcile.Report) {
	s := report.Summary

	l.Info("Reconciliation report",
		zap.Int("total_keys", s.Total),
		zap.Int("added", s.Added),
		zap.Int("removed", s.Removed),
		zap.Int("changed", s.Changed),
	)

	drift := report.Drift()
	maxShow := 5
	if len(drift) < maxShow {
		maxShow = len(drift)
	}
	for _, r := range drift[:maxShow] {
		l.Info("Sample drift",
			zap.String("key", r.Key),
			zap.Bool("live", r.LivePresent),
			zap.Bool("snapshot", r.SnapshotPresent),
			zap.Strings("mismatch", r.Mismatch),
		)
	}
	if len(drift) > maxShow {
		l.Info("Additional keys not shown", zap.Int("count", len(drift)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(in io.Reader, out io.Writer) bool {
	if yesConfirm {
		fmt.Fprintln(out, "\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprint(out, "\n⚠️  Type 'yes' to confirm destructive actions: ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
