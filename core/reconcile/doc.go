// Package reconcile compares two views of a catalog: the live listing and the
// snapshot persisted by an earlier listing.
//
// Reconcile builds the union of keys from both sources, records where each
// key is present, and lists field mismatches (path, values) for keys held by
// both. Results are sorted by key so reports are deterministic.
//
// # Usage
//
//	report := reconcile.Reconcile(reconcile.Index(live), reconcile.Index(stored))
//	if !report.Summary.Clean() {
//	    log.Info("Catalog changed",
//	        zap.Int("added", report.Summary.Added),
//	        zap.Int("removed", report.Summary.Removed))
//	}
package reconcile
