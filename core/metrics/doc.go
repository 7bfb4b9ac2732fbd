// Package metrics exposes Prometheus counters for catalog indexes.
//
// Every series carries a "catalog" label so several indexes can share one
// registry. All recording methods accept a nil *Metrics and do nothing.
package metrics
