// Package catalog maintains the table of entries behind one path template.
//
// An Index pairs a compiled pattern.Pattern with a lister.Lister. Every
// concrete path the lister reports that matches the template becomes an
// Entry, addressed by the key entrykey builds from its field values.
//
// # Modes
//
// Listable indexes (the default) enumerate the backing store. The table is
// rebuilt wholesale when it is empty or older than the TTL; a TTL of zero or
// less re-lists on every read. Concurrent rebuilds are collapsed through
// singleflight.
//
// Non-listable indexes never enumerate. Entry formats the single path for the
// requested values, checks that it exists, and caches the hit. KwargSets then
// returns only what has been resolved so far.
//
// # Collisions
//
// Two value sets that normalize to the same key cannot both be addressed. The
// first path in listing order wins; every later one is dropped, logged at warn
// level, reported through WithWarningHandler wrapped in ErrKeyCollision, and
// counted in metrics.
//
// # Usage
//
//	p := pattern.MustCompile("{city}/{year}.csv", false)
//	idx := catalog.New(p, lister.NewFSLister(osfs.New("/data")),
//		catalog.WithTTL(30*time.Second),
//		catalog.WithLogger(log),
//	)
//	entry, err := idx.Entry(ctx, map[string]string{"city": "bern", "year": "2024"})
package catalog
