// Package lister provides the path-listing capability a catalog is built on.
//
// A Lister answers two questions about a backing store: which paths match a
// glob right now, and whether one given path exists. The catalog never talks
// to a storage backend directly; it receives a Lister at construction.
//
// # Backends
//
//   - ObjectLister: S3/MinIO buckets through core/storage. One recursive
//     ListObjects pass under the glob's literal prefix, filtered locally.
//   - FSLister: any go-billy filesystem. LocalFactory roots it at a directory
//     on disk; FSFactory serves a shared (usually in-memory) filesystem.
//
// # Registry
//
// Registry maps url schemes ("s3", "file", "memory") to factories, so the
// backend for "s3://bucket/{id}.csv" is chosen explicitly at startup rather
// than through process-wide filesystem caches.
//
// # Errors
//
// Access failures are wrapped with ErrPermissionDenied and keep the backend
// error in the chain, so callers can test for either with errors.Is/As.
package lister
