// Package catalog exposes a catalog index over HTTP and mirrors its listings
// into the optional snapshot database.
//
// # HTTP Endpoints
//
//   - GET /catalog : template, glob, fields, mode and cache state.
//   - GET /catalog/entries : field values of every entry (supports ?refresh=true).
//   - GET /catalog/names : entry keys.
//   - GET /catalog/entry?<field>=<value> : one entry; 404 when absent.
//   - GET /catalog/path?<field>=<value> : formatted path, no backend call.
//   - GET /catalog/search?q=<words>&limit=<n> : entries by key or path.
//   - GET /catalog/snapshot : rows persisted by the last listing.
//   - GET /catalog/drift : keys added, removed or changed since the snapshot (?all=true for every key).
//   - POST /catalog/reload : drop the cache and list again.
//
// # Errors
//
// Lookup failures map to status codes: catalog.ErrNotFound is 404, invalid
// keys and missing fields are 400, lister.ErrPermissionDenied is 403.
//
// # Snapshots
//
// SnapshotStore.Hook plugs into catalog.OnRefresh. Each full listing replaces
// the catalog's rows in the catalog_entries table inside one transaction and
// logs how the listing changed compared to the rows it replaced.
package catalog
