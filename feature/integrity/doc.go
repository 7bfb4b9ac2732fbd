// Package integrity provides health checks for a catalog deployment.
//
// Unlike the 'catalog' package, which serves entries, this package validates
// what the catalog stands on: the backend listing and the snapshot table.
//
// # Checks Provided
//
//   - Structure: The backend is reachable, and every path the glob selects is parsed by the template.
//   - Keys: No two paths normalize to the same entry key, and every key is valid.
//   - Schema: The catalog_entries table matches the snapshot model (columns, types).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs the structure check.
//   - GET /integrity/keys : Runs the key check.
//   - GET /integrity/schema : Runs the schema check.
package integrity
