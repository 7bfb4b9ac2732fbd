// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - auth: API key validation (X-API-Key header or api_key query parameter).
//   - rayid: assigns every request a Ray ID, stored in the context locals and
//     echoed in the X-Ray-ID response header for tracing.
//
// Register rayid first so every later log line can carry the id.
package middleware
