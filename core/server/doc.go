// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines
// the configuration structure for server settings.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key guarding the catalog
// routes, and how long graceful shutdown may take.
//
// # Usage
//
// This package is embedded by core/config as the "server" section
// (SERVER_PORT, SERVER_API_KEY, SERVER_SHUTDOWN_SECONDS).
package server
