// Package loader mounts the HTTP features of the service.
//
// A Feature owns a group of routes. The start command registers each one with
// a Manager and calls LoadAll once the shared middleware is installed;
// disabled features are skipped and the first Load error aborts startup.
//
// Two features exist today: 'catalog' serves entries of the configured
// template, 'integrity' reports on the backend and the snapshot table.
package loader
