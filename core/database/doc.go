// Package database handles the optional snapshot database connection and
// schema inspection.
//
// It wraps GORM and configures MySQL or SQLite connections from the
// application's configuration.
//
// # Connect
//
// Connect selects the dialector from Config.Driver, applies pool settings and
// pings the database within Config.TimeoutSeconds.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let features verify that a table they
// write to has the columns they expect before they start using it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Database connection failed", zap.Error(err))
//	}
//
//	missing, err := database.MissingColumns(db, "catalog_entries", "entry_key", "path")
package database
