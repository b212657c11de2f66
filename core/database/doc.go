// Package database opens the datastore that holds migration logs.
//
// Connect wraps GORM and selects the MySQL or SQLite dialector from configuration.
// SQLite is the default so a single binary can keep its own log file; MySQL is used
// when several operators share one history.
//
// The inspector helpers report which columns a table has, which lets the migration
// feature warn about a schema that AutoMigrate could not bring up to date.
//
//	db, err := database.Connect(cfg.Database)
//	missing, err := database.MissingColumns(db, "migration_logs", []string{"id", "status"})
package database
