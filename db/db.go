package db

import "gorm.io/gorm"

// Open connects to the store named by dsn, dispatching on the DSN scheme:
// postgres URLs go to Postgres, everything else (file paths, ":memory:",
// libsql URLs) to SQLite.
func Open(dsn string, debug bool) (*gorm.DB, error) {
	if IsPostgres(dsn) {
		return ConnectPostgres(dsn, debug)
	}
	return Connect(dsn, debug)
}
