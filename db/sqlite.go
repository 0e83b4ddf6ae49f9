package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ontodev/nanobot/models"
)

// Connect opens the SQLite-family store named by dsn and ensures the
// statement table exists. Three DSN forms are accepted: ":memory:", a file
// path (parent directories are created as needed), and a libsql or http(s)
// URL for a remote store.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	dialector, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}

	cfg := &gorm.Config{}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	conn, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to %q: %w", dsn, err)
	}
	if err := models.Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate statement table: %w", err)
	}
	return conn, nil
}

// dialectorFor picks the gorm dialector matching the DSN form.
func dialectorFor(dsn string) (gorm.Dialector, error) {
	if isURL(dsn) {
		return remoteDialector(dsn)
	}
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return sqlite.Open(dsn), nil
}

// remoteDialector wraps a libsql connection for remote (Turso) stores. The
// auth token, when one is needed, comes from NANOBOT_LIBSQL_AUTH_TOKEN.
func remoteDialector(dsn string) (gorm.Dialector, error) {
	var opts []libsql.Option
	if token := os.Getenv("NANOBOT_LIBSQL_AUTH_TOKEN"); token != "" {
		opts = append(opts, libsql.WithAuthToken(token))
	}

	connector, err := libsql.NewConnector(dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("create libsql connector: %w", err)
	}
	return sqlite.New(sqlite.Config{
		DriverName: "libsql",
		Conn:       sql.OpenDB(connector),
		DSN:        dsn,
	}), nil
}

// isURL checks if the DSN is a URL (for Turso/libsql) or a file path.
func isURL(dsn string) bool {
	return strings.HasPrefix(dsn, "http://") ||
		strings.HasPrefix(dsn, "https://") ||
		strings.HasPrefix(dsn, "libsql")
}
