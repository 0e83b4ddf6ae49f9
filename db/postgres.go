package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ontodev/nanobot/models"
)

// ConnectPostgres establishes a Postgres connection and runs migrations.
// The recursive superclass query issued by the tree engine is portable SQL,
// so tree views over a Postgres-backed LDTab store match SQLite. Table
// browsing builds rows with SQLite's json_object and does not run on
// Postgres.
func ConnectPostgres(dsn string, debug bool) (*gorm.DB, error) {
	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

// IsPostgres reports whether a DSN names a Postgres database.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
