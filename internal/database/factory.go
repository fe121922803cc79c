package database

import (
	"fmt"
	"os"
	"path/filepath"

	"ftl-go/internal/config"
	"ftl-go/internal/database/migrations"
)

// NewDatabaseFromConfig creates a Database implementation based on the database config type.
// A memory database has nothing to migrate from, so its schema is applied here.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		path, err := PathFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		return NewSQLiteDatabase(path)
	case "memory":
		db, err := NewSQLiteDatabase(":memory:")
		if err != nil {
			return nil, err
		}
		if err := migrations.MigrateUp(db.db); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// PathFromConfig returns the database file of a sqlite config.
func PathFromConfig(cfg config.DatabaseConfig) (string, error) {
	if cfg.Type != "sqlite" {
		return "", fmt.Errorf("database type %q has no file", cfg.Type)
	}
	if cfg.DataDir == "" {
		return "", fmt.Errorf("data_dir required for sqlite database")
	}
	return filepath.Join(cfg.DataDir, "ftl.db"), nil
}
