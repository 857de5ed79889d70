package migration

import (
	"context"
	"fmt"
	"log/slog"
)

// Migrator brings a results database up to the current schema
type Migrator interface {
	Run(ctx context.Context) error
}

// schema is valid for both MySQL and SQLite; key columns are bounded so
// MySQL can index them.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id      VARCHAR(36) NOT NULL PRIMARY KEY,
		started_at  VARCHAR(40) NOT NULL,
		total       INT NOT NULL,
		passed      INT NOT NULL,
		failed      INT NOT NULL,
		errored     INT NOT NULL,
		bailed      INT NOT NULL,
		aborted     INT NOT NULL,
		duration_ms BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS results (
		run_id      VARCHAR(36) NOT NULL,
		position    INT NOT NULL,
		key_path    TEXT NOT NULL,
		outcome     VARCHAR(16) NOT NULL,
		duration_ms BIGINT NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS failures (
		run_id   VARCHAR(36) NOT NULL,
		position INT NOT NULL,
		key_path TEXT NOT NULL,
		path     TEXT NOT NULL,
		name     TEXT NOT NULL,
		source   TEXT NOT NULL,
		outcome  VARCHAR(16) NOT NULL,
		message  TEXT NOT NULL,
		expected TEXT NOT NULL,
		actual   TEXT NOT NULL,
		stack    TEXT NOT NULL,
		reviewed INT NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
}

// SchemaMigrator implements Migrator by creating the results tables
type SchemaMigrator struct {
	database *Database
	logger   *slog.Logger
}

// NewSchemaMigrator creates a new SchemaMigrator
func NewSchemaMigrator(database *Database, logger *slog.Logger) *SchemaMigrator {
	return &SchemaMigrator{database: database, logger: logger}
}

// Run creates any missing tables. It is safe to run repeatedly.
func (m *SchemaMigrator) Run(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := m.database.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	m.logger.Debug("results schema ready", "driver", m.database.Driver, "tables", len(schema))
	return nil
}
