package storage

import (
	"context"
	"log/slog"

	"conform/internal/config"
)

// Open returns the SQL store when a results DSN is configured and the JSON
// file store otherwise.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Storage, error) {
	if cfg.ResultsDSN == "" {
		return NewJSONStorage(cfg), nil
	}
	return OpenSQLStorage(ctx, cfg.ResultsDSN, logger)
}
