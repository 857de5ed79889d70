package storage

import (
	"context"
	"errors"

	"conform/internal/config"
	"conform/internal/domain"
)

// ErrNoRecord is returned by Load when no run has been stored yet.
var ErrNoRecord = errors.New("no stored run")

// Storage persists and loads run records (e.g. for the failures viewer).
type Storage interface {
	Save(ctx context.Context, record *domain.RunRecord) error
	Load(ctx context.Context) (*domain.RunRecord, error)
	// Update rewrites the stored failure details of an existing record,
	// e.g. after reviewed flags were toggled.
	Update(ctx context.Context, record *domain.RunRecord) error
	Close() error
}

// JSONStorage stores the last run in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
