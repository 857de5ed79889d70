package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"conform/internal/domain"
)

// Save writes the record to the configured JSON output file, replacing
// the previous run.
func (s *JSONStorage) Save(_ context.Context, record *domain.RunRecord) error {
	return s.write(record)
}

// Update rewrites the stored record.
func (s *JSONStorage) Update(_ context.Context, record *domain.RunRecord) error {
	return s.write(record)
}

// Load reads the last run record from the configured JSON output file.
func (s *JSONStorage) Load(_ context.Context) (*domain.RunRecord, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoRecord, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var record domain.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &record, nil
}

// Close is a no-op; the file is not held open.
func (s *JSONStorage) Close() error {
	return nil
}

func (s *JSONStorage) write(record *domain.RunRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
