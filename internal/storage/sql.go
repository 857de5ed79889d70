package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conform/internal/domain"
	"conform/internal/migration"
)

// SQLStorage keeps every run in a results database (MySQL or SQLite).
// Load returns the most recent one.
type SQLStorage struct {
	database *migration.Database
	logger   *slog.Logger
}

// OpenSQLStorage connects to dsn and makes sure the schema exists.
func OpenSQLStorage(ctx context.Context, dsn string, logger *slog.Logger) (*SQLStorage, error) {
	database, err := migration.Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := migration.NewSchemaMigrator(database, logger).Run(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return &SQLStorage{database: database, logger: logger}, nil
}

// Save inserts the run, its result rows and its failure details.
func (s *SQLStorage) Save(ctx context.Context, record *domain.RunRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		m := record.Meta
		_, err := tx.ExecContext(ctx,
			`INSERT INTO runs (run_id, started_at, total, passed, failed, errored, bailed, aborted, duration_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.RunID, m.Timestamp, m.Total, m.Passed, m.Failed, m.Errored,
			boolInt(m.Bailed), boolInt(m.Aborted),
			time.Duration(m.DurationSeconds*float64(time.Second)).Milliseconds())
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for i, row := range record.Results {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO results (run_id, position, key_path, outcome, duration_ms) VALUES (?, ?, ?, ?, ?)`,
				m.RunID, i, row.Key, string(row.Outcome), row.DurationMS)
			if err != nil {
				return fmt.Errorf("insert result %d: %w", i, err)
			}
		}
		return s.insertFailures(ctx, tx, m.RunID, record.Details)
	})
}

// Update replaces the failure details of an already saved run.
func (s *SQLStorage) Update(ctx context.Context, record *domain.RunRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM failures WHERE run_id = ?`, record.Meta.RunID); err != nil {
			return fmt.Errorf("clear failures: %w", err)
		}
		return s.insertFailures(ctx, tx, record.Meta.RunID, record.Details)
	})
}

// Load reads the most recent run.
func (s *SQLStorage) Load(ctx context.Context) (*domain.RunRecord, error) {
	db := s.database.DB
	record := &domain.RunRecord{Results: []domain.ResultRow{}, Details: []domain.ExampleFailure{}}

	var (
		m               = &record.Meta
		bailed, aborted int
		durationMS      int64
	)
	err := db.QueryRowContext(ctx,
		`SELECT run_id, started_at, total, passed, failed, errored, bailed, aborted, duration_ms
		 FROM runs ORDER BY started_at DESC LIMIT 1`).
		Scan(&m.RunID, &m.Timestamp, &m.Total, &m.Passed, &m.Failed, &m.Errored, &bailed, &aborted, &durationMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	m.Bailed = bailed != 0
	m.Aborted = aborted != 0
	elapsed := time.Duration(durationMS) * time.Millisecond
	m.Duration = elapsed.String()
	m.DurationSeconds = elapsed.Seconds()

	rows, err := db.QueryContext(ctx,
		`SELECT key_path, outcome, duration_ms FROM results WHERE run_id = ? ORDER BY position`, m.RunID)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var row domain.ResultRow
		var outcome string
		if err := rows.Scan(&row.Key, &outcome, &row.DurationMS); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		row.Outcome = domain.Outcome(outcome)
		record.Results = append(record.Results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}

	details, err := s.loadFailures(ctx, m.RunID)
	if err != nil {
		return nil, err
	}
	record.Details = details
	return record, nil
}

// Close closes the database.
func (s *SQLStorage) Close() error {
	return s.database.Close()
}

func (s *SQLStorage) loadFailures(ctx context.Context, runID string) ([]domain.ExampleFailure, error) {
	rows, err := s.database.DB.QueryContext(ctx,
		`SELECT key_path, path, name, source, outcome, message, expected, actual, stack, reviewed
		 FROM failures WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("load failures: %w", err)
	}
	defer rows.Close()

	details := []domain.ExampleFailure{}
	for rows.Next() {
		var (
			f                    domain.ExampleFailure
			path, stack, outcome string
			reviewed             int
		)
		if err := rows.Scan(&f.Key, &path, &f.Name, &f.Source, &outcome, &f.Message, &f.Expected, &f.Actual, &stack, &reviewed); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		if err := json.Unmarshal([]byte(path), &f.Path); err != nil {
			return nil, fmt.Errorf("decode failure path: %w", err)
		}
		if err := json.Unmarshal([]byte(stack), &f.Stack); err != nil {
			return nil, fmt.Errorf("decode failure stack: %w", err)
		}
		f.Outcome = domain.Outcome(outcome)
		f.Reviewed = reviewed != 0
		details = append(details, f)
	}
	return details, rows.Err()
}

func (s *SQLStorage) insertFailures(ctx context.Context, tx *sql.Tx, runID string, details []domain.ExampleFailure) error {
	for i, f := range details {
		path, err := json.Marshal(f.Path)
		if err != nil {
			return fmt.Errorf("encode failure path: %w", err)
		}
		stack, err := json.Marshal(f.Stack)
		if err != nil {
			return fmt.Errorf("encode failure stack: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO failures (run_id, position, key_path, path, name, source, outcome, message, expected, actual, stack, reviewed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, i, f.Key, string(path), f.Name, f.Source, string(f.Outcome),
			f.Message, f.Expected, f.Actual, string(stack), boolInt(f.Reviewed))
		if err != nil {
			return fmt.Errorf("insert failure %d: %w", i, err)
		}
	}
	return nil
}

func (s *SQLStorage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.database.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback failed", "err", rbErr)
		}
		return err
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
