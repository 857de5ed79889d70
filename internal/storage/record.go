package storage

import (
	"time"

	"github.com/google/uuid"

	"conform/internal/domain"
	"conform/internal/parser"
)

// TimestampLayout is fixed width so stored timestamps sort as strings.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// NewRecord builds the stored form of report under a fresh run id.
func NewRecord(report *domain.Report, p parser.Parser, at time.Time) *domain.RunRecord {
	record := &domain.RunRecord{
		Meta: domain.RunMeta{
			RunID:           uuid.NewString(),
			Total:           report.Counts.Total(),
			Passed:          report.Counts.Passed,
			Failed:          report.Counts.Failed,
			Errored:         report.Counts.Errored,
			Bailed:          report.Bailed,
			Aborted:         report.Aborted,
			Duration:        report.Elapsed.String(),
			DurationSeconds: report.Elapsed.Seconds(),
			Timestamp:       at.UTC().Format(TimestampLayout),
		},
		Results: make([]domain.ResultRow, 0, len(report.Results)),
		Details: []domain.ExampleFailure{},
	}
	for _, res := range report.Results {
		record.Results = append(record.Results, domain.ResultRow{
			Key:        res.Key(),
			Outcome:    res.Outcome,
			DurationMS: res.Duration.Milliseconds(),
		})
		if f := p.ParseFailure(res); f != nil {
			record.Details = append(record.Details, *f)
		}
	}
	return record
}
