package execution

import (
	"context"

	"conform/internal/domain"
)

// Executor runs a registered tree and returns the run report
type Executor interface {
	Execute(ctx context.Context, root *domain.Group) (*domain.Report, error)
}

// Observer is told about progress while an Executor runs
type Observer interface {
	Start(total int)
	Done(result *domain.Result, counts domain.Counts)
	Finish()
}
