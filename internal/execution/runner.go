package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conform/internal/config"
	"conform/internal/domain"
	"conform/internal/parser"
)

// Runner executes a single example
type Runner struct {
	config *config.Config
	parser *parser.OutcomeParser
	logger *slog.Logger
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, outcomeParser *parser.OutcomeParser, logger *slog.Logger) *Runner {
	return &Runner{config: cfg, parser: outcomeParser, logger: logger}
}

// Run invokes the example body exactly once and classifies how it ended.
// Panics are recovered and reported as errored.
func (r *Runner) Run(ctx context.Context, step Step) (result domain.Result) {
	result = domain.Result{
		Path:   step.Path,
		Name:   step.Example.Name,
		Source: step.Example.Source,
	}

	timeout := step.Example.Timeout
	if timeout <= 0 {
		timeout = r.config.Timeout
	}
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.parser.DescribePanic(&result, rec)
		}
		result.Duration = time.Since(start)
		r.logger.Debug("example finished",
			"path", result.Key(),
			"outcome", result.Outcome,
			"duration", result.Duration)
	}()

	err := step.Example.Body(runCtx)
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = fmt.Errorf("timed out after %s", timeout)
	}
	r.parser.Describe(&result, err)
	return result
}
