package execution

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"conform/internal/config"
	"conform/internal/domain"
)

var _ Executor = (*Engine)(nil)

// Engine walks a group tree depth first and runs the selected examples one
// at a time.
type Engine struct {
	config   *config.Config
	planner  Planner
	runner   *Runner
	selector Selector
	observer Observer
	logger   *slog.Logger
}

// NewEngine creates a new Engine
func NewEngine(cfg *config.Config, planner Planner, runner *Runner, logger *slog.Logger) *Engine {
	return &Engine{
		config:   cfg,
		planner:  planner,
		runner:   runner,
		selector: All{},
		logger:   logger,
	}
}

// SetSelector limits the run to the examples selector matches
func (e *Engine) SetSelector(selector Selector) {
	if selector == nil {
		selector = All{}
	}
	e.selector = selector
}

// SetObserver sets the progress observer for the engine
func (e *Engine) SetObserver(observer Observer) {
	e.observer = observer
}

// run is the state of one traversal.
type run struct {
	ctx     context.Context
	report  *domain.Report
	stopped bool
}

// Execute runs every selected example in declaration order. With bail set
// it stops after the first example that did not pass; when ctx is done it
// stops before the next example and marks the report aborted. Either way
// the partial report is returned.
func (e *Engine) Execute(ctx context.Context, root *domain.Group) (*domain.Report, error) {
	if root == nil {
		return nil, errors.New("no group tree to execute")
	}

	total := len(e.planner.Plan(root, e.selector))
	if e.observer != nil {
		e.observer.Start(total)
	}
	e.logger.Info("run started", "examples", total, "declared", root.CountExamples())

	start := time.Now()
	r := &run{
		ctx: ctx,
		report: &domain.Report{
			Root: &domain.GroupReport{Declared: root.CountExamples()},
		},
	}
	e.walk(r, root, nil, r.report.Root)
	r.report.Elapsed = time.Since(start)
	if ctx.Err() != nil {
		r.report.Aborted = true
	}

	if e.observer != nil {
		e.observer.Finish()
	}
	e.logger.Info("run finished",
		"passed", r.report.Counts.Passed,
		"failed", r.report.Counts.Failed,
		"errored", r.report.Counts.Errored,
		"bailed", r.report.Bailed,
		"aborted", r.report.Aborted,
		"elapsed", r.report.Elapsed)
	return r.report, nil
}

func (e *Engine) walk(r *run, g *domain.Group, path []string, into *domain.GroupReport) {
	for _, child := range g.Children {
		if r.stopped {
			return
		}
		switch {
		case child.Group != nil:
			e.walkGroup(r, child.Group, childPath(path, child.Group.Name), into)
		case child.Example != nil:
			step := Step{Path: path, Example: child.Example}
			if !e.selector.Match(step.FullPath()) {
				continue
			}
			if result := e.runStep(r, step); result != nil {
				into.Children = append(into.Children, domain.ReportNode{Result: result})
			}
		}
	}
}

// walkGroup adds a group report when the group ran something, or when it
// is empty and its own path is selected.
func (e *Engine) walkGroup(r *run, g *domain.Group, path []string, into *domain.GroupReport) {
	sub := &domain.GroupReport{
		Name:     g.Name,
		Path:     path,
		Declared: g.CountExamples(),
	}
	e.walk(r, g, path, sub)

	keep := len(sub.Children) > 0
	if !keep && sub.Declared == 0 && !r.stopped {
		keep = e.selector.Match(path)
	}
	if keep {
		into.Children = append(into.Children, domain.ReportNode{Group: sub})
	}
}

func (e *Engine) runStep(r *run, step Step) *domain.Result {
	if r.ctx.Err() != nil {
		r.stopped = true
		r.report.Aborted = true
		e.logger.Warn("run aborted", "err", r.ctx.Err())
		return nil
	}

	result := e.runner.Run(r.ctx, step)
	r.report.Results = append(r.report.Results, &result)
	r.report.Counts.Add(result.Outcome)
	if e.observer != nil {
		e.observer.Done(&result, r.report.Counts)
	}

	if result.Outcome != domain.OutcomePassed && e.config.Flags.Bail {
		r.stopped = true
		r.report.Bailed = true
		e.logger.Info("bailing after first non-passed example", "path", result.Key())
	}
	return &result
}
