package scaffold

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	kilnerrors "github.com/artisanexperiences/kiln/internal/errors"
	"github.com/artisanexperiences/kiln/internal/fs"
	"github.com/artisanexperiences/kiln/internal/logging"
	"github.com/artisanexperiences/kiln/internal/scaffold/types"
)

type ExecutionResult struct {
	Step   types.ScaffoldStep
	Target string
	Error  error
	// Planned is set instead of running the step during a dry run.
	Planned bool
}

// StepExecutor runs steps strictly in order and stops at the first failure.
type StepExecutor struct {
	steps   []types.ScaffoldStep
	ctx     *types.ScaffoldContext
	opts    types.StepOptions
	logger  *log.Logger
	results []ExecutionResult
}

func NewStepExecutor(steps []types.ScaffoldStep, ctx *types.ScaffoldContext, opts types.StepOptions) *StepExecutor {
	return &StepExecutor{
		steps:  steps,
		ctx:    ctx,
		opts:   opts,
		logger: logging.Discard(),
	}
}

// WithLogger sets the logger used for per-step progress.
func (e *StepExecutor) WithLogger(logger *log.Logger) *StepExecutor {
	if logger != nil {
		e.logger = logger
	}
	return e
}

func (e *StepExecutor) Execute() error {
	e.results = make([]ExecutionResult, 0, len(e.steps))

	for _, step := range e.steps {
		if err := e.executeStep(step); err != nil {
			return err
		}
	}

	return nil
}

func (e *StepExecutor) executeStep(step types.ScaffoldStep) error {
	target := step.Target(e.ctx)

	if e.opts.DryRun {
		e.logger.Debug("would create", "step", step.Name(), "path", target)
		e.results = append(e.results, ExecutionResult{Step: step, Target: target, Planned: true})
		return nil
	}

	if err := step.Run(e.ctx, e.opts); err != nil {
		e.results = append(e.results, ExecutionResult{Step: step, Target: target, Error: err})
		return fmt.Errorf("step %s failed for %s: %w", step.Name(), target, err)
	}

	e.logger.Debug("created", "step", step.Name(), "path", target)
	e.results = append(e.results, ExecutionResult{Step: step, Target: target})
	return nil
}

func (e *StepExecutor) Results() []ExecutionResult {
	return e.results
}

// Rollback removes every path the run recorded, newest first, so files go
// before their directories. It keeps going past failures and returns them
// joined.
func (e *StepExecutor) Rollback() error {
	return rollback(e.ctx, e.logger)
}

func rollback(ctx *types.ScaffoldContext, logger *log.Logger) error {
	filesystem := ctx.FS
	if filesystem == nil {
		filesystem = fs.Default
	}

	created := ctx.Created()
	var errs []error
	for i := len(created) - 1; i >= 0; i-- {
		if err := filesystem.Remove(created[i]); err != nil {
			logger.Warn("rollback could not remove path", "path", created[i], "err", err)
			errs = append(errs, fmt.Errorf("removing %s: %w", created[i], err))
			continue
		}
		logger.Debug("rolled back", "path", created[i])
	}

	if len(errs) > 0 {
		return kilnerrors.RollbackIncomplete(ctx.Root, errors.Join(errs...))
	}
	return nil
}
