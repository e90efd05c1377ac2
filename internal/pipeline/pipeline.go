package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kalkar/skewscan/internal/model"
)

// Step is one stage of a run.
type Step interface {
	// Do executes the step against run. Steps record their output on run.
	Do(ctx context.Context, run *model.Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError keeps executing later steps after one fails.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to run every step even when
// an earlier one fails. Execute then returns all step errors joined.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence, checking for cancellation between
// steps. Completed step names are appended to run.Steps.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	var errs []error

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return errors.Join(append(errs, ctx.Err())...)
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"run", run.ID,
		)

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"run", run.ID,
				"error", err,
			)

			if !p.continueOnError {
				return err
			}
			errs = append(errs, err)
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"run", run.ID,
		)
		run.Steps = append(run.Steps, step.Name())
	}

	return errors.Join(errs...)
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
