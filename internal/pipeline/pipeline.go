package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Step is one stage of a filter run. Steps see the Run as the previous
// steps left it.
//
// Design decision: Steps are an interface rather than bare functions so a
// step can carry its own collaborators (a processor, a writer, a recorder)
// and report a stable name for logs and the audit trail.
type Step interface {
	// Do executes the step.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// stage is a registered step plus how its failure is treated.
type stage struct {
	step     Step
	optional bool
}

// Pipeline runs steps in registration order.
type Pipeline struct {
	stages []stage
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for step progress.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a required step. A failing required step ends the run.
func (p *Pipeline) AddStep(step Step) {
	p.stages = append(p.stages, stage{step: step})
}

// AddSteps appends required steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	for _, s := range steps {
		p.AddStep(s)
	}
}

// AddOptionalStep appends a step whose failure is logged and kept in
// Run.Err without stopping the steps after it.
//
// Design decision: Recording a run in the audit database is optional in
// this sense. The frontier links and the report are the product of a run;
// losing the history row must not discard them.
func (p *Pipeline) AddOptionalStep(step Step) {
	p.stages = append(p.stages, stage{step: step, optional: true})
}

// Execute runs every step in order and returns the first required-step
// failure, wrapped with the step name. Cancellation is checked between
// steps; steps that block watch ctx themselves.
//
// Run.Err holds every failure of the run, optional ones included.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, st := range p.stages {
		name := st.step.Name()
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "before", name, "reason", err)
			run.Err = errors.Join(run.Err, err)
			return err
		}

		started := time.Now()
		err := st.step.Do(ctx, run)
		elapsed := time.Since(started).Round(time.Millisecond)
		if err == nil {
			p.logger.Debug("step completed", "step", name, "manifest", run.Manifest, "elapsed", elapsed)
			run.PerformedSteps = append(run.PerformedSteps, name)
			continue
		}

		err = fmt.Errorf("%s: %w", name, err)
		run.Err = errors.Join(run.Err, err)
		if st.optional {
			p.logger.Warn("optional step failed", "step", name, "error", err)
			continue
		}
		p.logger.Error("step failed", "step", name, "manifest", run.Manifest, "error", err)
		return err
	}
	return nil
}

// StepCount returns the number of registered steps.
func (p *Pipeline) StepCount() int {
	return len(p.stages)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = st.step.Name()
	}
	return names
}
