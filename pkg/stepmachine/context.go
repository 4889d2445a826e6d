package stepmachine

import (
	"context"
	"log/slog"
)

// Context provides execution context to steps. It extends
// context.Context with the services a step body commonly needs.
//
// The engine creates a derived context per step with the logger
// enriched with run_id and step fields. Cancellation of the embedded
// context is visible to step bodies that choose to honor it; the
// engine itself never interrupts a transition in flight.
type Context interface {
	context.Context

	// Logger returns the configured logger, enriched with run and step
	// context. Never returns nil - defaults to slog.Default() if not
	// configured.
	Logger() *slog.Logger

	// RunID returns the unique identifier for this run.
	// Auto-generated if not configured.
	RunID() string
}

// stepContext is the internal implementation of Context.
type stepContext struct {
	context.Context

	logger *slog.Logger
	runID  string
}

// Logger returns the configured logger.
func (c *stepContext) Logger() *slog.Logger {
	return c.logger
}

// RunID returns the run identifier.
func (c *stepContext) RunID() string {
	return c.runID
}

// newStepContext wraps a standard context for handing to a step.
func newStepContext(ctx context.Context, logger *slog.Logger, runID string) *stepContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &stepContext{
		Context: ctx,
		logger:  logger,
		runID:   runID,
	}
}

// withStep returns a derived context whose logger carries the step name.
func (c *stepContext) withStep(ctx context.Context, step string) *stepContext {
	return &stepContext{
		Context: ctx,
		logger:  c.logger.With("run_id", c.runID, "step", step),
		runID:   c.runID,
	}
}
