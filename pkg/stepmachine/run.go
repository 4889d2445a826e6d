package stepmachine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/randalmurphal/stepmachine/pkg/stepmachine/observability"
	"go.opentelemetry.io/otel/trace"
)

// Run executes transitions until the machine completes or a step
// fails.
//
// Guard: if the checkpoint carries a pending error from a previous
// run, Run returns a *StepError immediately without invoking any
// transition. The error embeds the stored failure text and a debug
// rendering of the offending state.
//
// Loop: each iteration snapshots the current state, invokes its Next,
// and then either
//   - persists the returned next state and continues,
//   - on nil, removes the durable record and returns success, or
//   - on failure, rolls the state back to the pre-attempt snapshot,
//     records the formatted error chain in the checkpoint, persists
//     it, and returns a *StepError.
//
// Every iteration produces exactly one durable write; completion
// produces exactly one durable delete. A store or codec failure at any
// point aborts the run with a *PersistenceError. Nothing is retried.
func (e *Engine[S]) Run(ctx context.Context) (runErr error) {
	if e.cp.Error != "" {
		return &StepError{
			Step: fmt.Sprintf("%+v", e.cp.State),
			Message: fmt.Sprintf("previous run resulted in an error: %s on step: %+v",
				e.cp.Error, e.cp.State),
		}
	}

	start := time.Now()
	observability.LogRunStart(e.cfg.logger, e.cfg.runID)

	execCtx := ctx
	var runSpan trace.Span
	if e.cfg.tracingEnabled {
		execCtx, runSpan = e.cfg.spans.StartRunSpan(ctx, "stepmachine", e.cfg.runID)
		defer func() {
			e.cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	steps := 0
	runErr = e.loop(execCtx, &steps)

	duration := time.Since(start)
	durationMs := float64(duration.Milliseconds())
	e.cfg.metrics.RecordRun(ctx, runErr == nil, duration)

	if runErr != nil {
		observability.LogRunError(e.cfg.logger, e.cfg.runID, runErr, durationMs, stepName(e.cp.State))
	} else {
		observability.LogRunComplete(e.cfg.logger, e.cfg.runID, durationMs, steps)
	}
	return runErr
}

// loop drives transitions until completion or failure. steps counts
// successful transitions for the completion log.
func (e *Engine[S]) loop(ctx context.Context, steps *int) error {
	base := newStepContext(ctx, e.cfg.logger, e.cfg.runID)

	for {
		name := stepName(e.cp.State)

		// Snapshot before the attempt; the only rollback mechanism.
		snapshot, err := json.Marshal(e.cp.State)
		if err != nil {
			return &PersistenceError{Op: "snapshot", Err: err}
		}

		observability.LogStepStart(e.cfg.logger, name)

		stepCtx := ctx
		var stepSpan trace.Span
		if e.cfg.tracingEnabled {
			stepCtx, stepSpan = e.cfg.spans.StartStepSpan(ctx, name)
		}

		stepStart := time.Now()
		next, stepErr := e.cp.State.Next(base.withStep(stepCtx, name))
		stepDuration := time.Since(stepStart)

		e.cfg.metrics.RecordStepExecution(stepCtx, name, stepDuration, stepErr)
		if e.cfg.tracingEnabled {
			e.cfg.spans.EndSpanWithError(stepSpan, stepErr)
		}

		if stepErr != nil {
			observability.LogStepFailed(e.cfg.logger, name, stepErr)

			// Discard whatever the failed attempt consumed.
			var restored S
			if err := json.Unmarshal(snapshot, &restored); err != nil {
				return &PersistenceError{Op: "rollback", Err: err}
			}
			e.cp.State = restored

			msg := ErrorChain(stepErr)
			e.cp.Error = msg
			if err := e.persist(ctx); err != nil {
				return err
			}
			return &StepError{
				Step:    fmt.Sprintf("%+v", e.cp.State),
				Message: msg,
				Err:     stepErr,
			}
		}

		observability.LogStepComplete(e.cfg.logger, name, float64(stepDuration.Milliseconds()))
		*steps++

		if next == nil {
			if err := e.store.Clean(ctx); err != nil {
				return &PersistenceError{Op: "clean", Err: err}
			}
			return nil
		}

		e.cp.State = *next
		e.cp.Error = ""
		if err := e.persist(ctx); err != nil {
			return err
		}
	}
}
