// Package stepmachine runs CLI and batch programs as resumable state
// machines. A program expresses its work as a sequence of discrete
// steps; after every step the engine persists a checkpoint, so when a
// step fails the program can be relaunched and continues from the step
// it was interrupted on instead of starting over.
//
// # Core Concepts
//
//   - State: one unit of work. It owns the data it needs and computes
//     the next state, or signals completion by returning nil.
//   - Checkpoint: the durable {state, error} record, exactly one per
//     store location.
//   - Store: the persistence port (Load/Save/Clean) abstracting the
//     durable medium. File, in-memory, SQLite, and Postgres backends
//     ship in pkg/stepmachine/store.
//   - Engine: owns the checkpoint, applies transitions, persists after
//     every step, and rolls the state back when a step fails.
//
// # Quick Start
//
// Steps are the variants of a closed sum type. A one-of struct with
// exactly one variant populated keeps the JSON self-describing:
//
//	type Machine struct {
//	    Fetch   *Fetch   `json:"fetch,omitempty"`
//	    Process *Process `json:"process,omitempty"`
//	}
//
//	func (m Machine) Next(ctx stepmachine.Context) (*Machine, error) {
//	    switch {
//	    case m.Fetch != nil:
//	        return m.Fetch.next(ctx)
//	    case m.Process != nil:
//	        return m.Process.next(ctx)
//	    }
//	    return nil, errors.New("empty machine")
//	}
//
// Construct an engine, restore the previous run if there was one, and
// run to completion:
//
//	st := store.NewFileStore("myprog.json")
//	eng := stepmachine.New(st, Machine{Fetch: &Fetch{URL: url}})
//	if err := eng.Restore(ctx); err != nil {
//	    return err
//	}
//	return eng.Run(ctx)
//
// # Failure and Recovery
//
// When a step returns an error, the engine rolls the in-memory state
// back to the snapshot taken before the attempt, records the error text
// (with its full causal chain) in the checkpoint, persists it, and
// returns a *StepError. A pending error is sticky: Run refuses to
// execute anything until the caller acknowledges the failure with
// DropError. This stops unattended re-execution of a step that may
// already have produced an external side effect:
//
//	eng := stepmachine.New(st, initial)
//	if err := eng.Restore(ctx); err != nil {
//	    return err
//	}
//	if *ack {
//	    // The operator fixed the world; clear the recorded failure.
//	    if err := eng.DropError(ctx); err != nil {
//	        return err
//	    }
//	}
//	return eng.Run(ctx)
//
// On success the durable record is removed; a later Restore finds
// nothing and the machine starts fresh.
//
// # Observability
//
// Structured logging, OpenTelemetry metrics, and tracing are opt-in:
//
//	eng := stepmachine.New(st, initial,
//	    stepmachine.WithLogger(logger),
//	    stepmachine.WithMetrics(true),
//	    stepmachine.WithTracing(true),
//	    stepmachine.WithRunID("import-2024-06-01"))
//
// Logs carry run_id, step, and duration_ms fields. Metrics:
// stepmachine.step.executions, stepmachine.step.latency_ms,
// stepmachine.step.errors, stepmachine.run.runs,
// stepmachine.run.latency_ms, stepmachine.checkpoint.size_bytes.
// Tracing: a stepmachine.run span with child stepmachine.step.<name>
// spans.
//
// # Error Handling
//
// Two error kinds come out of Run:
//
//	var stepErr *stepmachine.StepError      // a step failed (or a prior failure is unacknowledged)
//	var persErr *stepmachine.PersistenceError // the durability guarantee itself broke
//
// Persistence errors mean no checkpoint mutation is guaranteed to have
// landed; step errors mean the failure was captured durably and the
// machine will resume at the failed step.
//
// Execution is single-threaded and synchronous: no internal
// parallelism, no automatic retries, no timeouts. One engine owns its
// checkpoint exclusively, and a store location is assumed to have a
// single writer.
package stepmachine
