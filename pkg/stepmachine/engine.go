package stepmachine

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/randalmurphal/stepmachine/pkg/stepmachine/observability"
	"github.com/randalmurphal/stepmachine/pkg/stepmachine/store"
)

// Engine orchestrates a resumable run of one machine instance. It owns
// the current checkpoint exclusively, applies transitions one at a
// time, persists after every step, and refuses to re-attempt a
// previously failed step until the failure is acknowledged.
//
// An Engine is not safe for concurrent use, and two engines must not
// share a store location: the design assumes a single writer per
// durable record and provides no locking.
type Engine[S State[S]] struct {
	store store.Store
	cp    Checkpoint[S]
	cfg   engineConfig
}

// New creates an Engine whose checkpoint holds the given initial state
// and no pending error. It performs no I/O; call Restore to pick up a
// previous run's checkpoint.
func New[S State[S]](st store.Store, initial S, opts ...Option) *Engine[S] {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.runID == "" {
		cfg.runID = uuid.New().String()
	}
	return &Engine[S]{
		store: st,
		cp:    Checkpoint[S]{State: initial},
		cfg:   cfg,
	}
}

// State returns the current state of the machine.
func (e *Engine[S]) State() S {
	return e.cp.State
}

// PendingError returns the recorded failure text from a previous run,
// or the empty string when no failure is pending. While a failure is
// pending, Run fails immediately without invoking any transition.
func (e *Engine[S]) PendingError() string {
	return e.cp.Error
}

// RunID returns the run identifier used in logs, metrics, and traces.
func (e *Engine[S]) RunID() string {
	return e.cfg.runID
}

// Restore loads the checkpoint from the store. A present record fully
// replaces the in-memory checkpoint, state and pending error both; an
// absent record leaves the checkpoint untouched. Restore is idempotent
// and safe to call on a fresh machine with nothing to restore.
func (e *Engine[S]) Restore(ctx context.Context) error {
	data, err := e.store.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return &PersistenceError{Op: "load", Err: err}
	}

	cp, err := Unmarshal[S](data)
	if err != nil {
		return &PersistenceError{Op: "decode", Err: err}
	}

	e.cp = *cp
	observability.LogRestore(e.cfg.logger, e.cfg.runID, stepName(e.cp.State), e.cp.Error != "")
	return nil
}

// DropError clears the pending error and immediately persists the
// cleared checkpoint. This is the only sanctioned way to re-attempt a
// previously failed step; call it after fixing whatever made the step
// fail. The write is unconditional, so acknowledging and then crashing
// still leaves a durably cleared record.
func (e *Engine[S]) DropError(ctx context.Context) error {
	e.cp.Error = ""
	return e.persist(ctx)
}

// persist writes the in-memory checkpoint to the store.
func (e *Engine[S]) persist(ctx context.Context) error {
	data, err := e.cp.Marshal()
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}
	if err := e.store.Save(ctx, data); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	observability.LogCheckpoint(e.cfg.logger, stepName(e.cp.State), len(data))
	e.cfg.metrics.RecordCheckpoint(ctx, stepName(e.cp.State), int64(len(data)))
	return nil
}
