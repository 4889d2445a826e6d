// Package store provides durable checkpoint storage for the step
// machine engine.
//
// A Store holds at most one record: the serialized checkpoint of one
// machine instance. The location of that record (a file path, a keyed
// row) is fixed when the store is constructed; one location equals one
// logical machine. The design assumes a single writer per location and
// provides no locking.
package store

import (
	"context"
	"errors"
)

// Store is the persistence port for the single checkpoint record at a
// fixed location. Any durable medium may implement it.
//
// Clean of an already-absent record is a no-op, not an error: a
// completed run followed by a crash before process exit must make the
// relaunch's cleanup harmless. All bundled implementations follow this.
type Store interface {
	// Load retrieves the record. Returns ErrNotFound when no record
	// exists, meaning no prior run or the prior run already completed.
	Load(ctx context.Context) ([]byte, error)

	// Save writes or overwrites the record.
	Save(ctx context.Context, data []byte) error

	// Clean removes the record. Called after successful completion.
	// A missing record is treated as already clean.
	Clean(ctx context.Context) error

	// Close releases any resources (connections, pools).
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates no record exists at the store location.
	ErrNotFound = errors.New("checkpoint record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store closed")
)
