package stepmachine

import (
	"errors"
	"fmt"
	"strings"
)

// StepError reports a domain-level failure: either a transition
// returned an error during this run, or a previous run left an
// unacknowledged failure in the checkpoint.
//
// A step error is sticky. It blocks subsequent Run calls until the
// caller clears it with DropError, so a step that may already have
// produced an external side effect is never re-attempted unattended.
type StepError struct {
	// Step is a debug rendering of the state the failure applies to.
	Step string
	// Message is the failure text, including its causal chain.
	Message string
	// Err is the underlying error from the transition. It is nil when
	// the failure was rehydrated from a stored checkpoint.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StepError) Unwrap() error {
	return e.Err
}

// PersistenceError reports an I/O or codec failure from the store or
// from checkpoint (de)serialization. It is always fatal to the current
// Run call and signals that the durability guarantee itself may be
// broken: no checkpoint mutation is guaranteed to have landed.
type PersistenceError struct {
	// Op is the operation that failed ("load", "save", "clean",
	// "encode", "decode", "snapshot", "rollback").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ErrorChain formats an error together with its full causal chain: the
// top-level message, then a "Caused by:" header and one tab-indented
// line per nested cause in unwrap order. This is the text recorded in
// the checkpoint when a step fails.
func ErrorChain(err error) string {
	var b strings.Builder
	b.WriteString(err.Error())

	cause := errors.Unwrap(err)
	if cause != nil {
		b.WriteString("\nCaused by:")
	}
	for cause != nil {
		b.WriteString("\n\t")
		b.WriteString(cause.Error())
		cause = errors.Unwrap(cause)
	}
	return b.String()
}
