package stepmachine

import "fmt"

// State is the unit of resumable work. The type parameter S is the
// machine's own sum type: a closed set of step variants, each carrying
// the data it needs to perform its step and compute the successor.
//
// Next performs the current step and returns the next state, or nil
// when the machine has reached its terminal condition. An error is a
// recoverable domain failure, typically something fixable in the
// external world (a missing directory, a business-rule violation); the
// engine records it without interpreting it.
//
// The engine invokes Next at most once per durable step, on a copy
// decoded from the pre-attempt snapshot if a previous attempt failed.
// S must round-trip through encoding/json without loss, and the
// encoding must be self-describing: decoding a checkpoint must pick the
// right variant with no external hints. A struct with one pointer field
// per variant (exactly one non-nil) satisfies both requirements, as
// does a tag-plus-payload envelope with a custom UnmarshalJSON.
type State[S any] interface {
	Next(ctx Context) (*S, error)
}

// Namer is optionally implemented by states to report the name of the
// current step. The name appears in logs, metrics, and trace spans.
// States that do not implement Namer are identified by their Go type.
type Namer interface {
	StepName() string
}

// stepName returns the log/metric identity of a state value.
func stepName(v any) string {
	if n, ok := v.(Namer); ok {
		return n.StepName()
	}
	return fmt.Sprintf("%T", v)
}
