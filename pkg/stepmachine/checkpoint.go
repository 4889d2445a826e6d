package stepmachine

import "encoding/json"

// Checkpoint is the durable record of a machine instance: the current
// state plus an optional pending error. Exactly one checkpoint exists
// per store location at any time.
//
// Error is non-empty only between a failed transition and an explicit
// DropError acknowledgement. While Error is set, State holds the value
// that was current before the failing attempt, never a partially
// consumed one.
//
// The wire form is JSON: {"state": <self-describing state>, "error": "..."}.
// The error field is omitted when empty; readers treating it as
// string-or-null decode both spellings identically.
type Checkpoint[S any] struct {
	State S      `json:"state"`
	Error string `json:"error,omitempty"`
}

// Marshal serializes the checkpoint to indented JSON, the format
// written to the store. Indentation keeps file-backed records readable
// by the operator who has to fix whatever made a step fail.
func (c *Checkpoint[S]) Marshal() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Unmarshal deserializes a checkpoint from JSON.
func Unmarshal[S any](data []byte) (*Checkpoint[S], error) {
	var c Checkpoint[S]
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
