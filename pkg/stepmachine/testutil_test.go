package stepmachine_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/stepmachine/pkg/stepmachine"
	"github.com/randalmurphal/stepmachine/pkg/stepmachine/store"
)

// testContext is a minimal stepmachine.Context for exercising Next
// outside the engine.
type testContext struct {
	context.Context
}

func (testContext) Logger() *slog.Logger { return slog.Default() }
func (testContext) RunID() string        { return "test-run" }

func newTestContext(ctx context.Context) stepmachine.Context {
	return testContext{ctx}
}

// recorder observes which steps actually execute. Injected through the
// context so it survives the engine's snapshot round-trips.
type recorder struct {
	calls []string
}

type recorderKey struct{}

func withRecorder(ctx context.Context, r *recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

func record(ctx stepmachine.Context, step string) {
	if r, ok := ctx.Value(recorderKey{}).(*recorder); ok {
		r.calls = append(r.calls, step)
	}
}

// counterMachine counts up to Limit, one transition per increment.
type counterMachine struct {
	Current int `json:"current"`
	Limit   int `json:"limit"`
}

func (m counterMachine) Next(ctx stepmachine.Context) (*counterMachine, error) {
	record(ctx, fmt.Sprintf("count-%d", m.Current))
	if m.Current >= m.Limit {
		return nil, nil
	}
	m.Current++
	return &m, nil
}

// coin is a side of a tossed coin.
type coin string

const (
	coinHeads coin = "heads"
	coinTails coin = "tails"
)

// tossScript feeds deterministic toss results to the coin machine.
type tossScript struct {
	coins []coin
}

type tossScriptKey struct{}

func withTosses(ctx context.Context, coins ...coin) context.Context {
	return context.WithValue(ctx, tossScriptKey{}, &tossScript{coins: coins})
}

func drawCoin(ctx stepmachine.Context) coin {
	s, ok := ctx.Value(tossScriptKey{}).(*tossScript)
	if !ok || len(s.coins) == 0 {
		return coinHeads
	}
	c := s.coins[0]
	s.coins = s.coins[1:]
	return c
}

// tossMachine is the two-step coin machine: toss once, toss again, and
// fail when the coins land differently. A one-of struct keeps the JSON
// self-describing.
type tossMachine struct {
	First  *firstToss  `json:"first_toss,omitempty"`
	Second *secondToss `json:"second_toss,omitempty"`
}

func (m tossMachine) Next(ctx stepmachine.Context) (*tossMachine, error) {
	switch {
	case m.First != nil:
		return m.First.next(ctx)
	case m.Second != nil:
		return m.Second.next(ctx)
	}
	return nil, errors.New("empty machine")
}

func (m tossMachine) StepName() string {
	switch {
	case m.First != nil:
		return "first_toss"
	case m.Second != nil:
		return "second_toss"
	}
	return "empty"
}

type firstToss struct{}

func (s *firstToss) next(ctx stepmachine.Context) (*tossMachine, error) {
	record(ctx, "first_toss")
	return &tossMachine{Second: &secondToss{FirstCoin: drawCoin(ctx)}}, nil
}

type secondToss struct {
	FirstCoin coin `json:"first_coin"`
}

func (s *secondToss) next(ctx stepmachine.Context) (*tossMachine, error) {
	record(ctx, "second_toss")
	if drawCoin(ctx) != s.FirstCoin {
		return nil, errors.New("coins landed differently")
	}
	return nil, nil
}

// pipelineMachine models a three-stage job whose transform stage can be
// told to fail after partially mutating itself, for rollback tests.
type pipelineMachine struct {
	Stage string   `json:"stage"`
	Rows  []string `json:"rows,omitempty"`
}

func (m pipelineMachine) StepName() string { return m.Stage }

type failTransformKey struct{}

// withTransformFailure makes the transform stage fail while *fail is true.
func withTransformFailure(ctx context.Context, fail *bool) context.Context {
	return context.WithValue(ctx, failTransformKey{}, fail)
}

func (m pipelineMachine) Next(ctx stepmachine.Context) (*pipelineMachine, error) {
	record(ctx, m.Stage)
	switch m.Stage {
	case "extract":
		m.Rows = append(m.Rows, "raw")
		m.Stage = "transform"
		return &m, nil
	case "transform":
		// Mutate before failing so rollback is observable.
		m.Rows = append(m.Rows, "partial")
		if fail, ok := ctx.Value(failTransformKey{}).(*bool); ok && *fail {
			return nil, fmt.Errorf("transform rows: %w", errors.New("output directory missing"))
		}
		m.Stage = "load"
		return &m, nil
	case "load":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown stage %q", m.Stage)
}

// brokenStore wraps a MemoryStore and fails selected operations, for
// persistence-error tests.
type brokenStore struct {
	inner    *store.MemoryStore
	loadErr  error
	saveErr  error
	cleanErr error
}

func (b *brokenStore) Load(ctx context.Context) ([]byte, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return b.inner.Load(ctx)
}

func (b *brokenStore) Save(ctx context.Context, data []byte) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	return b.inner.Save(ctx, data)
}

func (b *brokenStore) Clean(ctx context.Context) error {
	if b.cleanErr != nil {
		return b.cleanErr
	}
	return b.inner.Clean(ctx)
}

func (b *brokenStore) Close() error { return b.inner.Close() }

// countingStore counts operations against the wrapped store.
type countingStore struct {
	inner store.Store
	ops   int
}

func (c *countingStore) Load(ctx context.Context) ([]byte, error) {
	c.ops++
	return c.inner.Load(ctx)
}

func (c *countingStore) Save(ctx context.Context, data []byte) error {
	c.ops++
	return c.inner.Save(ctx, data)
}

func (c *countingStore) Clean(ctx context.Context) error {
	c.ops++
	return c.inner.Clean(ctx)
}

func (c *countingStore) Close() error { return c.inner.Close() }

// loadCheckpoint decodes the persisted record as a checkpoint of M.
func loadCheckpoint[M any](ctx context.Context, st store.Store) (*stepmachine.Checkpoint[M], error) {
	data, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}
	return stepmachine.Unmarshal[M](data)
}
