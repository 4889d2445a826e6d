package stepmachine

import (
	"log/slog"

	"github.com/randalmurphal/stepmachine/pkg/stepmachine/observability"
)

// engineConfig holds configuration applied at engine construction.
type engineConfig struct {
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	runID          string
}

// defaultEngineConfig returns the default configuration: no logging,
// no-op metrics and tracing.
func defaultEngineConfig() engineConfig {
	return engineConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures an Engine at construction.
type Option func(*engineConfig)

// WithLogger sets the structured logger for the engine. Logs include
// run_id, step, and duration_ms fields. A nil logger disables logging
// (the default).
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics recording.
//
// The recorder uses the global OTel meter provider; configure the
// provider before running the engine.
func WithMetrics(enabled bool) Option {
	return func(c *engineConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry tracing. Each run produces a
// stepmachine.run span with one child span per step.
//
// The span manager uses the global OTel tracer provider; configure the
// provider before running the engine.
func WithTracing(enabled bool) Option {
	return func(c *engineConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithRunID sets the run identifier used in logs, metrics, and traces.
// If not set, a UUID is auto-generated at construction.
func WithRunID(id string) Option {
	return func(c *engineConfig) {
		if id != "" {
			c.runID = id
		}
	}
}
