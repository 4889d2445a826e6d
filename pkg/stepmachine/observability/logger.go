// Package observability provides production-grade observability for
// stepmachine: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds stepmachine context to a logger.
// Returns a new logger with run_id and step fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "run-123", "second_toss")
//	enriched.Info("doing work") // includes run_id, step
func EnrichLogger(logger *slog.Logger, runID, step string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.String("step", step),
	)
}

// LogRunStart logs the start of a run.
func LogRunStart(logger *slog.Logger, runID string) {
	if logger == nil {
		return
	}
	logger.Info("run starting",
		slog.String("run_id", runID),
	)
}

// LogRunComplete logs successful run completion.
func LogRunComplete(logger *slog.Logger, runID string, durationMs float64, stepCount int) {
	if logger == nil {
		return
	}
	logger.Info("run completed",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("steps_executed", stepCount),
	)
}

// LogRunError logs run failure.
func LogRunError(logger *slog.Logger, runID string, err error, durationMs float64, lastStep string) {
	if logger == nil {
		return
	}
	logger.Error("run failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.String("last_step", lastStep),
	)
}

// LogRestore logs a checkpoint restore.
func LogRestore(logger *slog.Logger, runID, step string, errorPending bool) {
	if logger == nil {
		return
	}
	logger.Info("checkpoint restored",
		slog.String("run_id", runID),
		slog.String("step", step),
		slog.Bool("error_pending", errorPending),
	)
}

// LogStepStart logs step execution start.
func LogStepStart(logger *slog.Logger, step string) {
	if logger == nil {
		return
	}
	logger.Debug("step starting",
		slog.String("step", step),
	)
}

// LogStepComplete logs successful step completion.
func LogStepComplete(logger *slog.Logger, step string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("step completed",
		slog.String("step", step),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogStepFailed logs step execution failure.
func LogStepFailed(logger *slog.Logger, step string, err error) {
	if logger == nil {
		return
	}
	logger.Error("step failed",
		slog.String("step", step),
		slog.String("error", err.Error()),
	)
}

// LogCheckpoint logs a checkpoint write.
func LogCheckpoint(logger *slog.Logger, step string, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint saved",
		slog.String("step", step),
		slog.Int("size_bytes", sizeBytes),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
