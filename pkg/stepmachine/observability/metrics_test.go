package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns a reader
// to collect from, plus a cleanup function.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}
	return reader, cleanup
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// newTestRecorder builds a recorder against the current (test) meter
// provider, bypassing the lazily cached default instance.
func newTestRecorder(t *testing.T) MetricsRecorder {
	m, err := newOtelMetrics()
	require.NoError(t, err)
	return m
}

func TestRecordStepExecution(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := newTestRecorder(t)
	ctx := context.Background()

	recorder.RecordStepExecution(ctx, "first_toss", 25*time.Millisecond, nil)
	recorder.RecordStepExecution(ctx, "second_toss", 30*time.Millisecond, errors.New("boom"))

	rm := collectMetrics(t, reader)

	executions := findMetric(rm, "stepmachine.step.executions")
	require.NotNil(t, executions)
	sum, ok := executions.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	stepErrors := findMetric(rm, "stepmachine.step.errors")
	require.NotNil(t, stepErrors)
	errSum, ok := stepErrors.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var errTotal int64
	for _, dp := range errSum.DataPoints {
		errTotal += dp.Value
	}
	assert.Equal(t, int64(1), errTotal)

	latency := findMetric(rm, "stepmachine.step.latency_ms")
	assert.NotNil(t, latency)
}

func TestRecordRun(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := newTestRecorder(t)
	ctx := context.Background()

	recorder.RecordRun(ctx, true, 100*time.Millisecond)
	recorder.RecordRun(ctx, false, 50*time.Millisecond)

	rm := collectMetrics(t, reader)

	runs := findMetric(rm, "stepmachine.run.runs")
	require.NotNil(t, runs)
	sum, ok := runs.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	latency := findMetric(rm, "stepmachine.run.latency_ms")
	assert.NotNil(t, latency)
}

func TestRecordCheckpoint(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := newTestRecorder(t)
	recorder.RecordCheckpoint(context.Background(), "second_toss", 256)

	rm := collectMetrics(t, reader)

	size := findMetric(rm, "stepmachine.checkpoint.size_bytes")
	require.NotNil(t, size)
	hist, ok := size.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.NotEmpty(t, hist.DataPoints)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	// NewMetricsRecorder uses the global provider
	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
}
