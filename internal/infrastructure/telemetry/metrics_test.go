package telemetry_test

import (
	"context"
	"testing"

	"github.com/comanda/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

// newTestMeter returns a meter backed by a manual reader so tests can collect what was recorded.
func newTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func intSum(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{ServiceName: "comanda-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestCounter(t *testing.T) {
	mp, reader := newTestMeter(t)
	ctx := context.Background()

	c, err := telemetry.NewCounter(mp.Meter("test"), "probe_total", "Probes", "{probes}")
	require.NoError(t, err)

	c.Inc(ctx, telemetry.AttrCategory.String("drinks"))
	c.Add(ctx, 4, telemetry.AttrCategory.String("drinks"))
	c.Inc(ctx, telemetry.AttrCategory.String("food"))

	m := collect(t, reader)["probe_total"]
	assert.Equal(t, int64(5), intSum(t, m, telemetry.AttrCategory.String("drinks")))
	assert.Equal(t, int64(1), intSum(t, m, telemetry.AttrCategory.String("food")))
}

func TestFloatCounter_DropsNegative(t *testing.T) {
	mp, reader := newTestMeter(t)
	ctx := context.Background()

	c, err := telemetry.NewFloatCounter(mp.Meter("test"), "amount_total", "Amount", "BRL")
	require.NoError(t, err)

	c.Add(ctx, 12.5)
	c.Add(ctx, -3)
	c.Add(ctx, 7.5)

	sum, ok := collect(t, reader)["amount_total"].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.InDelta(t, 20.0, sum.DataPoints[0].Value, 1e-9)
}

func TestHistogram_Boundaries(t *testing.T) {
	mp, reader := newTestMeter(t)
	ctx := context.Background()

	h, err := telemetry.NewHistogram(mp.Meter("test"), telemetry.HistogramOpts{
		Name:       "tab_value",
		Unit:       "BRL",
		Boundaries: telemetry.TabValueBuckets,
	})
	require.NoError(t, err)

	h.Record(ctx, 42)
	h.Record(ctx, 180)

	hist, ok := collect(t, reader)["tab_value"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	dp := hist.DataPoints[0]
	assert.Equal(t, uint64(2), dp.Count)
	assert.InDelta(t, 222.0, dp.Sum, 1e-9)
	assert.Equal(t, telemetry.TabValueBuckets, dp.Bounds)
}
