package otel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordHelpers_NoopBeforeInit(t *testing.T) {
	Metrics = nil
	ctx := context.Background()

	assert.NotPanics(t, func() {
		RecordSearch(ctx, "fts", "page", time.Millisecond)
		RecordError(ctx, "search")
		RecordSeeded(ctx, 10)
		RecordExport(ctx, true)
	})
}

func TestInitMetrics_RecordsSearches(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() {
		otel.SetMeterProvider(prev)
		Metrics = nil
	})

	require.NoError(t, InitMetrics())
	ctx := context.Background()
	RecordSearch(ctx, "fts", "page", 20*time.Millisecond)
	RecordSearch(ctx, "fts", "empty", 5*time.Millisecond)
	RecordSeeded(ctx, 500)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
			if m.Name == "book_search_requests_total" {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				assert.Len(t, sum.DataPoints, 2)
			}
		}
	}
	assert.True(t, found["book_search_requests_total"])
	assert.True(t, found["book_search_duration_seconds"])
	assert.True(t, found["book_search_seeded_total"])
}
