package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const searchDurationMetric = "book_search_duration_seconds"

// Metrics holds all OTel metric instruments for book-search.
// It stays nil until InitMetrics runs; the Record helpers are no-ops until then.
var Metrics *BookSearchMetrics

// BookSearchMetrics contains all metric instruments.
type BookSearchMetrics struct {
	SearchRequests  metric.Int64Counter
	SearchDuration  metric.Float64Histogram
	ErrorsTotal     metric.Int64Counter
	SeededDocuments metric.Int64Counter
	ExportsTotal    metric.Int64Counter
}

// InitMetrics initializes all metric instruments.
func InitMetrics() error {
	meter := otel.Meter("book-search")

	searchRequests, err := meter.Int64Counter("book_search_requests_total",
		metric.WithDescription("Total number of book searches by outcome"),
	)
	if err != nil {
		return err
	}

	searchDuration, err := meter.Float64Histogram(searchDurationMetric,
		metric.WithDescription("Search duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	errorsTotal, err := meter.Int64Counter("book_search_errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return err
	}

	seeded, err := meter.Int64Counter("book_search_seeded_total",
		metric.WithDescription("Total number of books bulk indexed into an empty search index"),
	)
	if err != nil {
		return err
	}

	exports, err := meter.Int64Counter("book_export_total",
		metric.WithDescription("Total number of book exports to object storage"),
	)
	if err != nil {
		return err
	}

	Metrics = &BookSearchMetrics{
		SearchRequests:  searchRequests,
		SearchDuration:  searchDuration,
		ErrorsTotal:     errorsTotal,
		SeededDocuments: seeded,
		ExportsTotal:    exports,
	}

	return nil
}

func RecordSearch(ctx context.Context, backend, outcome string, elapsed time.Duration) {
	if Metrics == nil {
		return
	}
	Metrics.SearchRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("outcome", outcome),
	))
	Metrics.SearchDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("backend", backend),
	))
}

func RecordError(ctx context.Context, operation string) {
	if Metrics == nil {
		return
	}
	Metrics.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

func RecordSeeded(ctx context.Context, n int64) {
	if Metrics == nil || n == 0 {
		return
	}
	Metrics.SeededDocuments.Add(ctx, n)
}

func RecordExport(ctx context.Context, existed bool) {
	if Metrics == nil {
		return
	}
	Metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("existed", existed)))
}
