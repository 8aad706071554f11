package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ETLMetrics holds the instruments recorded by the pipeline.
// A nil *ETLMetrics records nothing.
type ETLMetrics struct {
	documents        metric.Int64Counter
	rows             metric.Int64Counter
	duplicates       metric.Int64Counter
	documentDuration metric.Float64Histogram
}

// NewETLMetrics creates the pipeline instruments on meter
func NewETLMetrics(meter metric.Meter) (*ETLMetrics, error) {
	documents, err := meter.Int64Counter(
		"sipot_documents",
		metric.WithDescription("Documents processed, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	rows, err := meter.Int64Counter(
		"sipot_rows",
		metric.WithDescription("Rows written, by table"),
	)
	if err != nil {
		return nil, err
	}

	duplicates, err := meter.Int64Counter(
		"sipot_duplicates_removed",
		metric.WithDescription("Exact duplicate rows removed during aggregation, by table"),
	)
	if err != nil {
		return nil, err
	}

	documentDuration, err := meter.Float64Histogram(
		"sipot_document_duration",
		metric.WithDescription("Time spent reading and normalizing one document"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ETLMetrics{
		documents:        documents,
		rows:             rows,
		duplicates:       duplicates,
		documentDuration: documentDuration,
	}, nil
}

// RecordDocument counts one processed document and its duration
func (m *ETLMetrics) RecordDocument(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.documents.Add(ctx, 1, attrs)
	m.documentDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRows counts rows of a final table
func (m *ETLMetrics) RecordRows(ctx context.Context, table string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rows.Add(ctx, int64(n), metric.WithAttributes(attribute.String("table", table)))
}

// RecordDuplicates counts duplicate rows removed from a table
func (m *ETLMetrics) RecordDuplicates(ctx context.Context, table string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.duplicates.Add(ctx, int64(n), metric.WithAttributes(attribute.String("table", table)))
}
