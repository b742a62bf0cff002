// Package observability instruments the ledger's critical paths with
// OpenTelemetry metrics. Exporter setup is the host process's concern; this
// package only records against whatever meter provider it is given.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/hydrohub/ledger"

// Metrics holds the ledger instruments.
type Metrics struct {
	appendCounter  metric.Int64Counter
	appendDuration metric.Float64Histogram
	verifyCounter  metric.Int64Counter
	checkedCounter metric.Int64Counter
}

// NewMetrics creates instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithProvider(otel.GetMeterProvider())
}

// NewMetricsWithProvider creates instruments on mp. Tests pass a provider
// backed by a manual reader.
func NewMetricsWithProvider(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)

	appendCounter, err := meter.Int64Counter("ledger.appends",
		metric.WithDescription("Entries committed to the ledger"))
	if err != nil {
		return nil, err
	}
	appendDuration, err := meter.Float64Histogram("ledger.append.duration",
		metric.WithDescription("Append latency"), metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	verifyCounter, err := meter.Int64Counter("ledger.verifications",
		metric.WithDescription("Verification runs by outcome"))
	if err != nil {
		return nil, err
	}
	checkedCounter, err := meter.Int64Counter("ledger.verified.entries",
		metric.WithDescription("Entries link-checked during verification"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		appendCounter:  appendCounter,
		appendDuration: appendDuration,
		verifyCounter:  verifyCounter,
		checkedCounter: checkedCounter,
	}, nil
}

// RecordAppend records one committed entry.
func (m *Metrics) RecordAppend(ctx context.Context, kind string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("event_kind", kind))
	m.appendCounter.Add(ctx, 1, attrs)
	m.appendDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordVerify records one verification run.
func (m *Metrics) RecordVerify(ctx context.Context, ok bool, checked int) {
	m.verifyCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("ok", ok)))
	m.checkedCounter.Add(ctx, int64(checked))
}
