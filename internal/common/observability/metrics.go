package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Transport labels for request instruments.
const (
	TransportHTTP  = "http"
	TransportZeebe = "zeebe"
)

// Observability owns the OpenTelemetry meter for prediction requests. The
// zero value is usable and records nothing.
type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	requestCounter  otelmetric.Int64Counter
	requestDuration otelmetric.Float64Histogram
	textLength      otelmetric.Int64Histogram
}

// New exports through the default Prometheus registry, so it is served by /metrics.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	o, err := NewWithReader(serviceName, exporter)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(o.meterProvider)
	return o, nil
}

// NewWithReader builds the meter on an arbitrary reader, e.g. a ManualReader in tests.
func NewWithReader(serviceName string, reader metric.Reader) (*Observability, error) {
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	meter := provider.Meter(serviceName)

	requestCounter, err := meter.Int64Counter(
		"predictions.requests",
		otelmetric.WithDescription("Number of prediction requests processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram(
		"predictions.duration",
		otelmetric.WithDescription("Prediction request duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	textLength, err := meter.Int64Histogram(
		"predictions.text_length",
		otelmetric.WithDescription("Length of the case text in characters"),
		otelmetric.WithExplicitBucketBoundaries(0, 100, 300, 500, 1000, 5000, 20000),
	)
	if err != nil {
		return nil, fmt.Errorf("create text length histogram: %w", err)
	}

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
		textLength:      textLength,
	}, nil
}

// NewNoop returns an Observability that records nothing.
func NewNoop() *Observability {
	return &Observability{}
}

// RecordRequest records one prediction request served by transport.
func (o *Observability) RecordRequest(ctx context.Context, transport, status string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("transport", transport),
		attribute.String("status", status),
	)
	if o.requestCounter != nil {
		o.requestCounter.Add(ctx, 1, attrs)
	}
	if o.requestDuration != nil {
		o.requestDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}

// RecordTextLength records the size of an accepted case body.
func (o *Observability) RecordTextLength(ctx context.Context, transport string, length int) {
	if o == nil || o.textLength == nil {
		return
	}
	o.textLength.Record(ctx, int64(length), otelmetric.WithAttributes(
		attribute.String("transport", transport),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
