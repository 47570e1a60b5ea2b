// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records job and evaluation metrics through OpenTelemetry.
// A nil *Observability records nothing.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	evalCounter   otelmetric.Int64Counter
}

// New registers the exporter with the default prometheus registry, which is
// what /metrics serves.
func New(serviceName string) *Observability {
	return NewWithRegisterer(serviceName, promclient.DefaultRegisterer)
}

// NewWithRegisterer is New with an explicit registry. A failing exporter
// yields a value whose Record methods do nothing.
func NewWithRegisterer(serviceName string, reg promclient.Registerer) *Observability {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	evalCounter, _ := meter.Int64Counter(
		"evaluations.scored",
		otelmetric.WithDescription("Number of candidate evaluations scored"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		jobCounter:    jobCounter,
		jobDuration:   jobDuration,
		evalCounter:   evalCounter,
	}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o != nil && o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o != nil && o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordEvaluation(ctx context.Context, tool, verdict string) {
	if o != nil && o.evalCounter != nil {
		o.evalCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("verdict", verdict),
		))
	}
}

func (o *Observability) Shutdown() {
	if o != nil && o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
