package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Observability owns the OpenTelemetry meter provider and the workflow
// instruments. Its exporter writes into a Prometheus registry so the otel
// instruments and the promauto collectors share one /metrics endpoint.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	gatherer      promclient.Gatherer
	runCounter    otelmetric.Int64Counter
	runDuration   otelmetric.Float64Histogram
	stageDuration otelmetric.Float64Histogram
	stageItems    otelmetric.Int64Counter
}

type Options struct {
	ServiceName string
	// Registerer receives the otel exporter's collector. Defaults to the
	// Prometheus default registerer.
	Registerer promclient.Registerer
	Gatherer   promclient.Gatherer
	// SetGlobal installs the provider as the otel global meter provider.
	SetGlobal bool
}

func New(opts Options) (*Observability, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = "lead-pipeline"
	}
	if opts.Registerer == nil {
		opts.Registerer = promclient.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = promclient.DefaultGatherer
	}

	exporter, err := prometheus.New(prometheus.WithRegisterer(opts.Registerer))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", opts.ServiceName))
	provider := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(res),
	)
	if opts.SetGlobal {
		otel.SetMeterProvider(provider)
	}

	o := &Observability{
		meterProvider: provider,
		meter:         provider.Meter(opts.ServiceName),
		gatherer:      opts.Gatherer,
	}

	if o.runCounter, err = o.meter.Int64Counter(
		"workflow.runs",
		otelmetric.WithDescription("Number of workflow runs by status"),
	); err != nil {
		return nil, err
	}
	if o.runDuration, err = o.meter.Float64Histogram(
		"workflow.duration",
		otelmetric.WithDescription("Workflow run duration"),
		otelmetric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if o.stageDuration, err = o.meter.Float64Histogram(
		"workflow.stage.duration",
		otelmetric.WithDescription("Workflow stage duration"),
		otelmetric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if o.stageItems, err = o.meter.Int64Counter(
		"workflow.stage.items",
		otelmetric.WithDescription("Items handled per workflow stage by result"),
	); err != nil {
		return nil, err
	}
	return o, nil
}

// RecordRun counts one finished workflow run.
func (o *Observability) RecordRun(ctx context.Context, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	o.runCounter.Add(ctx, 1, attrs)
	o.runDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordStage records one stage boundary of a workflow run.
func (o *Observability) RecordStage(ctx context.Context, stage string, duration time.Duration, succeeded, failed int) {
	stageAttr := attribute.String("stage", stage)
	o.stageDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(stageAttr))
	if succeeded > 0 {
		o.stageItems.Add(ctx, int64(succeeded), otelmetric.WithAttributes(stageAttr, attribute.String("result", "success")))
	}
	if failed > 0 {
		o.stageItems.Add(ctx, int64(failed), otelmetric.WithAttributes(stageAttr, attribute.String("result", "failure")))
	}
}

// Handler serves the Prometheus exposition of every registered collector.
func (o *Observability) Handler() http.Handler {
	return promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{})
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
