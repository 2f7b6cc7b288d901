package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "saasforge"

// Metrics holds all SaaSForge metric instruments.
type Metrics struct {
	ToolsCreated      metric.Int64Counter
	ToolsPublished    metric.Int64Counter
	ToolsCloned       metric.Int64Counter
	TemplatesCloned   metric.Int64Counter
	RecordWrites      metric.Int64Counter
	WebhookDeliveries metric.Int64Counter
	WebhookFailures   metric.Int64Counter
	GenerationJobs    metric.Int64Counter
	CloneDuration     metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.ToolsCreated, err = meter.Int64Counter("saasforge.tools.created",
		metric.WithDescription("Number of tools created"))
	if err != nil {
		return nil, err
	}

	m.ToolsPublished, err = meter.Int64Counter("saasforge.tools.published",
		metric.WithDescription("Number of tools published to the marketplace"))
	if err != nil {
		return nil, err
	}

	m.ToolsCloned, err = meter.Int64Counter("saasforge.tools.cloned",
		metric.WithDescription("Number of marketplace tool clones"))
	if err != nil {
		return nil, err
	}

	m.TemplatesCloned, err = meter.Int64Counter("saasforge.templates.cloned",
		metric.WithDescription("Number of gallery template clones"))
	if err != nil {
		return nil, err
	}

	m.RecordWrites, err = meter.Int64Counter("saasforge.records.writes",
		metric.WithDescription("Number of dynamic record mutations"))
	if err != nil {
		return nil, err
	}

	m.WebhookDeliveries, err = meter.Int64Counter("saasforge.webhooks.delivered",
		metric.WithDescription("Number of successful webhook deliveries"))
	if err != nil {
		return nil, err
	}

	m.WebhookFailures, err = meter.Int64Counter("saasforge.webhooks.failed",
		metric.WithDescription("Number of webhook deliveries that exhausted retries"))
	if err != nil {
		return nil, err
	}

	m.GenerationJobs, err = meter.Int64Counter("saasforge.generation.jobs",
		metric.WithDescription("Number of generation jobs submitted"))
	if err != nil {
		return nil, err
	}

	m.CloneDuration, err = meter.Float64Histogram("saasforge.clone.duration_seconds",
		metric.WithDescription("Clone duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
