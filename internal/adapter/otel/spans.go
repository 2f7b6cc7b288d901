package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "saasforge"

// StartCloneSpan starts a span for a template or marketplace clone.
func StartCloneSpan(ctx context.Context, sourceID, tenantID, source string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "clone",
		trace.WithAttributes(
			attribute.String("clone.source_id", sourceID),
			attribute.String("clone.tenant_id", tenantID),
			attribute.String("clone.source", source),
		),
	)
}

// StartResolveSpan starts a span for a public vanity resolution.
func StartResolveSpan(ctx context.Context, slug, emailPrefix string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "resolve",
		trace.WithAttributes(
			attribute.String("tool.slug", slug),
			attribute.String("tool.email_prefix", emailPrefix),
		),
	)
}

// StartGenerationSpan starts a span for materializing a generation job result.
func StartGenerationSpan(ctx context.Context, jobID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "generation",
		trace.WithAttributes(
			attribute.String("job.id", jobID),
		),
	)
}

// StartDeliverySpan starts a span for one webhook delivery attempt chain.
func StartDeliverySpan(ctx context.Context, webhookID, collection, event string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "webhook.delivery",
		trace.WithAttributes(
			attribute.String("webhook.id", webhookID),
			attribute.String("webhook.collection", collection),
			attribute.String("webhook.event", event),
		),
	)
}
