// Package messagequeue defines the message queue port (interface).
package messagequeue

import "context"

// Handler processes a message received from the queue.
type Handler func(ctx context.Context, subject string, data []byte) error

// Queue is the port interface for publishing and subscribing to messages.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Close shuts down the queue connection.
	Close() error
}

// Subjects used across the platform.
const (
	// Generation job lifecycle: the core publishes requests, the external
	// generator publishes results.
	SubjectGenerationRequested = "generation.requested"
	SubjectGenerationCompleted = "generation.completed"

	// Record mutations in dynamic collections, consumed by the webhook
	// dispatcher and analytics.
	SubjectRecordChanged = "records.changed"

	// Webhook deliveries picked up by the delivery worker.
	SubjectWebhookDeliver = "webhooks.deliver"

	// Marketplace lifecycle events for live dashboards.
	SubjectToolPublished = "tools.published"
	SubjectToolCloned    = "tools.cloned"
)
