// Package webhook defines per-collection webhook registrations and the
// delivery payload pushed through the message queue.
package webhook

import (
	"fmt"
	"strings"
	"time"

	"github.com/saasforge/saasforge/internal/domain"
)

// Events a webhook can subscribe to, named after the record mutation verb.
const (
	EventCreate = "POST"
	EventUpdate = "PUT"
	EventDelete = "DELETE"
)

// Webhook is one tenant-owned registration for a dynamic collection.
type Webhook struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	CollectionName string    `json:"collection_name"`
	Event          string    `json:"event"`
	URL            string    `json:"url"`
	Secret         string    `json:"secret,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks the registration fields.
func (w Webhook) Validate() error {
	if w.CollectionName == "" {
		return fmt.Errorf("collection_name is required: %w", domain.ErrValidation)
	}
	switch w.Event {
	case EventCreate, EventUpdate, EventDelete:
	default:
		return fmt.Errorf("unknown event %q: %w", w.Event, domain.ErrValidation)
	}
	if !strings.HasPrefix(w.URL, "https://") && !strings.HasPrefix(w.URL, "http://") {
		return fmt.Errorf("url must be http(s): %w", domain.ErrValidation)
	}
	return nil
}

// Delivery is the payload published to the queue for the delivery worker.
type Delivery struct {
	DeliveryID string         `json:"delivery_id"`
	WebhookID  string         `json:"webhook_id"`
	TenantID   string         `json:"tenant_id"`
	Collection string         `json:"collection"`
	Event      string         `json:"event"`
	URL        string         `json:"url"`
	Secret     string         `json:"secret,omitempty"`
	Record     map[string]any `json:"record"`
	OccurredAt time.Time      `json:"occurred_at"`
}
