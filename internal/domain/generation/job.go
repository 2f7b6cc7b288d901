// Package generation models asynchronous AI schema-generation jobs. The
// generator itself is an external worker; the core records jobs, publishes
// requests to the queue and materializes tools from the results.
package generation

import (
	"fmt"
	"time"

	"github.com/saasforge/saasforge/internal/domain"
	"github.com/saasforge/saasforge/internal/domain/schema"
)

// Job states.
const (
	StateQueued    = "queued"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// Job is one generation request submitted by a tenant.
type Job struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Prompt      string    `json:"prompt"`
	State       string    `json:"state"`
	Error       string    `json:"error,omitempty"`
	ToolID      string    `json:"tool_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Request is published to the queue for the external generator.
type Request struct {
	JobID    string `json:"job_id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Prompt   string `json:"prompt"`
}

// Result is consumed from the queue when the generator finishes.
type Result struct {
	JobID  string            `json:"job_id"`
	Schema schema.Descriptor `json:"schema"`
	Pages  []string          `json:"pages,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// ValidateSubmission checks a new job before it is queued.
func ValidateSubmission(name, prompt string) error {
	if name == "" {
		return fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if len(name) > 255 {
		return fmt.Errorf("name exceeds 255 characters: %w", domain.ErrValidation)
	}
	if prompt == "" {
		return fmt.Errorf("prompt is required: %w", domain.ErrValidation)
	}
	if len(prompt) > 8000 {
		return fmt.Errorf("prompt exceeds 8000 characters: %w", domain.ErrValidation)
	}
	return nil
}
