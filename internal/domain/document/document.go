// Package document models schema-less records in tenant-scoped dynamic
// collections. Records are opaque attribute maps; the store adds reserved
// system fields that are stripped before returning payloads to callers.
package document

import (
	"fmt"
	"regexp"
	"time"

	"github.com/saasforge/saasforge/internal/domain"
)

// Reserved system field names. Callers may not set them; Strip removes
// them from outbound payloads except for "id".
const (
	FieldID        = "id"
	FieldTenantID  = "tenant_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Document is one record in a dynamic collection.
type Document struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"-"`
	Collection string         `json:"-"`
	Data       map[string]any `json:"data"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

var collectionRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// ValidateCollectionName rejects collection names that could not have come
// from a schema descriptor.
func ValidateCollectionName(name string) error {
	if !collectionRe.MatchString(name) {
		return fmt.Errorf("invalid collection name %q: %w", name, domain.ErrValidation)
	}
	return nil
}

// SanitizeData returns a copy of data with reserved system fields removed.
// Callers cannot overwrite id, tenant or timestamp fields through the
// record payload.
func SanitizeData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch k {
		case FieldID, FieldTenantID, FieldCreatedAt, FieldUpdatedAt:
			continue
		}
		out[k] = v
	}
	return out
}

// Render flattens a document into the caller-facing payload: the data map
// plus id and timestamps, with tenant scoping hidden.
func (d Document) Render() map[string]any {
	out := make(map[string]any, len(d.Data)+3)
	for k, v := range d.Data {
		out[k] = v
	}
	out[FieldID] = d.ID
	out[FieldCreatedAt] = d.CreatedAt
	out[FieldUpdatedAt] = d.UpdatedAt
	return out
}
