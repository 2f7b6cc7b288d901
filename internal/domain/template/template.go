// Package template defines marketplace blueprints and the clone records
// tracking which tenant instantiated which template.
package template

import (
	"time"

	"github.com/saasforge/saasforge/internal/domain/schema"
)

// PageSpec is one page seeded into a cloned tool, with the module type
// and collection binding the page's initial instance uses.
type PageSpec struct {
	Name       string         `json:"name"`
	ModuleSlug string         `json:"module_slug"`
	Collection string         `json:"collection"`
	Config     map[string]any `json:"config,omitempty"`
}

// Template is a published blueprint. Templates are previewed and cloned,
// never rendered directly to end users.
type Template struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	Tags          []string          `json:"tags"`
	ColorTheme    string            `json:"color_theme"`
	SchemaConfig  schema.Descriptor `json:"schema_config"`
	DefaultPages  []PageSpec        `json:"default_pages"`
	PreviewImages []string          `json:"preview_images"`
	IsPublic      bool              `json:"is_public"`
	IsPremium     bool              `json:"is_premium"`
	Price         int64             `json:"price"` // cents
	CreatorID     string            `json:"creator_id,omitempty"`
	RevenueShare  float64           `json:"revenue_share"`
	ClonesCount   int               `json:"clones_count"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Clone source values.
const (
	SourceGallery     = "gallery"
	SourceAIGenerated = "ai-generated"
	SourceAdmin       = "admin"
	SourceImport      = "import"
)

// Clone status values.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusDeleted  = "deleted"
)

// Clone records one tenant's instantiation of a template. At most one
// active clone per (tenant, template) pair.
type Clone struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	TemplateID   string    `json:"template_id"`
	ToolID       string    `json:"tool_id"`
	SnapshotName string    `json:"snapshot_name"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	ClonedAt     time.Time `json:"cloned_at"`
}
