// Package database defines the persistence port.
package database

import (
	"context"

	"github.com/saasforge/saasforge/internal/domain/document"
	"github.com/saasforge/saasforge/internal/domain/generation"
	"github.com/saasforge/saasforge/internal/domain/review"
	"github.com/saasforge/saasforge/internal/domain/template"
	"github.com/saasforge/saasforge/internal/domain/tenant"
	"github.com/saasforge/saasforge/internal/domain/tool"
	"github.com/saasforge/saasforge/internal/domain/webhook"
)

// MarketplaceQuery filters and orders the public tool listing.
type MarketplaceQuery struct {
	Search   string
	Category string
	Sort     string // "popular" | "newest" | "rating"
}

// Store is the persistence port. Tenant-scoped methods read the tenant id
// from the request context; methods documented as public or admin do not.
type Store interface {
	// Tools (tenant scoped unless noted)
	CreateTool(ctx context.Context, t *tool.Tool) error
	GetTool(ctx context.Context, id string) (*tool.Tool, error)
	ListTools(ctx context.Context) ([]tool.Tool, error)
	UpdateTool(ctx context.Context, t *tool.Tool) error
	DeleteTool(ctx context.Context, id string) error

	// Marketplace reads are public: they only ever return published tools.
	GetPublishedTool(ctx context.Context, id string) (*tool.Tool, error)
	ListMarketplaceTools(ctx context.Context, q MarketplaceQuery) ([]tool.Tool, error)
	ResolveVanity(ctx context.Context, slug, emailPrefix string) (*tool.Tool, error)

	IncrementToolClones(ctx context.Context, id string) error
	SetToolApproval(ctx context.Context, id string, approved bool) error // admin
	SetToolRating(ctx context.Context, id string, rating float64, count int) error

	// Templates (public reads, admin writes)
	ListTemplates(ctx context.Context) ([]template.Template, error)
	ListAllTemplates(ctx context.Context) ([]template.Template, error) // admin
	GetTemplate(ctx context.Context, id string) (*template.Template, error)
	GetTemplateBySlug(ctx context.Context, slug string) (*template.Template, error)
	CreateTemplate(ctx context.Context, t *template.Template) error
	UpdateTemplate(ctx context.Context, t *template.Template) error
	DeleteTemplate(ctx context.Context, id string) error
	IncrementTemplateClones(ctx context.Context, id string) error

	// Template clone records (tenant scoped)
	CreateTemplateClone(ctx context.Context, c *template.Clone) error
	ListTemplateClones(ctx context.Context) ([]template.Clone, error)

	// Tenants
	CreateTenant(ctx context.Context, t *tenant.Tenant) error
	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)
	ListTenants(ctx context.Context) ([]tenant.Tenant, error) // admin
	UpdateTenantPlan(ctx context.Context, id string, plan tenant.Plan) error
	RecordClonedTool(ctx context.Context, tenantID, toolID string) error
	CreditEarnings(ctx context.Context, tenantID string, amountCents int64) error

	// Reviews
	UpsertReview(ctx context.Context, r *review.Review) error
	ListReviews(ctx context.Context, toolID string) ([]review.Review, error)
	ReviewAggregate(ctx context.Context, toolID string) (avg float64, count int, err error)

	// Webhooks (tenant scoped)
	CreateWebhook(ctx context.Context, w *webhook.Webhook) error
	ListWebhooks(ctx context.Context) ([]webhook.Webhook, error)
	ListWebhooksForEvent(ctx context.Context, collection, event string) ([]webhook.Webhook, error)
	DeleteWebhook(ctx context.Context, id string) error

	// Dynamic documents (tenant scoped)
	CreateDocument(ctx context.Context, d *document.Document) error
	GetDocument(ctx context.Context, collection, id string) (*document.Document, error)
	ListDocuments(ctx context.Context, collection string) ([]document.Document, error)
	UpdateDocument(ctx context.Context, d *document.Document) error
	DeleteDocument(ctx context.Context, collection, id string) error

	// Generation jobs (tenant scoped; GetJobAnyTenant serves the queue
	// consumer which has no request tenant)
	CreateJob(ctx context.Context, j *generation.Job) error
	GetJob(ctx context.Context, id string) (*generation.Job, error)
	GetJobAnyTenant(ctx context.Context, id string) (*generation.Job, error)
	UpdateJob(ctx context.Context, j *generation.Job) error

	// Admin dashboard counts (unscoped)
	CountTools(ctx context.Context) (int64, error)
	CountPublishedTools(ctx context.Context) (int64, error)
	CountTenants(ctx context.Context) (int64, error)
	CountTemplates(ctx context.Context) (int64, error)
	CountTemplateClones(ctx context.Context) (int64, error)
}
