package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/saasforge/saasforge/internal/domain"
	"github.com/saasforge/saasforge/internal/domain/template"
	"github.com/saasforge/saasforge/internal/domain/tenant"
	"github.com/saasforge/saasforge/internal/port/database"
)

// DashboardStats is the admin console summary.
type DashboardStats struct {
	TotalTools     int64 `json:"total_tools"`
	PublishedTools int64 `json:"published_tools"`
	TotalTenants   int64 `json:"total_tenants"`
	TotalTemplates int64 `json:"total_templates"`
	TotalClones    int64 `json:"total_clones"`
}

// AdminService backs the admin console: platform stats, tenant plans,
// template curation and marketplace moderation.
type AdminService struct {
	store database.Store
}

// NewAdminService creates a new AdminService.
func NewAdminService(store database.Store) *AdminService {
	return &AdminService{store: store}
}

// Dashboard fans the count queries out concurrently.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalTools, err = s.store.CountTools(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.PublishedTools, err = s.store.CountPublishedTools(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalTenants, err = s.store.CountTenants(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalTemplates, err = s.store.CountTemplates(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalClones, err = s.store.CountTemplateClones(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListTenants returns all tenants.
func (s *AdminService) ListTenants(ctx context.Context) ([]tenant.Tenant, error) {
	return s.store.ListTenants(ctx)
}

// UpdateTenantPlan changes a tenant's subscription tier.
func (s *AdminService) UpdateTenantPlan(ctx context.Context, id string, plan tenant.Plan) error {
	if !plan.Valid() {
		return fmt.Errorf("unknown plan %q: %w", plan, domain.ErrValidation)
	}
	return s.store.UpdateTenantPlan(ctx, id, plan)
}

// ListTemplates returns all templates, including unpublished ones.
func (s *AdminService) ListTemplates(ctx context.Context) ([]template.Template, error) {
	return s.store.ListAllTemplates(ctx)
}

// CreateTemplate validates and persists a new template.
func (s *AdminService) CreateTemplate(ctx context.Context, t *template.Template) error {
	if err := validateTemplate(t); err != nil {
		return err
	}
	return s.store.CreateTemplate(ctx, t)
}

// UpdateTemplate replaces a template. Existing clones keep their snapshot.
func (s *AdminService) UpdateTemplate(ctx context.Context, t *template.Template) error {
	if err := validateTemplate(t); err != nil {
		return err
	}
	return s.store.UpdateTemplate(ctx, t)
}

// DeleteTemplate removes a template from the gallery.
func (s *AdminService) DeleteTemplate(ctx context.Context, id string) error {
	return s.store.DeleteTemplate(ctx, id)
}

// SetToolApproval flips a marketplace tool's moderation flag. Approval
// changes never cascade to existing clones.
func (s *AdminService) SetToolApproval(ctx context.Context, toolID string, approved bool) error {
	return s.store.SetToolApproval(ctx, toolID, approved)
}

func validateTemplate(t *template.Template) error {
	if t.Name == "" {
		return fmt.Errorf("template name is required: %w", domain.ErrValidation)
	}
	if t.Slug == "" {
		return fmt.Errorf("template slug is required: %w", domain.ErrValidation)
	}
	if t.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", domain.ErrValidation)
	}
	if t.RevenueShare < 0 || t.RevenueShare > 1 {
		return fmt.Errorf("revenue share must be within [0, 1]: %w", domain.ErrValidation)
	}
	if err := t.SchemaConfig.Validate(); err != nil {
		return err
	}
	pages := make(map[string]struct{}, len(t.DefaultPages))
	for _, p := range t.DefaultPages {
		if p.Name == "" {
			return fmt.Errorf("default page name is required: %w", domain.ErrValidation)
		}
		if _, dup := pages[p.Name]; dup {
			return fmt.Errorf("duplicate default page %q: %w", p.Name, domain.ErrValidation)
		}
		pages[p.Name] = struct{}{}
	}
	return nil
}
