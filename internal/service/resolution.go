package service

import (
	"context"

	"github.com/saasforge/saasforge/internal/adapter/otel"
	"github.com/saasforge/saasforge/internal/domain/module"
	"github.com/saasforge/saasforge/internal/domain/tenant"
	"github.com/saasforge/saasforge/internal/domain/tool"
	"github.com/saasforge/saasforge/internal/port/database"
)

// InstanceView is a render-ready instance: the placed config joined with
// the registry definition it resolves to.
type InstanceView struct {
	ID             string            `json:"id"`
	CollectionName string            `json:"collection_name,omitempty"`
	Config         map[string]any    `json:"config"`
	Module         module.Definition `json:"module"`
	Fallback       bool              `json:"fallback,omitempty"`
}

// PageView groups resolved instances by page in navigation order.
type PageView struct {
	Name      string         `json:"name"`
	Instances []InstanceView `json:"instances"`
}

// ToolView is the public render model served from vanity URLs.
type ToolView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Version     int              `json:"version"`
	Pages       []PageView       `json:"pages"`
	Layout      map[string]any   `json:"layout_config,omitempty"`
	Branding    *tenant.Branding `json:"branding,omitempty"`
}

// ResolutionService turns stored tools into render-ready views.
type ResolutionService struct {
	store    database.Store
	registry *module.Registry
}

// NewResolutionService creates a new ResolutionService.
func NewResolutionService(store database.Store, registry *module.Registry) *ResolutionService {
	return &ResolutionService{store: store, registry: registry}
}

// ResolveVanity resolves a public tool by its vanity pair. Missing and
// private tools both yield domain.ErrNotFound.
func (s *ResolutionService) ResolveVanity(ctx context.Context, slug, emailPrefix string) (*ToolView, error) {
	ctx, span := otel.StartResolveSpan(ctx, slug, emailPrefix)
	defer span.End()

	t, err := s.store.ResolveVanity(ctx, slug, emailPrefix)
	if err != nil {
		return nil, err
	}

	view := s.BuildView(t)

	// Branding is optional decoration; a lookup failure does not fail
	// the resolution.
	if owner, err := s.store.GetTenant(ctx, t.TenantID); err == nil {
		view.Branding = &owner.Branding
	}
	return view, nil
}

// BuildView resolves every instance of the tool's current version against
// the registry. Unknown module slugs resolve to the fallback renderer.
func (s *ResolutionService) BuildView(t *tool.Tool) *ToolView {
	view := &ToolView{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		Version:     t.CurrentVersion,
	}

	v := t.Current()
	if v == nil {
		view.Pages = []PageView{}
		return view
	}
	view.Layout = v.LayoutConfig

	byPage := make(map[string][]InstanceView, len(v.Pages))
	for _, in := range v.Instances {
		def, known := s.registry.Resolve(in.ModuleSlug)
		if !known {
			def = s.registry.Fallback()
		}
		byPage[in.PageName] = append(byPage[in.PageName], InstanceView{
			ID:             in.ID,
			CollectionName: in.CollectionName,
			Config:         in.Config,
			Module:         def,
			Fallback:       !known,
		})
	}

	view.Pages = make([]PageView, len(v.Pages))
	for i, p := range v.Pages {
		ins := byPage[p]
		if ins == nil {
			ins = []InstanceView{}
		}
		view.Pages[i] = PageView{Name: p, Instances: ins}
	}
	return view
}
