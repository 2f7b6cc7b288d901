// Package service implements business logic on top of ports.
package service

import (
	"context"
	"fmt"

	"github.com/saasforge/saasforge/internal/adapter/otel"
	"github.com/saasforge/saasforge/internal/domain"
	"github.com/saasforge/saasforge/internal/domain/module"
	"github.com/saasforge/saasforge/internal/domain/schema"
	"github.com/saasforge/saasforge/internal/domain/tool"
	"github.com/saasforge/saasforge/internal/middleware"
	"github.com/saasforge/saasforge/internal/port/broadcast"
	"github.com/saasforge/saasforge/internal/port/database"
)

// ToolService handles tool lifecycle and structural edits.
type ToolService struct {
	store       database.Store
	registry    *module.Registry
	broadcaster broadcast.Broadcaster
	metrics     *otel.Metrics
}

// NewToolService creates a new ToolService.
func NewToolService(store database.Store, registry *module.Registry, b broadcast.Broadcaster, m *otel.Metrics) *ToolService {
	return &ToolService{store: store, registry: registry, broadcaster: b, metrics: m}
}

// Create builds a tool from an explicit schema descriptor and persists it.
// Version 1 starts with a single Dashboard page and no instances.
func (s *ToolService) Create(ctx context.Context, name, description string, desc schema.Descriptor) (*tool.Tool, error) {
	t, err := tool.New(middleware.TenantIDFromContext(ctx), name, desc)
	if err != nil {
		return nil, err
	}
	t.Description = description

	if err := s.store.CreateTool(ctx, t); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ToolsCreated.Add(ctx, 1)
	}
	return t, nil
}

// List returns all tools owned by the calling tenant.
func (s *ToolService) List(ctx context.Context) ([]tool.Tool, error) {
	return s.store.ListTools(ctx)
}

// Get returns a tool by ID. Tenant scoping makes other tenants' tools
// indistinguishable from missing ones.
func (s *ToolService) Get(ctx context.Context, id string) (*tool.Tool, error) {
	return s.store.GetTool(ctx, id)
}

// UpdateRequest is a full replacement of the current version's structure
// plus optional metadata changes. RowVersion must match the stored row.
type UpdateRequest struct {
	Name         *string         `json:"name,omitempty"`
	Description  *string         `json:"description,omitempty"`
	IsPublic     *bool           `json:"is_public,omitempty"`
	Pages        []string        `json:"pages"`
	Instances    []tool.Instance `json:"instances"`
	LayoutConfig map[string]any  `json:"layout_config"`
	RowVersion   int             `json:"row_version"`
}

// Update atomically replaces the current version's pages, instances and
// layout. The candidate structure is validated before anything is written;
// a stale RowVersion yields domain.ErrConflict.
func (s *ToolService) Update(ctx context.Context, id string, req UpdateRequest) (*tool.Tool, error) {
	t, err := s.store.GetTool(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.RowVersion != t.RowVersion {
		return nil, fmt.Errorf("tool %s: stale row version: %w", id, domain.ErrConflict)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("name is required: %w", domain.ErrValidation)
		}
		t.Name = *req.Name
		t.Slug = tool.Slugify(*req.Name)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.IsPublic != nil {
		t.IsPublic = *req.IsPublic
	}

	if err := t.ReplaceCurrent(req.Pages, req.Instances, req.LayoutConfig); err != nil {
		return nil, err
	}

	if err := s.store.UpdateTool(ctx, t); err != nil {
		return nil, err
	}

	s.notifyUpdated(ctx, t)
	return t, nil
}

// Delete removes a tool owned by the calling tenant.
func (s *ToolService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteTool(ctx, id)
}

// AddPage appends a page to the tool's current version.
func (s *ToolService) AddPage(ctx context.Context, id, name string) (*tool.Tool, error) {
	t, err := s.store.GetTool(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.AddPage(name); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTool(ctx, t); err != nil {
		return nil, err
	}
	s.notifyUpdated(ctx, t)
	return t, nil
}

// DeletePage removes a page and all instances bound to it.
func (s *ToolService) DeletePage(ctx context.Context, id, name string) (*tool.Tool, error) {
	t, err := s.store.GetTool(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.DeletePage(name); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTool(ctx, t); err != nil {
		return nil, err
	}
	s.notifyUpdated(ctx, t)
	return t, nil
}

// AddInstanceRequest places one module on an existing page.
type AddInstanceRequest struct {
	PageName       string         `json:"page_name"`
	ModuleSlug     string         `json:"module_slug"`
	CollectionName string         `json:"collection_name"`
	Config         map[string]any `json:"config,omitempty"`
}

// AddInstance places a module on a page. Premium modules require a plan
// with premium entitlement; the registry's default config is the base and
// request config entries override it.
func (s *ToolService) AddInstance(ctx context.Context, id string, req AddInstanceRequest) (tool.Instance, error) {
	def, known := s.registry.Resolve(req.ModuleSlug)
	if !known {
		return tool.Instance{}, fmt.Errorf("unknown module %q: %w", req.ModuleSlug, domain.ErrValidation)
	}
	if def.IsPremium && !middleware.PlanFromContext(ctx).AllowsPremium() {
		return tool.Instance{}, fmt.Errorf("module %q: %w", req.ModuleSlug, domain.ErrUpgradeRequired)
	}

	t, err := s.store.GetTool(ctx, id)
	if err != nil {
		return tool.Instance{}, err
	}

	cfg := def.CloneConfig()
	for k, v := range req.Config {
		cfg[k] = v
	}

	in, err := t.AddInstance(req.PageName, req.ModuleSlug, req.CollectionName, cfg)
	if err != nil {
		return tool.Instance{}, err
	}
	if err := s.store.UpdateTool(ctx, t); err != nil {
		return tool.Instance{}, err
	}
	s.notifyUpdated(ctx, t)
	return in, nil
}

// RemoveInstance removes an instance by id. Removing an absent id is a
// no-op.
func (s *ToolService) RemoveInstance(ctx context.Context, id, instanceID string) error {
	t, err := s.store.GetTool(ctx, id)
	if err != nil {
		return err
	}
	t.RemoveInstance(instanceID)
	if err := s.store.UpdateTool(ctx, t); err != nil {
		return err
	}
	s.notifyUpdated(ctx, t)
	return nil
}

// SnapshotVersion appends a deep copy of the current version and moves the
// current pointer to it.
func (s *ToolService) SnapshotVersion(ctx context.Context, id string) (*tool.Tool, error) {
	t, err := s.store.GetTool(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := t.Snapshot(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTool(ctx, t); err != nil {
		return nil, err
	}
	s.notifyUpdated(ctx, t)
	return t, nil
}

// ListModules returns the registry catalog annotated with plan availability
// for the caller.
func (s *ToolService) ListModules(ctx context.Context) []module.Listing {
	return s.registry.ListAvailable(middleware.PlanFromContext(ctx))
}

func (s *ToolService) notifyUpdated(ctx context.Context, t *tool.Tool) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastEvent(ctx, broadcast.EventToolUpdated, broadcast.ToolEvent{
		ToolID:  t.ID,
		Version: t.CurrentVersion,
		Name:    t.Name,
	})
}
