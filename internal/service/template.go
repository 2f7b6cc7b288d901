package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/saasforge/saasforge/internal/adapter/otel"
	"github.com/saasforge/saasforge/internal/domain"
	"github.com/saasforge/saasforge/internal/domain/module"
	"github.com/saasforge/saasforge/internal/domain/template"
	"github.com/saasforge/saasforge/internal/domain/tool"
	"github.com/saasforge/saasforge/internal/middleware"
	"github.com/saasforge/saasforge/internal/port/broadcast"
	"github.com/saasforge/saasforge/internal/port/database"
	"github.com/saasforge/saasforge/internal/port/messagequeue"
)

// TemplateService serves the public gallery and clones templates into
// tenant-owned tools.
type TemplateService struct {
	store       database.Store
	registry    *module.Registry
	queue       messagequeue.Queue
	broadcaster broadcast.Broadcaster
	metrics     *otel.Metrics
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(store database.Store, registry *module.Registry, queue messagequeue.Queue, b broadcast.Broadcaster, m *otel.Metrics) *TemplateService {
	return &TemplateService{store: store, registry: registry, queue: queue, broadcaster: b, metrics: m}
}

// List returns all public templates.
func (s *TemplateService) List(ctx context.Context) ([]template.Template, error) {
	return s.store.ListTemplates(ctx)
}

// GetBySlug returns a public template for preview. Unpublished templates
// are indistinguishable from missing ones.
func (s *TemplateService) GetBySlug(ctx context.Context, slug string) (*template.Template, error) {
	tpl, err := s.store.GetTemplateBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !tpl.IsPublic {
		return nil, fmt.Errorf("template %q: %w", slug, domain.ErrNotFound)
	}
	return tpl, nil
}

// ListClones returns the calling tenant's clone records.
func (s *TemplateService) ListClones(ctx context.Context) ([]template.Clone, error) {
	return s.store.ListTemplateClones(ctx)
}

// Clone instantiates a template into a new tool owned by the calling
// tenant. Premium templates require premium entitlement; a tenant can hold
// at most one clone per template.
func (s *TemplateService) Clone(ctx context.Context, templateID string) (*tool.Tool, error) {
	tenantID := middleware.TenantIDFromContext(ctx)
	ctx, span := otel.StartCloneSpan(ctx, templateID, tenantID, template.SourceGallery)
	defer span.End()
	start := time.Now()

	tpl, err := s.store.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !tpl.IsPublic {
		return nil, fmt.Errorf("template %s: %w", templateID, domain.ErrNotFound)
	}
	if tpl.IsPremium && !middleware.PlanFromContext(ctx).AllowsPremium() {
		return nil, fmt.Errorf("template %q: %w", tpl.Slug, domain.ErrUpgradeRequired)
	}

	existing, err := s.store.ListTemplateClones(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if c.TemplateID == templateID && c.Status == template.StatusActive {
			return nil, fmt.Errorf("template %q already cloned: %w", tpl.Slug, domain.ErrConflict)
		}
	}

	t, err := s.buildTool(tenantID, tpl)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateTool(ctx, t); err != nil {
		return nil, err
	}

	clone := &template.Clone{
		TemplateID:   tpl.ID,
		ToolID:       t.ID,
		SnapshotName: tpl.Name,
		Source:       template.SourceGallery,
		Status:       template.StatusActive,
	}
	if err := s.store.CreateTemplateClone(ctx, clone); err != nil {
		// The unique (tenant, template) index backstops the check above
		// against concurrent clones.
		if strings.Contains(err.Error(), "SQLSTATE 23505") {
			return nil, fmt.Errorf("template %q already cloned: %w", tpl.Slug, domain.ErrConflict)
		}
		return nil, err
	}

	if err := s.store.IncrementTemplateClones(ctx, tpl.ID); err != nil {
		slog.Error("increment template clones", "template_id", tpl.ID, "error", err)
	}

	s.publishCloned(ctx, t, tpl.ID)
	if s.metrics != nil {
		s.metrics.TemplatesCloned.Add(ctx, 1)
		s.metrics.CloneDuration.Record(ctx, time.Since(start).Seconds())
	}
	return t, nil
}

// buildTool materializes version 1 from the template's schema and default
// pages. Each page spec seeds one instance bound to its collection.
func (s *TemplateService) buildTool(tenantID string, tpl *template.Template) (*tool.Tool, error) {
	t, err := tool.New(tenantID, tpl.Name, tpl.SchemaConfig)
	if err != nil {
		return nil, err
	}
	t.Description = tpl.Description
	t.Category = tpl.Category
	t.Tags = append([]string(nil), tpl.Tags...)

	if len(tpl.DefaultPages) == 0 {
		return t, nil
	}

	pages := make([]string, 0, len(tpl.DefaultPages))
	instances := make([]tool.Instance, 0, len(tpl.DefaultPages))
	for _, ps := range tpl.DefaultPages {
		pages = append(pages, ps.Name)

		def, known := s.registry.Resolve(ps.ModuleSlug)
		if !known {
			def = s.registry.Fallback()
		}
		cfg := def.CloneConfig()
		for k, v := range ps.Config {
			cfg[k] = v
		}
		instances = append(instances, tool.Instance{
			ID:             tool.NewInstanceID(def.Slug),
			ModuleSlug:     def.Slug,
			PageName:       ps.Name,
			CollectionName: ps.Collection,
			Config:         cfg,
		})
	}

	if err := t.ReplaceCurrent(pages, instances, map[string]any{"color_theme": tpl.ColorTheme}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) publishCloned(ctx context.Context, t *tool.Tool, sourceID string) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastEvent(ctx, broadcast.EventToolCloned, broadcast.ToolEvent{
			ToolID: t.ID,
			Name:   t.Name,
		})
	}
	if s.queue == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"tool_id":   t.ID,
		"source_id": sourceID,
		"tenant_id": t.TenantID,
	})
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, messagequeue.SubjectToolCloned, payload); err != nil {
		slog.Error("publish tool cloned event", "tool_id", t.ID, "error", err)
	}
}
