package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/saasforge/saasforge/internal/adapter/otel"
	"github.com/saasforge/saasforge/internal/domain"
	"github.com/saasforge/saasforge/internal/domain/review"
	"github.com/saasforge/saasforge/internal/domain/template"
	"github.com/saasforge/saasforge/internal/domain/tool"
	"github.com/saasforge/saasforge/internal/middleware"
	"github.com/saasforge/saasforge/internal/port/broadcast"
	"github.com/saasforge/saasforge/internal/port/database"
	"github.com/saasforge/saasforge/internal/port/messagequeue"
)

// creatorShare is the fraction of a paid clone credited to the creator.
const creatorShare = 0.80

// MarketplaceService handles publishing, cloning and reviewing public
// tools.
type MarketplaceService struct {
	store       database.Store
	queue       messagequeue.Queue
	broadcaster broadcast.Broadcaster
	metrics     *otel.Metrics
}

// NewMarketplaceService creates a new MarketplaceService.
func NewMarketplaceService(store database.Store, queue messagequeue.Queue, b broadcast.Broadcaster, m *otel.Metrics) *MarketplaceService {
	return &MarketplaceService{store: store, queue: queue, broadcaster: b, metrics: m}
}

// List returns the public marketplace listing.
func (s *MarketplaceService) List(ctx context.Context, q database.MarketplaceQuery) ([]tool.Tool, error) {
	switch q.Sort {
	case "", "popular", "newest", "rating":
	default:
		return nil, fmt.Errorf("unknown sort %q: %w", q.Sort, domain.ErrValidation)
	}
	return s.store.ListMarketplaceTools(ctx, q)
}

// Listing is a public tool joined with its reviews.
type Listing struct {
	Tool    *tool.Tool      `json:"tool"`
	Reviews []review.Review `json:"reviews"`
}

// Get returns one public tool with its reviews.
func (s *MarketplaceService) Get(ctx context.Context, id string) (*Listing, error) {
	t, err := s.store.GetPublishedTool(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.store.ListReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []review.Review{}
	}
	return &Listing{Tool: t, Reviews: reviews}, nil
}

// PublishRequest carries the listing metadata set at publish time.
type PublishRequest struct {
	Price    int64    `json:"price"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// Publish lists a tool on the marketplace. Only the owner may publish;
// republishing an already-public tool just updates the listing metadata.
// Returns the public vanity path.
func (s *MarketplaceService) Publish(ctx context.Context, id string, req PublishRequest) (*tool.Tool, string, error) {
	if req.Price < 0 {
		return nil, "", fmt.Errorf("price must not be negative: %w", domain.ErrValidation)
	}

	t, err := s.ownedTool(ctx, id)
	if err != nil {
		return nil, "", err
	}

	t.IsPublic = true
	t.Price = req.Price
	t.Category = req.Category
	t.Tags = req.Tags
	if err := s.store.UpdateTool(ctx, t); err != nil {
		return nil, "", err
	}

	caller := middleware.IdentityFromContext(ctx)
	vanity := "/api/v1/tools/resolve/" + t.Slug + "/" + caller.EmailPrefix()

	s.notifyPublished(ctx, t)
	if s.metrics != nil {
		s.metrics.ToolsPublished.Add(ctx, 1)
	}
	return t, vanity, nil
}

// Unpublish delists a tool. Existing clones are unaffected.
func (s *MarketplaceService) Unpublish(ctx context.Context, id string) (*tool.Tool, error) {
	t, err := s.ownedTool(ctx, id)
	if err != nil {
		return nil, err
	}
	t.IsPublic = false
	if err := s.store.UpdateTool(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ownedTool fetches a tool the caller must own. A tool that exists
// publicly under another tenant yields ErrForbidden rather than 404, so
// owners of stale bookmarks learn why the edit failed.
func (s *MarketplaceService) ownedTool(ctx context.Context, id string) (*tool.Tool, error) {
	t, err := s.store.GetTool(ctx, id)
	if err == nil {
		return t, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		if _, pubErr := s.store.GetPublishedTool(ctx, id); pubErr == nil {
			return nil, fmt.Errorf("tool %s belongs to another tenant: %w", id, domain.ErrForbidden)
		}
	}
	return nil, err
}

// Clone deep-copies a public tool's latest version into a new tool owned
// by the calling tenant. Creators cannot clone their own tools, a tenant
// cannot clone the same tool twice, and paid clones credit the creator.
func (s *MarketplaceService) Clone(ctx context.Context, id string) (*tool.Tool, error) {
	tenantID := middleware.TenantIDFromContext(ctx)
	ctx, span := otel.StartCloneSpan(ctx, id, tenantID, template.SourceImport)
	defer span.End()
	start := time.Now()

	src, err := s.store.GetPublishedTool(ctx, id)
	if err != nil {
		return nil, err
	}
	if src.TenantID == tenantID {
		return nil, fmt.Errorf("cannot clone your own tool: %w", domain.ErrValidation)
	}
	if src.IsPremium && !middleware.PlanFromContext(ctx).AllowsPremium() {
		return nil, fmt.Errorf("tool %q: %w", src.Slug, domain.ErrUpgradeRequired)
	}

	tn, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tn.HasCloned(id) {
		return nil, fmt.Errorf("tool %q already cloned: %w", src.Slug, domain.ErrConflict)
	}

	srcVersion := src.Current()
	if srcVersion == nil {
		return nil, fmt.Errorf("tool %q has no current version: %w", src.Slug, domain.ErrValidation)
	}
	v1 := srcVersion.Clone()
	v1.Number = 1

	clone := &tool.Tool{
		TenantID:       tenantID,
		Name:           src.Name,
		Slug:           src.Slug,
		Description:    src.Description,
		Category:       src.Category,
		Tags:           append([]string(nil), src.Tags...),
		CurrentVersion: 1,
		Versions:       []tool.Version{v1},
	}
	if err := s.store.CreateTool(ctx, clone); err != nil {
		return nil, err
	}

	if err := s.store.RecordClonedTool(ctx, tenantID, id); err != nil {
		return nil, err
	}
	if err := s.store.IncrementToolClones(ctx, id); err != nil {
		slog.Error("increment tool clones", "tool_id", id, "error", err)
	}

	if src.Price > 0 {
		credit := int64(float64(src.Price) * creatorShare)
		if err := s.store.CreditEarnings(ctx, src.TenantID, credit); err != nil {
			slog.Error("credit creator earnings", "tool_id", id, "creator", src.TenantID, "error", err)
		}
	}

	s.notifyCloned(ctx, clone, id)
	if s.metrics != nil {
		s.metrics.ToolsCloned.Add(ctx, 1)
		s.metrics.CloneDuration.Record(ctx, time.Since(start).Seconds())
	}
	return clone, nil
}

// Review upserts the calling tenant's review of a marketplace tool. Only
// tenants that cloned the tool may review it, and never its creator. The
// tool's rating aggregate is refreshed after the write.
func (s *MarketplaceService) Review(ctx context.Context, toolID string, rating int, comment string) (*review.Review, error) {
	r := &review.Review{ToolID: toolID, Rating: rating, Comment: comment}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	t, err := s.store.GetPublishedTool(ctx, toolID)
	if err != nil {
		return nil, err
	}

	tenantID := middleware.TenantIDFromContext(ctx)
	if t.TenantID == tenantID {
		return nil, fmt.Errorf("creators cannot review their own tool: %w", domain.ErrForbidden)
	}

	tn, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tn.HasCloned(toolID) {
		return nil, fmt.Errorf("only tenants that cloned the tool may review it: %w", domain.ErrForbidden)
	}

	if err := s.store.UpsertReview(ctx, r); err != nil {
		return nil, err
	}

	avg, count, err := s.store.ReviewAggregate(ctx, toolID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetToolRating(ctx, toolID, avg, count); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *MarketplaceService) notifyPublished(ctx context.Context, t *tool.Tool) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastEvent(ctx, broadcast.EventToolPublished, broadcast.ToolEvent{
			ToolID: t.ID,
			Name:   t.Name,
		})
	}
	s.publishQueueEvent(ctx, messagequeue.SubjectToolPublished, map[string]string{
		"tool_id":   t.ID,
		"tenant_id": t.TenantID,
	})
}

func (s *MarketplaceService) notifyCloned(ctx context.Context, clone *tool.Tool, sourceID string) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastEvent(ctx, broadcast.EventToolCloned, broadcast.ToolEvent{
			ToolID: clone.ID,
			Name:   clone.Name,
		})
	}
	s.publishQueueEvent(ctx, messagequeue.SubjectToolCloned, map[string]string{
		"tool_id":   clone.ID,
		"source_id": sourceID,
		"tenant_id": clone.TenantID,
	})
}

func (s *MarketplaceService) publishQueueEvent(ctx context.Context, subject string, payload map[string]string) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Error("publish marketplace event", "subject", subject, "error", err)
	}
}
