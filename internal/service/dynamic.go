package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/saasforge/saasforge/internal/adapter/otel"
	"github.com/saasforge/saasforge/internal/domain/document"
	"github.com/saasforge/saasforge/internal/domain/webhook"
	"github.com/saasforge/saasforge/internal/middleware"
	"github.com/saasforge/saasforge/internal/port/broadcast"
	"github.com/saasforge/saasforge/internal/port/cache"
	"github.com/saasforge/saasforge/internal/port/database"
	"github.com/saasforge/saasforge/internal/port/messagequeue"
)

// RecordChange is the records.changed queue payload. The webhook
// dispatcher fans it out to matching registrations.
type RecordChange struct {
	TenantID   string         `json:"tenant_id"`
	Collection string         `json:"collection"`
	RecordID   string         `json:"record_id"`
	Event      string         `json:"event"`
	Record     map[string]any `json:"record"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// DynamicService serves schema-less records in tenant-scoped collections,
// with a read-through cache in front of the store.
type DynamicService struct {
	store       database.Store
	cache       cache.Cache
	queue       messagequeue.Queue
	broadcaster broadcast.Broadcaster
	metrics     *otel.Metrics
	ttl         time.Duration
}

// NewDynamicService creates a new DynamicService. ttl bounds cache
// staleness for list and get reads.
func NewDynamicService(store database.Store, c cache.Cache, queue messagequeue.Queue, b broadcast.Broadcaster, m *otel.Metrics, ttl time.Duration) *DynamicService {
	return &DynamicService{store: store, cache: c, queue: queue, broadcaster: b, metrics: m, ttl: ttl}
}

func listKey(tenantID, collection string) string {
	return "tenant:" + tenantID + ":col:" + collection + ":list"
}

func docKey(tenantID, collection, id string) string {
	return "tenant:" + tenantID + ":col:" + collection + ":doc:" + id
}

// List returns all records of a collection, newest first.
func (s *DynamicService) List(ctx context.Context, collection string) ([]map[string]any, error) {
	if err := document.ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	key := listKey(middleware.TenantIDFromContext(ctx), collection)
	if cached, ok := s.cacheGet(ctx, key); ok {
		var out []map[string]any
		if err := json.Unmarshal(cached, &out); err == nil {
			return out, nil
		}
	}

	docs, err := s.store.ListDocuments(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(docs))
	for i, d := range docs {
		out[i] = d.Render()
	}

	s.cacheSet(ctx, key, out)
	return out, nil
}

// Get returns one record by id.
func (s *DynamicService) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	if err := document.ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	key := docKey(middleware.TenantIDFromContext(ctx), collection, id)
	if cached, ok := s.cacheGet(ctx, key); ok {
		var out map[string]any
		if err := json.Unmarshal(cached, &out); err == nil {
			return out, nil
		}
	}

	d, err := s.store.GetDocument(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	out := d.Render()

	s.cacheSet(ctx, key, out)
	return out, nil
}

// Create inserts a record. Reserved system fields in the payload are
// dropped, never honored.
func (s *DynamicService) Create(ctx context.Context, collection string, data map[string]any) (map[string]any, error) {
	if err := document.ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	d := &document.Document{
		Collection: collection,
		Data:       document.SanitizeData(data),
	}
	if err := s.store.CreateDocument(ctx, d); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, collection, d, webhook.EventCreate)
	return d.Render(), nil
}

// Update replaces a record's data.
func (s *DynamicService) Update(ctx context.Context, collection, id string, data map[string]any) (map[string]any, error) {
	if err := document.ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	d, err := s.store.GetDocument(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	d.Data = document.SanitizeData(data)
	if err := s.store.UpdateDocument(ctx, d); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, collection, d, webhook.EventUpdate)
	return d.Render(), nil
}

// Delete removes a record.
func (s *DynamicService) Delete(ctx context.Context, collection, id string) error {
	if err := document.ValidateCollectionName(collection); err != nil {
		return err
	}

	d, err := s.store.GetDocument(ctx, collection, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteDocument(ctx, collection, id); err != nil {
		return err
	}

	s.afterWrite(ctx, collection, d, webhook.EventDelete)
	return nil
}

// afterWrite invalidates cache entries and fans the change out to the
// queue and the tenant's editor sessions.
func (s *DynamicService) afterWrite(ctx context.Context, collection string, d *document.Document, event string) {
	tenantID := middleware.TenantIDFromContext(ctx)
	s.cacheDelete(ctx, listKey(tenantID, collection))
	s.cacheDelete(ctx, docKey(tenantID, collection, d.ID))

	if s.metrics != nil {
		s.metrics.RecordWrites.Add(ctx, 1)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastEvent(ctx, broadcast.EventRecordChanged, broadcast.RecordEvent{
			Collection: collection,
			RecordID:   d.ID,
			Event:      event,
		})
	}

	if s.queue == nil {
		return
	}
	change := RecordChange{
		TenantID:   tenantID,
		Collection: collection,
		RecordID:   d.ID,
		Event:      event,
		Record:     d.Render(),
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(change)
	if err != nil {
		slog.Error("marshal record change", "collection", collection, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, messagequeue.SubjectRecordChanged, payload); err != nil {
		slog.Error("publish record change", "collection", collection, "error", err)
	}
}

func (s *DynamicService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("cache get failed", "key", key, "error", err)
		return nil, false
	}
	return data, ok
}

func (s *DynamicService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		slog.Warn("cache set failed", "key", key, "error", err)
	}
}

func (s *DynamicService) cacheDelete(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		slog.Warn("cache delete failed", "key", key, "error", err)
	}
}
