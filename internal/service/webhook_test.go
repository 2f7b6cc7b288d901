package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/saasforge/saasforge/internal/config"
	"github.com/saasforge/saasforge/internal/domain"
	"github.com/saasforge/saasforge/internal/domain/webhook"
	"github.com/saasforge/saasforge/internal/port/messagequeue"
)

func webhookConfig() config.Webhook {
	return config.Webhook{
		Timeout:      time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}
}

func newWebhookService(store *mockStore) (*WebhookService, *mockQueue) {
	q := &mockQueue{}
	return NewWebhookService(store, q, nil, webhookConfig()), q
}

func TestWebhookService_CreateGeneratesSecret(t *testing.T) {
	store := &mockStore{}
	svc, _ := newWebhookService(store)

	created, err := svc.Create(tenantCtx("tenant-1"), &webhook.Webhook{
		CollectionName: "contacts",
		Event:          webhook.EventCreate,
		URL:            "https://example.test/hook",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created.Secret) != 64 {
		t.Errorf("secret length = %d, want 64 hex chars", len(created.Secret))
	}
	if !created.IsActive {
		t.Error("new registrations start active")
	}
}

func TestWebhookService_CreateValidation(t *testing.T) {
	svc, _ := newWebhookService(&mockStore{})
	ctx := tenantCtx("tenant-1")

	bad := []webhook.Webhook{
		{Event: webhook.EventCreate, URL: "https://x.test"},
		{CollectionName: "contacts", Event: "PATCH", URL: "https://x.test"},
		{CollectionName: "contacts", Event: webhook.EventCreate, URL: "ftp://x.test"},
	}
	for i, w := range bad {
		if _, err := svc.Create(ctx, &w); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestWebhookService_DispatchFansOut(t *testing.T) {
	store := &mockStore{}
	svc, q := newWebhookService(store)
	ctx := tenantCtx("tenant-1")

	// Two matching registrations, one on the wrong event, one foreign.
	for _, w := range []webhook.Webhook{
		{CollectionName: "contacts", Event: webhook.EventCreate, URL: "https://a.test"},
		{CollectionName: "contacts", Event: webhook.EventCreate, URL: "https://b.test"},
		{CollectionName: "contacts", Event: webhook.EventDelete, URL: "https://c.test"},
	} {
		if _, err := svc.Create(ctx, &w); err != nil {
			t.Fatalf("seed webhook: %v", err)
		}
	}
	if _, err := svc.Create(tenantCtx("tenant-2"), &webhook.Webhook{
		CollectionName: "contacts", Event: webhook.EventCreate, URL: "https://other.test",
	}); err != nil {
		t.Fatalf("seed foreign webhook: %v", err)
	}

	change, _ := json.Marshal(RecordChange{
		TenantID:   "tenant-1",
		Collection: "contacts",
		RecordID:   "doc-1",
		Event:      webhook.EventCreate,
		Record:     map[string]any{"name": "Ada"},
	})
	// The dispatcher runs without a request context; the change carries
	// the tenant.
	if err := svc.dispatch(context.Background(), messagequeue.SubjectRecordChanged, change); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	deliveries := q.bySubject(messagequeue.SubjectWebhookDeliver)
	if len(deliveries) != 2 {
		t.Fatalf("queued %d deliveries, want 2", len(deliveries))
	}
	var d webhook.Delivery
	if err := json.Unmarshal(deliveries[0], &d); err != nil {
		t.Fatalf("unmarshal delivery: %v", err)
	}
	if d.DeliveryID == "" || d.Secret == "" {
		t.Errorf("delivery = %+v, want id and secret set", d)
	}
	if d.TenantID != "tenant-1" {
		t.Errorf("delivery tenant = %q, want tenant-1", d.TenantID)
	}
}

func TestWebhookService_DeliverSignsPayload(t *testing.T) {
	var gotBody []byte
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeader = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	svc, _ := newWebhookService(&mockStore{})
	delivery, _ := json.Marshal(webhook.Delivery{
		DeliveryID: "dl-1",
		WebhookID:  "hook-1",
		Collection: "contacts",
		Event:      webhook.EventCreate,
		URL:        srv.URL,
		Secret:     "topsecret",
		Record:     map[string]any{"name": "Ada"},
	})

	if err := svc.deliver(context.Background(), messagequeue.SubjectWebhookDeliver, delivery); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	want := "sha256=" + Sign("topsecret", gotBody)
	if got := gotHeader.Get("X-SaaSForge-Signature"); got != want {
		t.Errorf("signature = %q, want %q", got, want)
	}
	if got := gotHeader.Get("X-SaaSForge-Event"); got != webhook.EventCreate {
		t.Errorf("event header = %q, want %s", got, webhook.EventCreate)
	}
	if got := gotHeader.Get("X-SaaSForge-Delivery"); got != "dl-1" {
		t.Errorf("delivery header = %q, want dl-1", got)
	}

	var body map[string]any
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("unmarshal posted body: %v", err)
	}
	if body["delivery_id"] != "dl-1" {
		t.Errorf("body delivery_id = %v, want dl-1", body["delivery_id"])
	}
}

func TestWebhookService_DeliverRetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc, _ := newWebhookService(&mockStore{})
	delivery, _ := json.Marshal(webhook.Delivery{
		DeliveryID: "dl-1", WebhookID: "hook-1", URL: srv.URL,
		Event: webhook.EventCreate,
	})

	if err := svc.deliver(context.Background(), messagequeue.SubjectWebhookDeliver, delivery); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if calls != 3 {
		t.Errorf("endpoint hit %d times, want 3", calls)
	}
}

func TestWebhookService_DeliverExhaustedIsDropped(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc, _ := newWebhookService(&mockStore{})
	delivery, _ := json.Marshal(webhook.Delivery{
		DeliveryID: "dl-1", WebhookID: "hook-1", URL: srv.URL,
		Event: webhook.EventCreate,
	})

	// Exhaustion must not bounce the message back to the queue.
	if err := svc.deliver(context.Background(), messagequeue.SubjectWebhookDeliver, delivery); err != nil {
		t.Fatalf("deliver must swallow exhausted retries, got %v", err)
	}
	if want := webhookConfig().MaxRetries + 1; calls != want {
		t.Errorf("endpoint hit %d times, want %d", calls, want)
	}
}

func TestWebhookService_BreakerSkipsDeadEndpoint(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc, _ := newWebhookService(&mockStore{})
	delivery, _ := json.Marshal(webhook.Delivery{
		DeliveryID: "dl-1", WebhookID: "hook-1", URL: srv.URL,
		Event: webhook.EventCreate,
	})

	// Three deliveries at MaxRetries=2 would be nine posts, but the
	// endpoint's breaker opens after five consecutive failures.
	for i := 0; i < 3; i++ {
		if err := svc.deliver(context.Background(), messagequeue.SubjectWebhookDeliver, delivery); err != nil {
			t.Fatalf("deliver %d: %v", i, err)
		}
	}
	if calls != breakerFailures {
		t.Errorf("endpoint hit %d times, want %d", calls, breakerFailures)
	}
}

func TestSign_Deterministic(t *testing.T) {
	a := Sign("secret", []byte(`{"x":1}`))
	b := Sign("secret", []byte(`{"x":1}`))
	if a != b {
		t.Error("signature must be deterministic")
	}
	if a == Sign("other", []byte(`{"x":1}`)) {
		t.Error("different secrets must produce different signatures")
	}
}
