package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/saasforge/saasforge/internal/domain"
	"github.com/saasforge/saasforge/internal/domain/document"
	"github.com/saasforge/saasforge/internal/domain/generation"
	"github.com/saasforge/saasforge/internal/domain/review"
	"github.com/saasforge/saasforge/internal/domain/template"
	"github.com/saasforge/saasforge/internal/domain/tenant"
	"github.com/saasforge/saasforge/internal/domain/tool"
	"github.com/saasforge/saasforge/internal/domain/webhook"
	"github.com/saasforge/saasforge/internal/middleware"
	"github.com/saasforge/saasforge/internal/port/database"
	"github.com/saasforge/saasforge/internal/port/messagequeue"
)

// Ensure mockStore implements database.Store at compile time.
var _ database.Store = (*mockStore)(nil)

// mockStore is a minimal in-memory implementation of database.Store for
// testing. It honors tenant scoping the way the real store does: from the
// request context.
type mockStore struct {
	seq       int
	tools     []tool.Tool
	templates []template.Template
	clones    []template.Clone
	tenants   []tenant.Tenant
	reviews   []review.Review
	webhooks  []webhook.Webhook
	documents []document.Document
	jobs      []generation.Job

	// Error hooks — set these to inject failures.
	createToolErr  error
	getToolErr     error
	updateToolErr  error
	createCloneErr error
	creditErr      error
	recordCloneErr error
	upsertErr      error
	countErr       error
	createJobErr   error
	updateJobErr   error
	createDocErr   error
	listDocsErr    error
}

func (m *mockStore) nextID(prefix string) string {
	m.seq++
	return prefix + "-" + strconv.Itoa(m.seq)
}

// --- Tools ---

func (m *mockStore) CreateTool(ctx context.Context, t *tool.Tool) error {
	if m.createToolErr != nil {
		return m.createToolErr
	}
	t.ID = m.nextID("tool")
	t.TenantID = middleware.TenantIDFromContext(ctx)
	t.RowVersion = 1
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.tools = append(m.tools, *t)
	return nil
}

func (m *mockStore) GetTool(ctx context.Context, id string) (*tool.Tool, error) {
	if m.getToolErr != nil {
		return nil, m.getToolErr
	}
	for i := range m.tools {
		if m.tools[i].ID == id && m.tools[i].TenantID == middleware.TenantIDFromContext(ctx) {
			cp := m.tools[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListTools(ctx context.Context) ([]tool.Tool, error) {
	var out []tool.Tool
	for _, t := range m.tools {
		if t.TenantID == middleware.TenantIDFromContext(ctx) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateTool(_ context.Context, t *tool.Tool) error {
	if m.updateToolErr != nil {
		return m.updateToolErr
	}
	for i := range m.tools {
		if m.tools[i].ID == t.ID {
			if m.tools[i].RowVersion != t.RowVersion {
				return domain.ErrConflict
			}
			t.RowVersion++
			m.tools[i] = *t
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteTool(ctx context.Context, id string) error {
	for i := range m.tools {
		if m.tools[i].ID == id && m.tools[i].TenantID == middleware.TenantIDFromContext(ctx) {
			m.tools = append(m.tools[:i], m.tools[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) GetPublishedTool(_ context.Context, id string) (*tool.Tool, error) {
	for i := range m.tools {
		if m.tools[i].ID == id && m.tools[i].IsPublic {
			cp := m.tools[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListMarketplaceTools(_ context.Context, _ database.MarketplaceQuery) ([]tool.Tool, error) {
	var out []tool.Tool
	for _, t := range m.tools {
		if t.IsPublic && t.IsApproved {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockStore) ResolveVanity(_ context.Context, slug, emailPrefix string) (*tool.Tool, error) {
	for i := range m.tools {
		t := &m.tools[i]
		if !t.IsPublic || t.Slug != slug {
			continue
		}
		for _, tn := range m.tenants {
			if tn.ID == t.TenantID && hasEmailPrefix(tn.OwnerEmail, emailPrefix) {
				cp := *t
				return &cp, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func hasEmailPrefix(email, prefix string) bool {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			return email[:i] == prefix
		}
	}
	return email == prefix
}

func (m *mockStore) IncrementToolClones(_ context.Context, id string) error {
	for i := range m.tools {
		if m.tools[i].ID == id {
			m.tools[i].ClonesCount++
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) SetToolApproval(_ context.Context, id string, approved bool) error {
	for i := range m.tools {
		if m.tools[i].ID == id {
			m.tools[i].IsApproved = approved
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) SetToolRating(_ context.Context, id string, rating float64, count int) error {
	for i := range m.tools {
		if m.tools[i].ID == id {
			m.tools[i].Rating = rating
			m.tools[i].ReviewsCount = count
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Templates ---

func (m *mockStore) ListTemplates(_ context.Context) ([]template.Template, error) {
	var out []template.Template
	for _, t := range m.templates {
		if t.IsPublic {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockStore) ListAllTemplates(_ context.Context) ([]template.Template, error) {
	return m.templates, nil
}

func (m *mockStore) GetTemplate(_ context.Context, id string) (*template.Template, error) {
	for i := range m.templates {
		if m.templates[i].ID == id {
			cp := m.templates[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetTemplateBySlug(_ context.Context, slug string) (*template.Template, error) {
	for i := range m.templates {
		if m.templates[i].Slug == slug {
			cp := m.templates[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateTemplate(_ context.Context, t *template.Template) error {
	t.ID = m.nextID("tpl")
	m.templates = append(m.templates, *t)
	return nil
}

func (m *mockStore) UpdateTemplate(_ context.Context, t *template.Template) error {
	for i := range m.templates {
		if m.templates[i].ID == t.ID {
			m.templates[i] = *t
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteTemplate(_ context.Context, id string) error {
	for i := range m.templates {
		if m.templates[i].ID == id {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) IncrementTemplateClones(_ context.Context, id string) error {
	for i := range m.templates {
		if m.templates[i].ID == id {
			m.templates[i].ClonesCount++
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) CreateTemplateClone(ctx context.Context, c *template.Clone) error {
	if m.createCloneErr != nil {
		return m.createCloneErr
	}
	c.ID = m.nextID("clone")
	c.TenantID = middleware.TenantIDFromContext(ctx)
	c.ClonedAt = time.Now()
	m.clones = append(m.clones, *c)
	return nil
}

func (m *mockStore) ListTemplateClones(ctx context.Context) ([]template.Clone, error) {
	var out []template.Clone
	for _, c := range m.clones {
		if c.TenantID == middleware.TenantIDFromContext(ctx) {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- Tenants ---

func (m *mockStore) CreateTenant(_ context.Context, t *tenant.Tenant) error {
	if t.ID == "" {
		t.ID = m.nextID("tenant")
	}
	m.tenants = append(m.tenants, *t)
	return nil
}

func (m *mockStore) GetTenant(_ context.Context, id string) (*tenant.Tenant, error) {
	for i := range m.tenants {
		if m.tenants[i].ID == id {
			cp := m.tenants[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListTenants(_ context.Context) ([]tenant.Tenant, error) {
	return m.tenants, nil
}

func (m *mockStore) UpdateTenantPlan(_ context.Context, id string, plan tenant.Plan) error {
	for i := range m.tenants {
		if m.tenants[i].ID == id {
			m.tenants[i].Plan = plan
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) RecordClonedTool(_ context.Context, tenantID, toolID string) error {
	if m.recordCloneErr != nil {
		return m.recordCloneErr
	}
	for i := range m.tenants {
		if m.tenants[i].ID == tenantID {
			for _, id := range m.tenants[i].ClonedToolIDs {
				if id == toolID {
					return nil
				}
			}
			m.tenants[i].ClonedToolIDs = append(m.tenants[i].ClonedToolIDs, toolID)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) CreditEarnings(_ context.Context, tenantID string, amountCents int64) error {
	if m.creditErr != nil {
		return m.creditErr
	}
	for i := range m.tenants {
		if m.tenants[i].ID == tenantID {
			m.tenants[i].EarningsBalance += amountCents
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Reviews ---

func (m *mockStore) UpsertReview(ctx context.Context, r *review.Review) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	r.TenantID = middleware.TenantIDFromContext(ctx)
	for i := range m.reviews {
		if m.reviews[i].ToolID == r.ToolID && m.reviews[i].TenantID == r.TenantID {
			r.ID = m.reviews[i].ID
			m.reviews[i] = *r
			return nil
		}
	}
	r.ID = m.nextID("review")
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *mockStore) ListReviews(_ context.Context, toolID string) ([]review.Review, error) {
	var out []review.Review
	for _, r := range m.reviews {
		if r.ToolID == toolID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockStore) ReviewAggregate(_ context.Context, toolID string) (float64, int, error) {
	var sum, count int
	for _, r := range m.reviews {
		if r.ToolID == toolID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

// --- Webhooks ---

func (m *mockStore) CreateWebhook(ctx context.Context, w *webhook.Webhook) error {
	w.ID = m.nextID("hook")
	w.TenantID = middleware.TenantIDFromContext(ctx)
	m.webhooks = append(m.webhooks, *w)
	return nil
}

func (m *mockStore) ListWebhooks(ctx context.Context) ([]webhook.Webhook, error) {
	var out []webhook.Webhook
	for _, w := range m.webhooks {
		if w.TenantID == middleware.TenantIDFromContext(ctx) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockStore) ListWebhooksForEvent(ctx context.Context, collection, event string) ([]webhook.Webhook, error) {
	var out []webhook.Webhook
	for _, w := range m.webhooks {
		if w.TenantID == middleware.TenantIDFromContext(ctx) &&
			w.CollectionName == collection && w.Event == event && w.IsActive {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockStore) DeleteWebhook(ctx context.Context, id string) error {
	for i := range m.webhooks {
		if m.webhooks[i].ID == id && m.webhooks[i].TenantID == middleware.TenantIDFromContext(ctx) {
			m.webhooks = append(m.webhooks[:i], m.webhooks[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Documents ---

func (m *mockStore) CreateDocument(ctx context.Context, d *document.Document) error {
	if m.createDocErr != nil {
		return m.createDocErr
	}
	d.ID = m.nextID("doc")
	d.TenantID = middleware.TenantIDFromContext(ctx)
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.documents = append(m.documents, *d)
	return nil
}

func (m *mockStore) GetDocument(ctx context.Context, collection, id string) (*document.Document, error) {
	for i := range m.documents {
		d := &m.documents[i]
		if d.ID == id && d.Collection == collection && d.TenantID == middleware.TenantIDFromContext(ctx) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListDocuments(ctx context.Context, collection string) ([]document.Document, error) {
	if m.listDocsErr != nil {
		return nil, m.listDocsErr
	}
	var out []document.Document
	for _, d := range m.documents {
		if d.Collection == collection && d.TenantID == middleware.TenantIDFromContext(ctx) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateDocument(ctx context.Context, d *document.Document) error {
	for i := range m.documents {
		if m.documents[i].ID == d.ID && m.documents[i].Collection == d.Collection &&
			m.documents[i].TenantID == middleware.TenantIDFromContext(ctx) {
			m.documents[i] = *d
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteDocument(ctx context.Context, collection, id string) error {
	for i := range m.documents {
		if m.documents[i].ID == id && m.documents[i].Collection == collection &&
			m.documents[i].TenantID == middleware.TenantIDFromContext(ctx) {
			m.documents = append(m.documents[:i], m.documents[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Generation jobs ---

func (m *mockStore) CreateJob(ctx context.Context, j *generation.Job) error {
	if m.createJobErr != nil {
		return m.createJobErr
	}
	j.ID = m.nextID("job")
	j.TenantID = middleware.TenantIDFromContext(ctx)
	m.jobs = append(m.jobs, *j)
	return nil
}

func (m *mockStore) GetJob(ctx context.Context, id string) (*generation.Job, error) {
	for i := range m.jobs {
		if m.jobs[i].ID == id && m.jobs[i].TenantID == middleware.TenantIDFromContext(ctx) {
			cp := m.jobs[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetJobAnyTenant(_ context.Context, id string) (*generation.Job, error) {
	for i := range m.jobs {
		if m.jobs[i].ID == id {
			cp := m.jobs[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) UpdateJob(_ context.Context, j *generation.Job) error {
	if m.updateJobErr != nil {
		return m.updateJobErr
	}
	for i := range m.jobs {
		if m.jobs[i].ID == j.ID {
			m.jobs[i] = *j
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Counts ---

func (m *mockStore) CountTools(_ context.Context) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.tools)), nil
}

func (m *mockStore) CountPublishedTools(_ context.Context) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, t := range m.tools {
		if t.IsPublic {
			n++
		}
	}
	return n, nil
}

func (m *mockStore) CountTenants(_ context.Context) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.tenants)), nil
}

func (m *mockStore) CountTemplates(_ context.Context) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.templates)), nil
}

func (m *mockStore) CountTemplateClones(_ context.Context) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.clones)), nil
}

// --- Other test doubles ---

// mockQueue records published messages and lets tests invoke subscribers
// directly.
type mockQueue struct {
	mu         sync.Mutex
	published  []publishedMsg
	publishErr error
}

type publishedMsg struct {
	Subject string
	Data    []byte
}

func (q *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, publishedMsg{Subject: subject, Data: data})
	return nil
}

func (q *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

var _ messagequeue.Queue = (*mockQueue)(nil)

func (q *mockQueue) Close() error { return nil }

func (q *mockQueue) bySubject(subject string) [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out [][]byte
	for _, p := range q.published {
		if p.Subject == subject {
			out = append(out, p.Data)
		}
	}
	return out
}

// mockBroadcaster records broadcast events.
type mockBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

type broadcastEvent struct {
	Type    string
	Payload any
}

func (b *mockBroadcaster) BroadcastEvent(_ context.Context, eventType string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{Type: eventType, Payload: payload})
}

func (b *mockBroadcaster) count(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// mockCache is an in-memory cache ignoring TTLs.
type mockCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	hits    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]byte)}
}

func (c *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return data, ok, nil
}

func (c *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *mockCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
