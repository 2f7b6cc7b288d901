package service

import (
	"context"
	"errors"
	"testing"

	"github.com/saasforge/saasforge/internal/domain"
	"github.com/saasforge/saasforge/internal/domain/module"
	"github.com/saasforge/saasforge/internal/domain/schema"
	"github.com/saasforge/saasforge/internal/domain/tool"
	"github.com/saasforge/saasforge/internal/middleware"
	"github.com/saasforge/saasforge/internal/port/broadcast"
)

func tenantCtx(id string) context.Context {
	return middleware.WithTenantID(context.Background(), id)
}

func testDescriptor() schema.Descriptor {
	return schema.Descriptor{Tables: []schema.Table{
		{Name: "contacts", Fields: []schema.Field{
			{Name: "name", Type: schema.TypeString, Required: true},
			{Name: "email", Type: schema.TypeString},
		}},
	}}
}

func newToolService(store *mockStore) (*ToolService, *mockBroadcaster) {
	b := &mockBroadcaster{}
	return NewToolService(store, module.DefaultRegistry(), b, nil), b
}

func TestToolService_Create(t *testing.T) {
	store := &mockStore{}
	svc, _ := newToolService(store)
	ctx := tenantCtx("tenant-1")

	created, err := svc.Create(ctx, "CRM", "customer tracker", testDescriptor())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected ID to be set")
	}
	if created.TenantID != "tenant-1" {
		t.Errorf("tenant = %q, want tenant-1", created.TenantID)
	}
	if created.CurrentVersion != 1 || len(created.Versions) != 1 {
		t.Fatalf("expected a single version, got pointer=%d len=%d", created.CurrentVersion, len(created.Versions))
	}
	if got := created.Versions[0].Pages; len(got) != 1 || got[0] != "Dashboard" {
		t.Errorf("pages = %v, want [Dashboard]", got)
	}
}

func TestToolService_CreateInvalidSchema(t *testing.T) {
	svc, _ := newToolService(&mockStore{})

	_, err := svc.Create(tenantCtx("tenant-1"), "CRM", "", schema.Descriptor{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestToolService_GetOtherTenant(t *testing.T) {
	store := &mockStore{}
	svc, _ := newToolService(store)

	created, err := svc.Create(tenantCtx("tenant-1"), "CRM", "", testDescriptor())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Another tenant cannot tell the tool apart from a missing one.
	_, err = svc.Get(tenantCtx("tenant-2"), created.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestToolService_UpdateReplacesStructure(t *testing.T) {
	store := &mockStore{}
	svc, b := newToolService(store)
	ctx := tenantCtx("tenant-1")

	created, err := svc.Create(ctx, "CRM", "", testDescriptor())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, UpdateRequest{
		Pages:      []string{"Dashboard", "Contacts"},
		Instances:  []tool.Instance{},
		RowVersion: created.RowVersion,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := updated.Current().Pages; len(got) != 2 {
		t.Errorf("pages = %v, want 2 entries", got)
	}
	if updated.RowVersion != created.RowVersion+1 {
		t.Errorf("row version = %d, want %d", updated.RowVersion, created.RowVersion+1)
	}
	if b.count(broadcast.EventToolUpdated) != 1 {
		t.Error("expected a tool.updated broadcast")
	}
}

func TestToolService_UpdateRejectsBrokenInvariant(t *testing.T) {
	store := &mockStore{}
	svc, _ := newToolService(store)
	ctx := tenantCtx("tenant-1")

	created, err := svc.Create(ctx, "CRM", "", testDescriptor())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Instance bound to a page outside the replacement page set.
	_, err = svc.Update(ctx, created.ID, UpdateRequest{
		Pages: []string{"Dashboard"},
		Instances: []tool.Instance{
			{ID: "x_1", ModuleSlug: "crud_table", PageName: "Ghost"},
		},
		RowVersion: created.RowVersion,
	})
	if !errors.Is(err, tool.ErrInvariant) {
		t.Errorf("expected ErrInvariant, got %v", err)
	}

	// The stored tool is untouched.
	stored, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(stored.Current().Instances) != 0 {
		t.Error("rejected update must not leave partial state")
	}
}

func TestToolService_UpdateStaleRowVersion(t *testing.T) {
	store := &mockStore{}
	svc, _ := newToolService(store)
	ctx := tenantCtx("tenant-1")

	created, err := svc.Create(ctx, "CRM", "", testDescriptor())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(ctx, created.ID, UpdateRequest{
		Pages:      []string{"Dashboard"},
		RowVersion: created.RowVersion + 7,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestToolService_PageLifecycle(t *testing.T) {
	store := &mockStore{}
	svc, _ := newToolService(store)
	ctx := tenantCtx("tenant-1")

	created, err := svc.Create(ctx, "CRM", "", testDescriptor())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.AddPage(ctx, created.ID, "Contacts"); err != nil {
		t.Fatalf("AddPage: %v", err)
	}
	if _, err := svc.AddPage(ctx, created.ID, "Contacts"); !errors.Is(err, tool.ErrDuplicatePage) {
		t.Errorf("expected ErrDuplicatePage, got %v", err)
	}

	// Deleting a page cascades to its instances only.
	in, err := svc.AddInstance(ctx, created.ID, AddInstanceRequest{
		PageName:       "Contacts",
		ModuleSlug:     "crud_table",
		CollectionName: "contacts",
	})
	if err != nil {
		t.Fatalf("AddInstance: %v", err)
	}

	updated, err := svc.DeletePage(ctx, created.ID, "Contacts")
	if err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	for _, got := range updated.Current().Instances {
		if got.ID == in.ID {
			t.Error("instance should be cascaded with its page")
		}
	}

	if _, err := svc.DeletePage(ctx, created.ID, "Dashboard"); !errors.Is(err, tool.ErrLastPage) {
		t.Errorf("expected ErrLastPage, got %v", err)
	}
}

func TestToolService_AddInstancePremiumGate(t *testing.T) {
	store := &mockStore{}
	svc, _ := newToolService(store)

	// Free plan context.
	ctx := tenantCtx("tenant-1")
	created, err := svc.Create(ctx, "CRM", "", testDescriptor())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	premiumSlug := ""
	for _, l := range module.DefaultRegistry().ListAvailable("free") {
		if l.IsPremium {
			premiumSlug = l.Slug
			break
		}
	}
	if premiumSlug == "" {
		t.Fatal("catalog has no premium module to test against")
	}

	_, err = svc.AddInstance(ctx, created.ID, AddInstanceRequest{
		PageName:   "Dashboard",
		ModuleSlug: premiumSlug,
	})
	if !errors.Is(err, domain.ErrUpgradeRequired) {
		t.Errorf("expected ErrUpgradeRequired, got %v", err)
	}
}

func TestToolService_AddInstanceUnknownModule(t *testing.T) {
	store := &mockStore{}
	svc, _ := newToolService(store)
	ctx := tenantCtx("tenant-1")

	created, err := svc.Create(ctx, "CRM", "", testDescriptor())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.AddInstance(ctx, created.ID, AddInstanceRequest{
		PageName:   "Dashboard",
		ModuleSlug: "does_not_exist",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestToolService_RemoveInstanceIdempotent(t *testing.T) {
	store := &mockStore{}
	svc, _ := newToolService(store)
	ctx := tenantCtx("tenant-1")

	created, err := svc.Create(ctx, "CRM", "", testDescriptor())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.RemoveInstance(ctx, created.ID, "never-existed"); err != nil {
		t.Errorf("removing an absent instance must be a no-op, got %v", err)
	}
}

func TestToolService_SnapshotVersion(t *testing.T) {
	store := &mockStore{}
	svc, _ := newToolService(store)
	ctx := tenantCtx("tenant-1")

	created, err := svc.Create(ctx, "CRM", "", testDescriptor())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	snapped, err := svc.SnapshotVersion(ctx, created.ID)
	if err != nil {
		t.Fatalf("SnapshotVersion: %v", err)
	}
	if snapped.CurrentVersion != 2 || len(snapped.Versions) != 2 {
		t.Fatalf("pointer=%d len=%d, want 2/2", snapped.CurrentVersion, len(snapped.Versions))
	}

	// Editing the new version leaves version 1 untouched.
	if _, err := svc.AddPage(ctx, created.ID, "Reports"); err != nil {
		t.Fatalf("AddPage: %v", err)
	}
	stored, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(stored.Versions[0].Pages) != 1 {
		t.Errorf("version 1 pages = %v, want untouched [Dashboard]", stored.Versions[0].Pages)
	}
	if len(stored.Versions[1].Pages) != 2 {
		t.Errorf("version 2 pages = %v, want 2 entries", stored.Versions[1].Pages)
	}
}

func TestToolService_ListModulesLocksPremiumForFree(t *testing.T) {
	svc, _ := newToolService(&mockStore{})

	listings := svc.ListModules(tenantCtx("tenant-1"))
	if len(listings) == 0 {
		t.Fatal("expected a non-empty catalog")
	}
	for _, l := range listings {
		if l.IsPremium && !l.Locked {
			t.Errorf("premium module %q should be locked for the free plan", l.Slug)
		}
	}
}
