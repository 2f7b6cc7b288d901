package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/saasforge/saasforge/internal/middleware"
)

func TestTenantID_FromHeader(t *testing.T) {
	var got string
	h := middleware.TenantID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.TenantIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant-ID", "tenant-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "tenant-42" {
		t.Fatalf("tenant = %q, want %q", got, "tenant-42")
	}
}

func TestTenantID_DefaultWhenAbsent(t *testing.T) {
	var got string
	h := middleware.TenantID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.TenantIDFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got != middleware.DefaultTenantID {
		t.Fatalf("tenant = %q, want default", got)
	}
}

func TestWithTenantID(t *testing.T) {
	ctx := middleware.WithTenantID(context.Background(), "tenant-7")
	if got := middleware.TenantIDFromContext(ctx); got != "tenant-7" {
		t.Fatalf("tenant = %q, want %q", got, "tenant-7")
	}
}
