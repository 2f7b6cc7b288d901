package middleware

import (
	"context"
	"net/http"
)

// DefaultTenantID is the zero-UUID tenant seeded by the first migration,
// used by single-tenant deployments that never set X-Tenant-ID.
const DefaultTenantID = "00000000-0000-0000-0000-000000000000"

const headerTenantID = "X-Tenant-ID"

type tenantCtxKey struct{}

// TenantID resolves the calling tenant from the X-Tenant-ID header set by
// the edge gateway. Every store query downstream filters by this value.
func TenantID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := r.Header.Get(headerTenantID)
		if tid == "" {
			tid = DefaultTenantID
		}
		next.ServeHTTP(w, r.WithContext(WithTenantID(r.Context(), tid)))
	})
}

// TenantIDFromContext returns the tenant ID stored in ctx, or
// DefaultTenantID if absent.
func TenantIDFromContext(ctx context.Context) string {
	if tid, ok := ctx.Value(tenantCtxKey{}).(string); ok {
		return tid
	}
	return DefaultTenantID
}

// WithTenantID returns a context carrying the given tenant id. Used by
// queue consumers that act on behalf of a stored tenant outside any
// HTTP request.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantCtxKey{}, tenantID)
}
