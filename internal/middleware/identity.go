package middleware

import (
	"context"
	"net/http"

	"github.com/saasforge/saasforge/internal/domain/identity"
	"github.com/saasforge/saasforge/internal/domain/tenant"
)

type identityCtxKey struct{}

// Edge headers carrying the authenticated caller. The gateway terminates
// sessions; the core trusts these headers and never sees tokens.
const (
	headerUserID    = "X-User-ID"
	headerUserEmail = "X-User-Email"
	headerUserRole  = "X-User-Role"
	headerPlan      = "X-Tenant-Plan"
)

// Identity extracts the caller identity from edge headers into the request
// context. Requests without a user id pass through as anonymous; route
// groups that need authentication use RequireAuth.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := identity.Identity{
			UserID:   r.Header.Get(headerUserID),
			Email:    r.Header.Get(headerUserEmail),
			Role:     r.Header.Get(headerUserRole),
			TenantID: r.Header.Get(headerTenantID),
			Plan:     r.Header.Get(headerPlan),
		}
		if id.Role == "" {
			id.Role = identity.RoleUser
		}
		if id.Plan == "" {
			id.Plan = string(tenant.PlanFree)
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// WithIdentity returns a context carrying the given caller identity.
func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext returns the caller identity stored in ctx. A zero
// Identity (anonymous) is returned when none was set.
func IdentityFromContext(ctx context.Context) identity.Identity {
	id, _ := ctx.Value(identityCtxKey{}).(identity.Identity)
	return id
}

// PlanFromContext returns the caller's plan, defaulting to free.
func PlanFromContext(ctx context.Context) tenant.Plan {
	p := tenant.Plan(IdentityFromContext(ctx).Plan)
	if !p.Valid() {
		return tenant.PlanFree
	}
	return p
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()).Anonymous() {
			http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that restricts access to callers holding
// one of the given roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id.Anonymous() {
				http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
				return
			}
			if !allowed[id.Role] {
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
