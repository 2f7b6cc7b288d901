package module

import (
	"errors"
	"sort"
	"sync"

	"github.com/saasforge/saasforge/internal/domain/tenant"
)

// ErrDuplicateSlug indicates an attempt to register a slug twice.
// Slugs are immutable once referenced by any instance.
var ErrDuplicateSlug = errors.New("module slug already registered")

// Registry is a concurrency-safe slug -> Definition lookup.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition. Fails with ErrDuplicateSlug if the slug exists.
func (r *Registry) Register(d Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[d.Slug]; ok {
		return ErrDuplicateSlug
	}
	r.defs[d.Slug] = d
	return nil
}

// Resolve returns the definition for slug. The second return is false for
// unknown slugs; callers substitute the fallback renderer rather than fail.
func (r *Registry) Resolve(slug string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[slug]
	return d, ok
}

// Fallback returns the generic fallback definition used for unknown slugs.
func (r *Registry) Fallback() Definition {
	if d, ok := r.Resolve(FallbackSlug); ok {
		return d
	}
	return Definition{Slug: FallbackSlug, Name: "Data Table", Renderer: RendererTable}
}

// Listing is a definition annotated with plan availability for the caller.
type Listing struct {
	Definition
	Locked bool `json:"locked"`
}

// ListAvailable returns all definitions sorted by slug, marking premium
// modules as locked for plans without premium entitlement. Locked modules
// stay visible so the UI can offer an upgrade path.
func (r *Registry) ListAvailable(plan tenant.Plan) []Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Listing, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, Listing{
			Definition: d,
			Locked:     d.IsPremium && !plan.AllowsPremium(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
