// Package tool defines the versioned Tool entity: pages, module instances
// and layout per version, plus the marketplace metadata mutated by the
// clone and publish paths.
package tool

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saasforge/saasforge/internal/domain"
	"github.com/saasforge/saasforge/internal/domain/schema"
)

// Structural errors. All wrap domain.ErrValidation so the HTTP layer maps
// them to 400 while callers can still branch on the specific condition.
var (
	ErrDuplicatePage = fmt.Errorf("page already exists: %w", domain.ErrValidation)
	ErrUnknownPage   = fmt.Errorf("page does not exist: %w", domain.ErrValidation)
	ErrLastPage      = fmt.Errorf("cannot delete the last page: %w", domain.ErrValidation)
	ErrInvariant     = fmt.Errorf("instance references a page outside the version: %w", domain.ErrValidation)
)

// Instance is one placed occurrence of a module on a page within a version.
type Instance struct {
	ID             string         `json:"id"`
	ModuleSlug     string         `json:"module_slug"`
	PageName       string         `json:"page_name"`
	CollectionName string         `json:"collection_name"`
	Config         map[string]any `json:"config"`
}

// NewInstanceID returns a collision-free instance identifier. The slug
// prefix keeps ids human-readable in stored layouts.
func NewInstanceID(moduleSlug string) string {
	return moduleSlug + "_" + uuid.NewString()
}

// Version is one snapshot of a tool's structure. Page order is navigation
// order. Every instance's PageName must be a member of Pages.
type Version struct {
	Number       int            `json:"number"`
	Schemas      []schema.Table `json:"schemas"`
	Pages        []string       `json:"pages"`
	Instances    []Instance     `json:"instances"`
	LayoutConfig map[string]any `json:"layout_config"`
}

// Validate checks the page/instance invariant and page uniqueness.
func (v *Version) Validate() error {
	pageSet := make(map[string]struct{}, len(v.Pages))
	for _, p := range v.Pages {
		if p == "" {
			return fmt.Errorf("page name empty: %w", domain.ErrValidation)
		}
		if _, dup := pageSet[p]; dup {
			return fmt.Errorf("page %q: %w", p, ErrDuplicatePage)
		}
		pageSet[p] = struct{}{}
	}
	if len(v.Pages) == 0 {
		return fmt.Errorf("version has no pages: %w", domain.ErrValidation)
	}

	ids := make(map[string]struct{}, len(v.Instances))
	for _, in := range v.Instances {
		if in.ID == "" {
			return fmt.Errorf("instance missing id: %w", domain.ErrValidation)
		}
		if _, dup := ids[in.ID]; dup {
			return fmt.Errorf("duplicate instance id %q: %w", in.ID, domain.ErrValidation)
		}
		ids[in.ID] = struct{}{}
		if _, ok := pageSet[in.PageName]; !ok {
			return fmt.Errorf("instance %q on page %q: %w", in.ID, in.PageName, ErrInvariant)
		}
	}
	return nil
}

// Clone returns a deep copy of the version. Mutating the copy never
// touches the original.
func (v *Version) Clone() Version {
	cp := Version{
		Number:       v.Number,
		Schemas:      append([]schema.Table(nil), v.Schemas...),
		Pages:        append([]string(nil), v.Pages...),
		Instances:    make([]Instance, len(v.Instances)),
		LayoutConfig: cloneMap(v.LayoutConfig),
	}
	for i, in := range v.Instances {
		in.Config = cloneMap(in.Config)
		cp.Instances[i] = in
	}
	return cp
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// Tool is one generated or cloned application owned by exactly one tenant.
// RowVersion is the optimistic-locking counter used by the store; it is
// unrelated to the structural version ledger.
type Tool struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	CurrentVersion int       `json:"current_version"` // 1-indexed into Versions
	Versions       []Version `json:"versions"`
	IsPublic       bool      `json:"is_public"`
	IsPremium      bool      `json:"is_premium"`
	IsApproved     bool      `json:"is_approved"`
	Price          int64     `json:"price"` // cents
	Category       string    `json:"category"`
	Tags           []string  `json:"tags"`
	ClonesCount    int       `json:"clones_count"`
	Rating         float64   `json:"rating"`
	ReviewsCount   int       `json:"reviews_count"`
	RowVersion     int       `json:"row_version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Current returns the version CurrentVersion points at, or nil when the
// pointer is out of range.
func (t *Tool) Current() *Version {
	if t.CurrentVersion < 1 || t.CurrentVersion > len(t.Versions) {
		return nil
	}
	return &t.Versions[t.CurrentVersion-1]
}

// New creates a tool from a validated schema descriptor. Version 1 gets
// one page per schema table (or a single Dashboard page) and no instances.
func New(tenantID, name string, desc schema.Descriptor) (*Tool, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	pages := []string{"Dashboard"}
	v1 := Version{
		Number:       1,
		Schemas:      append([]schema.Table(nil), desc.Tables...),
		Pages:        pages,
		Instances:    []Instance{},
		LayoutConfig: map[string]any{},
	}
	return &Tool{
		TenantID:       tenantID,
		Name:           name,
		Slug:           Slugify(name),
		CurrentVersion: 1,
		Versions:       []Version{v1},
	}, nil
}
