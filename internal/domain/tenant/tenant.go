// Package tenant defines the Tenant domain entity and plan gating rules.
package tenant

import "time"

// Plan is a tenant's subscription tier.
type Plan string

// Known plans, in ascending order of entitlement.
const (
	PlanFree  Plan = "free"
	PlanBasic Plan = "basic"
	PlanPro   Plan = "pro"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanBasic, PlanPro:
		return true
	}
	return false
}

// AllowsPremium reports whether the plan may use premium modules and
// clone premium templates. Gating happens at both the add-module and
// clone boundaries.
func (p Plan) AllowsPremium() bool {
	return p == PlanBasic || p == PlanPro
}

// Branding holds per-tenant white-label settings rendered by published sites.
type Branding struct {
	LogoURL      string `json:"logo_url,omitempty"`
	PrimaryColor string `json:"primary_color,omitempty"`
	CompanyName  string `json:"company_name,omitempty"`
}

// Tenant owns zero or more tools and carries the plan that gates
// premium features.
type Tenant struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	OwnerEmail      string    `json:"owner_email"`
	Plan            Plan      `json:"plan"`
	IsActive        bool      `json:"is_active"`
	EarningsBalance int64     `json:"earnings_balance"` // cents, credited by paid clones
	ClonedToolIDs   []string  `json:"cloned_tool_ids"`
	Branding        Branding  `json:"branding"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasCloned reports whether the tenant already cloned the given
// marketplace tool.
func (t *Tenant) HasCloned(toolID string) bool {
	for _, id := range t.ClonedToolIDs {
		if id == toolID {
			return true
		}
	}
	return false
}
