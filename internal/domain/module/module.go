// Package module defines reusable UI module capabilities and the registry
// that resolves instance slugs to render-ready definitions.
package module

// Definition describes a reusable capability that can be placed on a page.
type Definition struct {
	Slug          string         `json:"slug"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	Renderer      string         `json:"renderer"`
	IsPremium     bool           `json:"is_premium"`
	DefaultConfig map[string]any `json:"default_config"`
}

// Renderer slugs. Every catalog entry maps to one of these three; the
// fallback renderer handles slugs the registry no longer knows.
const (
	RendererTable  = "crud_table"
	RendererChart  = "chart_dashboard"
	RendererKanban = "kanban_board"
)

// FallbackSlug is substituted when view resolution meets an unknown
// module slug. Unknown slugs are a recoverable condition, never fatal.
const FallbackSlug = RendererTable

// CloneConfig returns a shallow copy of the default config so instances
// never alias the registry's map.
func (d Definition) CloneConfig() map[string]any {
	if d.DefaultConfig == nil {
		return map[string]any{}
	}
	cp := make(map[string]any, len(d.DefaultConfig))
	for k, v := range d.DefaultConfig {
		cp[k] = v
	}
	return cp
}
