package module

// catalogEntry is the compact form the built-in catalog is declared in.
type catalogEntry struct {
	slug     string
	name     string
	category string
	renderer string
	premium  bool
}

// The built-in module library. Each entry maps to one of the three
// renderers; premium entries require a basic or pro plan.
var catalog = []catalogEntry{
	// Core data modules
	{"crud_table", "Data Table", "data", RendererTable, false},
	{"contact_list", "Contact List", "data", RendererTable, false},
	{"lead_tracker", "Lead Tracker", "crm", RendererTable, false},
	{"customer_table", "Customer Table", "crm", RendererTable, false},
	{"inventory_list", "Inventory List", "operations", RendererTable, false},
	{"order_table", "Order Table", "operations", RendererTable, false},
	{"invoice_list", "Invoice List", "finance", RendererTable, true},
	{"expense_tracker", "Expense Tracker", "finance", RendererTable, false},
	{"employee_directory", "Employee Directory", "hr", RendererTable, false},
	{"ticket_queue", "Ticket Queue", "support", RendererTable, false},
	{"asset_register", "Asset Register", "operations", RendererTable, true},
	{"booking_list", "Booking List", "scheduling", RendererTable, false},

	// Charts and dashboards
	{"chart_dashboard", "Chart Dashboard", "analytics", RendererChart, false},
	{"sales_dashboard", "Sales Dashboard", "analytics", RendererChart, true},
	{"revenue_chart", "Revenue Chart", "finance", RendererChart, true},
	{"traffic_overview", "Traffic Overview", "analytics", RendererChart, false},
	{"kpi_summary", "KPI Summary", "analytics", RendererChart, true},
	{"inventory_levels", "Inventory Levels", "operations", RendererChart, false},
	{"support_metrics", "Support Metrics", "support", RendererChart, true},

	// Kanban boards
	{"kanban_board", "Kanban Board", "project", RendererKanban, false},
	{"task_board", "Task Board", "project", RendererKanban, false},
	{"sprint_board", "Sprint Board", "project", RendererKanban, true},
	{"deal_pipeline", "Deal Pipeline", "crm", RendererKanban, true},
	{"hiring_pipeline", "Hiring Pipeline", "hr", RendererKanban, true},
	{"content_calendar", "Content Calendar", "marketing", RendererKanban, false},
}

// DefaultRegistry returns a registry preloaded with the built-in catalog.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, e := range catalog {
		_ = r.Register(Definition{
			Slug:      e.slug,
			Name:      e.name,
			Category:  e.category,
			Renderer:  e.renderer,
			IsPremium: e.premium,
			DefaultConfig: map[string]any{
				"renderer": e.renderer,
				"pageSize": 25,
			},
		})
	}
	return r
}
