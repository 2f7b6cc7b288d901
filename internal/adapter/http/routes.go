package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saasforge/saasforge/internal/domain/identity"
	"github.com/saasforge/saasforge/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router. wsHandler
// serves the live-events WebSocket endpoint.
func MountRoutes(r chi.Router, h *Handlers, wsHandler http.HandlerFunc) {
	r.Get("/health", h.Health)
	r.Get("/health/ready", h.Ready)
	r.Get("/ws", wsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Public surface: marketplace, gallery and vanity resolution.
		r.Get("/marketplace", h.ListMarketplace)
		r.Get("/marketplace/{id}", h.GetMarketplaceTool)
		r.Get("/templates", h.ListTemplates)
		r.Get("/templates/{slug}", h.GetTemplate)
		r.Get("/tools/resolve/{slug}/{emailPrefix}", h.ResolveVanity)

		// Authenticated, tenant-scoped surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			// Tools
			r.Post("/tools/generate", h.GenerateTool)
			r.Get("/tools/jobs/{id}", h.GetGenerationJob)
			r.Get("/tools/modules", h.ListModules)
			r.Get("/tools", h.ListTools)
			r.Post("/tools", h.CreateTool)
			r.Get("/tools/{id}", h.GetTool)
			r.Put("/tools/{id}", h.UpdateTool)
			r.Delete("/tools/{id}", h.DeleteTool)

			// Structural edits
			r.Post("/tools/{id}/pages", h.AddPage)
			r.Delete("/tools/{id}/pages/{name}", h.DeletePage)
			r.Post("/tools/{id}/instances", h.AddInstance)
			r.Delete("/tools/{id}/instances/{instanceId}", h.RemoveInstance)
			r.Post("/tools/{id}/versions", h.SnapshotVersion)

			// Templates
			r.Post("/templates/{id}/clone", h.CloneTemplate)
			r.Get("/templates/clones", h.ListTemplateClones)

			// Marketplace actions
			r.Post("/marketplace/publish/{id}", h.PublishTool)
			r.Post("/marketplace/unpublish/{id}", h.UnpublishTool)
			r.Post("/marketplace/clone/{id}", h.CloneMarketplaceTool)
			r.Post("/marketplace/review/{id}", h.ReviewTool)

			// Dynamic collections
			r.Get("/dynamic/{collection}", h.ListRecords)
			r.Post("/dynamic/{collection}", h.CreateRecord)
			r.Get("/dynamic/{collection}/{id}", h.GetRecord)
			r.Put("/dynamic/{collection}/{id}", h.UpdateRecord)
			r.Delete("/dynamic/{collection}/{id}", h.DeleteRecord)

			// Webhooks
			r.Get("/webhooks", h.ListWebhooks)
			r.Post("/webhooks", h.CreateWebhook)
			r.Delete("/webhooks/{id}", h.DeleteWebhook)
		})

		// Admin console.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(identity.RoleAdmin))

			r.Get("/admin/dashboard", h.AdminDashboard)
			r.Get("/admin/tenants", h.AdminListTenants)
			r.Put("/admin/tenants/{id}/plan", h.AdminUpdateTenantPlan)

			r.Get("/admin/templates", h.AdminListTemplates)
			r.Post("/admin/templates", h.AdminCreateTemplate)
			r.Put("/admin/templates/{id}", h.AdminUpdateTemplate)
			r.Delete("/admin/templates/{id}", h.AdminDeleteTemplate)

			r.Put("/admin/tools/{id}/approve", h.AdminApproveTool)
			r.Put("/admin/tools/{id}/reject", h.AdminRejectTool)
		})
	})
}
