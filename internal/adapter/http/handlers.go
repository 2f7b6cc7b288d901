package http

import (
	"context"
	"net/http"

	"github.com/saasforge/saasforge/internal/service"
)

// ReadinessChecker reports whether a dependency is ready to serve.
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Tools       *service.ToolService
	Generation  *service.GenerationService
	Templates   *service.TemplateService
	Marketplace *service.MarketplaceService
	Resolution  *service.ResolutionService
	Dynamic     *service.DynamicService
	Webhooks    *service.WebhookService
	Admin       *service.AdminService

	// Readiness dependencies, nil entries are skipped.
	DB ReadinessChecker
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports readiness: the process is up and its hard dependencies
// answer.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
