package http

import (
	"net/http"

	"github.com/saasforge/saasforge/internal/domain/webhook"
)

// ListWebhooks returns the calling tenant's registrations.
func (h *Handlers) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	hooks, err := h.Webhooks.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if hooks == nil {
		hooks = []webhook.Webhook{}
	}
	writeJSON(w, http.StatusOK, hooks)
}

// CreateWebhook registers a webhook. The generated secret is returned
// exactly once, in this response.
func (h *Handlers) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[webhook.Webhook](w, r)
	if !ok {
		return
	}

	created, err := h.Webhooks.Create(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "webhook not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// DeleteWebhook removes a registration.
func (h *Handlers) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	if err := h.Webhooks.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "webhook not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
