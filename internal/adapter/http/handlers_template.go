package http

import "net/http"

// ListTemplates returns the public gallery.
func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Templates.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// GetTemplate returns one public template for preview.
func (h *Handlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.Templates.GetBySlug(r.Context(), urlParam(r, "slug"))
	if err != nil {
		writeDomainError(w, err, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// CloneTemplate instantiates a template into a tenant-owned tool.
func (h *Handlers) CloneTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.Templates.Clone(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "template not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ListTemplateClones returns the calling tenant's clone records.
func (h *Handlers) ListTemplateClones(w http.ResponseWriter, r *http.Request) {
	clones, err := h.Templates.ListClones(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clones)
}
