package http

import (
	"net/http"

	"github.com/saasforge/saasforge/internal/domain/template"
	"github.com/saasforge/saasforge/internal/domain/tenant"
)

// AdminDashboard returns platform-wide counts.
func (h *Handlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Admin.Dashboard(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// AdminListTenants returns every tenant.
func (h *Handlers) AdminListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.Admin.ListTenants(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}

type updatePlanRequest struct {
	Plan string `json:"plan"`
}

// AdminUpdateTenantPlan changes a tenant's subscription tier.
func (h *Handlers) AdminUpdateTenantPlan(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[updatePlanRequest](w, r)
	if !ok {
		return
	}

	if err := h.Admin.UpdateTenantPlan(r.Context(), urlParam(r, "id"), tenant.Plan(req.Plan)); err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"plan": req.Plan})
}

// AdminListTemplates returns all templates including unpublished ones.
func (h *Handlers) AdminListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Admin.ListTemplates(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// AdminCreateTemplate adds a template to the gallery.
func (h *Handlers) AdminCreateTemplate(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[template.Template](w, r)
	if !ok {
		return
	}

	if err := h.Admin.CreateTemplate(r.Context(), &req); err != nil {
		writeDomainError(w, err, "template not found")
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// AdminUpdateTemplate replaces a template.
func (h *Handlers) AdminUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[template.Template](w, r)
	if !ok {
		return
	}
	req.ID = urlParam(r, "id")

	if err := h.Admin.UpdateTemplate(r.Context(), &req); err != nil {
		writeDomainError(w, err, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// AdminDeleteTemplate removes a template from the gallery.
func (h *Handlers) AdminDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.Admin.DeleteTemplate(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "template not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminApproveTool marks a marketplace tool as moderated-approved.
func (h *Handlers) AdminApproveTool(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, true)
}

// AdminRejectTool clears a marketplace tool's approval flag. Existing
// clones are untouched.
func (h *Handlers) AdminRejectTool(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, false)
}

func (h *Handlers) setApproval(w http.ResponseWriter, r *http.Request, approved bool) {
	if err := h.Admin.SetToolApproval(r.Context(), urlParam(r, "id"), approved); err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_approved": approved})
}
