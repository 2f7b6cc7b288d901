package http

import (
	"net/http"

	"github.com/saasforge/saasforge/internal/domain/schema"
	"github.com/saasforge/saasforge/internal/service"
)

type createToolRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Schema      schema.Descriptor `json:"schema"`
}

// CreateTool builds a tool from an explicit schema descriptor.
func (h *Handlers) CreateTool(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[createToolRequest](w, r)
	if !ok {
		return
	}

	t, err := h.Tools.Create(r.Context(), req.Name, req.Description, req.Schema)
	if err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ListTools returns the calling tenant's tools.
func (h *Handlers) ListTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.Tools.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tools)
}

// GetTool returns one tool owned by the calling tenant.
func (h *Handlers) GetTool(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tools.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTool replaces the current version's structure and metadata.
func (h *Handlers) UpdateTool(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[service.UpdateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.Tools.Update(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTool removes a tool.
func (h *Handlers) DeleteTool(w http.ResponseWriter, r *http.Request) {
	if err := h.Tools.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addPageRequest struct {
	Name string `json:"name"`
}

// AddPage appends a page to the current version.
func (h *Handlers) AddPage(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[addPageRequest](w, r)
	if !ok {
		return
	}

	t, err := h.Tools.AddPage(r.Context(), urlParam(r, "id"), req.Name)
	if err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// DeletePage removes a page and its instances.
func (h *Handlers) DeletePage(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tools.DeletePage(r.Context(), urlParam(r, "id"), urlParam(r, "name"))
	if err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// AddInstance places a module instance on a page.
func (h *Handlers) AddInstance(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[service.AddInstanceRequest](w, r)
	if !ok {
		return
	}

	in, err := h.Tools.AddInstance(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

// RemoveInstance removes an instance by id. Idempotent.
func (h *Handlers) RemoveInstance(w http.ResponseWriter, r *http.Request) {
	if err := h.Tools.RemoveInstance(r.Context(), urlParam(r, "id"), urlParam(r, "instanceId")); err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SnapshotVersion appends a copy-on-write version and moves the pointer.
func (h *Handlers) SnapshotVersion(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tools.SnapshotVersion(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ListModules returns the module catalog annotated for the caller's plan.
func (h *Handlers) ListModules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Tools.ListModules(r.Context()))
}

// ResolveVanity serves the public render model for a vanity URL. Missing
// and private tools answer identically.
func (h *Handlers) ResolveVanity(w http.ResponseWriter, r *http.Request) {
	view, err := h.Resolution.ResolveVanity(r.Context(), urlParam(r, "slug"), urlParam(r, "emailPrefix"))
	if err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}
