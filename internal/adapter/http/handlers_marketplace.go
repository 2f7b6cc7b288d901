package http

import (
	"net/http"

	"github.com/saasforge/saasforge/internal/port/database"
	"github.com/saasforge/saasforge/internal/service"
)

// ListMarketplace returns the public listing with search, category and
// sort filters.
func (h *Handlers) ListMarketplace(w http.ResponseWriter, r *http.Request) {
	q := database.MarketplaceQuery{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Sort:     r.URL.Query().Get("sort"),
	}

	tools, err := h.Marketplace.List(r.Context(), q)
	if err != nil {
		writeDomainError(w, err, "marketplace unavailable")
		return
	}
	writeJSON(w, http.StatusOK, tools)
}

// GetMarketplaceTool returns one public tool with its reviews.
func (h *Handlers) GetMarketplaceTool(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Marketplace.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// PublishTool lists a tool on the marketplace and returns its vanity URL.
func (h *Handlers) PublishTool(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[service.PublishRequest](w, r)
	if !ok {
		return
	}

	t, vanity, err := h.Marketplace.Publish(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tool":       t,
		"vanity_url": vanity,
	})
}

// UnpublishTool delists a tool. Existing clones keep working.
func (h *Handlers) UnpublishTool(w http.ResponseWriter, r *http.Request) {
	t, err := h.Marketplace.Unpublish(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CloneMarketplaceTool deep-copies a public tool into the calling tenant.
func (h *Handlers) CloneMarketplaceTool(w http.ResponseWriter, r *http.Request) {
	t, err := h.Marketplace.Clone(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewTool upserts the calling tenant's review of a marketplace tool.
func (h *Handlers) ReviewTool(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[reviewRequest](w, r)
	if !ok {
		return
	}

	rev, err := h.Marketplace.Review(r.Context(), urlParam(r, "id"), req.Rating, req.Comment)
	if err != nil {
		writeDomainError(w, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}
