package http

import "net/http"

// ListRecords returns all records of a dynamic collection.
func (h *Handlers) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.Dynamic.List(r.Context(), urlParam(r, "collection"))
	if err != nil {
		writeDomainError(w, err, "collection not found")
		return
	}
	if records == nil {
		records = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, records)
}

// GetRecord returns one record.
func (h *Handlers) GetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.Dynamic.Get(r.Context(), urlParam(r, "collection"), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// CreateRecord inserts a record into a dynamic collection.
func (h *Handlers) CreateRecord(w http.ResponseWriter, r *http.Request) {
	data, ok := readJSON[map[string]any](w, r)
	if !ok {
		return
	}

	record, err := h.Dynamic.Create(r.Context(), urlParam(r, "collection"), data)
	if err != nil {
		writeDomainError(w, err, "collection not found")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// UpdateRecord replaces a record's data.
func (h *Handlers) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	data, ok := readJSON[map[string]any](w, r)
	if !ok {
		return
	}

	record, err := h.Dynamic.Update(r.Context(), urlParam(r, "collection"), urlParam(r, "id"), data)
	if err != nil {
		writeDomainError(w, err, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// DeleteRecord removes a record.
func (h *Handlers) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.Dynamic.Delete(r.Context(), urlParam(r, "collection"), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "record not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
