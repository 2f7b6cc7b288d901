package http

import "net/http"

type generateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
}

// GenerateTool queues an asynchronous schema-generation job.
func (h *Handlers) GenerateTool(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[generateRequest](w, r)
	if !ok {
		return
	}

	job, err := h.Generation.Submit(r.Context(), req.Name, req.Description, req.Prompt)
	if err != nil {
		writeDomainError(w, err, "job not found")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"state":  job.State,
	})
}

// GetGenerationJob returns a job's state and, once completed, the tool it
// produced.
func (h *Handlers) GetGenerationJob(w http.ResponseWriter, r *http.Request) {
	status, err := h.Generation.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, status)
}
