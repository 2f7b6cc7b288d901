// Package middleware provides HTTP middleware for SaaSForge.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/saasforge/saasforge/internal/logger"
)

const headerRequestID = "X-Request-ID"

// maxRequestIDLen caps caller-supplied IDs so a hostile header cannot
// bloat every log line.
const maxRequestIDLen = 64

// RequestID tags each request with an ID, honoring one supplied by the
// edge proxy. The ID travels in the context for log correlation and is
// echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}
