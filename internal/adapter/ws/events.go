package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/saasforge/saasforge/internal/middleware"
	"github.com/saasforge/saasforge/internal/port/broadcast"
)

var _ broadcast.Broadcaster = (*Hub)(nil)

// BroadcastEvent marshals a typed event and pushes it to the calling
// tenant's connections.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.BroadcastToTenant(ctx, middleware.TenantIDFromContext(ctx), Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
