package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saasforge/saasforge/internal/domain/webhook"
)

func (s *Store) CreateWebhook(ctx context.Context, w *webhook.Webhook) error {
	w.TenantID = tenantFromCtx(ctx)
	err := s.pool.QueryRow(ctx,
		`INSERT INTO webhooks (tenant_id, collection_name, event, url, secret, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		w.TenantID, w.CollectionName, w.Event, w.URL, w.Secret, w.IsActive,
	).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return fmt.Errorf("create webhook: %w", err)
	}
	return nil
}

func (s *Store) ListWebhooks(ctx context.Context) ([]webhook.Webhook, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, collection_name, event, url, secret, is_active, created_at
		 FROM webhooks WHERE tenant_id = $1 ORDER BY created_at DESC`,
		tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	return collectWebhooks(rows)
}

// ListWebhooksForEvent returns the caller tenant's active registrations
// matching a record mutation.
func (s *Store) ListWebhooksForEvent(ctx context.Context, collection, event string) ([]webhook.Webhook, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, collection_name, event, url, secret, is_active, created_at
		 FROM webhooks
		 WHERE tenant_id = $1 AND collection_name = $2 AND event = $3 AND is_active = TRUE`,
		tenantFromCtx(ctx), collection, event)
	if err != nil {
		return nil, fmt.Errorf("list webhooks for %s %s: %w", collection, event, err)
	}
	defer rows.Close()

	return collectWebhooks(rows)
}

func (s *Store) DeleteWebhook(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM webhooks WHERE id = $1 AND tenant_id = $2`, id, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "delete webhook %s", id)
}

func collectWebhooks(rows pgx.Rows) ([]webhook.Webhook, error) {
	var hooks []webhook.Webhook
	for rows.Next() {
		var w webhook.Webhook
		if err := rows.Scan(&w.ID, &w.TenantID, &w.CollectionName, &w.Event,
			&w.URL, &w.Secret, &w.IsActive, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		hooks = append(hooks, w)
	}
	return hooks, rows.Err()
}
