package postgres

import (
	"context"
	"fmt"

	"github.com/saasforge/saasforge/internal/domain/template"
)

func (s *Store) CreateTemplateClone(ctx context.Context, c *template.Clone) error {
	c.TenantID = tenantFromCtx(ctx)
	err := s.pool.QueryRow(ctx,
		`INSERT INTO template_clones (tenant_id, template_id, tool_id, snapshot_name, source, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, cloned_at`,
		c.TenantID, c.TemplateID, c.ToolID, c.SnapshotName, c.Source, c.Status,
	).Scan(&c.ID, &c.ClonedAt)
	if err != nil {
		return fmt.Errorf("create template clone: %w", err)
	}
	return nil
}

func (s *Store) ListTemplateClones(ctx context.Context) ([]template.Clone, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, template_id, tool_id, snapshot_name, source, status, cloned_at
		 FROM template_clones WHERE tenant_id = $1 ORDER BY cloned_at DESC`,
		tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list template clones: %w", err)
	}
	defer rows.Close()

	var clones []template.Clone
	for rows.Next() {
		var c template.Clone
		if err := rows.Scan(&c.ID, &c.TenantID, &c.TemplateID, &c.ToolID,
			&c.SnapshotName, &c.Source, &c.Status, &c.ClonedAt); err != nil {
			return nil, fmt.Errorf("scan template clone: %w", err)
		}
		clones = append(clones, c)
	}
	return clones, rows.Err()
}
