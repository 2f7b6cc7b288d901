package postgres

import (
	"context"
	"fmt"
)

// Admin dashboard counts. All unscoped: the admin console aggregates
// across tenants.

func (s *Store) CountTools(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM tools`)
}

func (s *Store) CountPublishedTools(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM tools WHERE is_public = TRUE`)
}

func (s *Store) CountTenants(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM tenants`)
}

func (s *Store) CountTemplates(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM templates`)
}

func (s *Store) CountTemplateClones(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM template_clones`)
}

func (s *Store) count(ctx context.Context, query string) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
