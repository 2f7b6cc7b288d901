package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/saasforge/saasforge/internal/domain"
	"github.com/saasforge/saasforge/internal/domain/tool"
	"github.com/saasforge/saasforge/internal/port/database"
)

const toolColumns = `id, tenant_id, name, slug, description, current_version, versions,
	is_public, is_premium, is_approved, price, category, tags,
	clones_count, rating, reviews_count, row_version, created_at, updated_at`

func (s *Store) CreateTool(ctx context.Context, t *tool.Tool) error {
	versionsJSON, err := json.Marshal(t.Versions)
	if err != nil {
		return fmt.Errorf("marshal versions: %w", err)
	}

	t.TenantID = tenantFromCtx(ctx)
	err = s.pool.QueryRow(ctx,
		`INSERT INTO tools (tenant_id, name, slug, description, current_version, versions,
		                    is_public, is_premium, price, category, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, row_version, created_at, updated_at`,
		t.TenantID, t.Name, t.Slug, t.Description, t.CurrentVersion, versionsJSON,
		t.IsPublic, t.IsPremium, t.Price, t.Category, pgTextArray(t.Tags),
	).Scan(&t.ID, &t.RowVersion, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create tool: %w", err)
	}
	return nil
}

func (s *Store) GetTool(ctx context.Context, id string) (*tool.Tool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx))

	t, err := scanTool(row)
	if err != nil {
		return nil, notFoundWrap(err, "get tool %s", id)
	}
	return &t, nil
}

func (s *Store) ListTools(ctx context.Context) ([]tool.Tool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE tenant_id = $1 ORDER BY created_at DESC`,
		tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	defer rows.Close()

	var tools []tool.Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}

// UpdateTool persists the full tool row under optimistic locking. A stale
// RowVersion yields domain.ErrConflict.
func (s *Store) UpdateTool(ctx context.Context, t *tool.Tool) error {
	versionsJSON, err := json.Marshal(t.Versions)
	if err != nil {
		return fmt.Errorf("marshal versions: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE tools SET name = $2, description = $3, current_version = $4, versions = $5,
		        is_public = $6, is_premium = $7, price = $8, category = $9, tags = $10,
		        row_version = row_version + 1, updated_at = now()
		 WHERE id = $1 AND row_version = $11 AND tenant_id = $12`,
		t.ID, t.Name, t.Description, t.CurrentVersion, versionsJSON,
		t.IsPublic, t.IsPremium, t.Price, t.Category, pgTextArray(t.Tags),
		t.RowVersion, tenantFromCtx(ctx))
	if err != nil {
		return fmt.Errorf("update tool %s: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update tool %s: %w", t.ID, domain.ErrConflict)
	}
	t.RowVersion++
	return nil
}

func (s *Store) DeleteTool(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM tools WHERE id = $1 AND tenant_id = $2`, id, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "delete tool %s", id)
}

// GetPublishedTool returns a tool by id regardless of owner, but only if
// it is publicly listed.
func (s *Store) GetPublishedTool(ctx context.Context, id string) (*tool.Tool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE id = $1 AND is_public = TRUE`, id)

	t, err := scanTool(row)
	if err != nil {
		return nil, notFoundWrap(err, "get published tool %s", id)
	}
	return &t, nil
}

func (s *Store) ListMarketplaceTools(ctx context.Context, q database.MarketplaceQuery) ([]tool.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE is_public = TRUE AND is_approved = TRUE`
	args := []any{}

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	if q.Category != "" {
		args = append(args, q.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}

	switch q.Sort {
	case "rating":
		query += " ORDER BY rating DESC, reviews_count DESC"
	case "newest":
		query += " ORDER BY created_at DESC"
	default: // popular
		query += " ORDER BY clones_count DESC, created_at DESC"
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list marketplace tools: %w", err)
	}
	defer rows.Close()

	var tools []tool.Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}

// ResolveVanity finds a public tool by its slug and the owner tenant's
// email prefix. Private tools are invisible here: same answer as a tool
// that does not exist.
func (s *Store) ResolveVanity(ctx context.Context, slug, emailPrefix string) (*tool.Tool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT t.id, t.tenant_id, t.name, t.slug, t.description, t.current_version, t.versions,
		        t.is_public, t.is_premium, t.is_approved, t.price, t.category, t.tags,
		        t.clones_count, t.rating, t.reviews_count, t.row_version, t.created_at, t.updated_at
		 FROM tools t
		 JOIN tenants tn ON tn.id = t.tenant_id
		 WHERE t.slug = $1 AND split_part(tn.owner_email, '@', 1) = $2 AND t.is_public = TRUE`,
		slug, emailPrefix)

	t, err := scanTool(row)
	if err != nil {
		return nil, notFoundWrap(err, "resolve %s/%s", slug, emailPrefix)
	}
	return &t, nil
}

func (s *Store) IncrementToolClones(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tools SET clones_count = clones_count + 1, updated_at = now() WHERE id = $1`, id)
	return execExpectOne(tag, err, "increment clones for tool %s", id)
}

func (s *Store) SetToolApproval(ctx context.Context, id string, approved bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tools SET is_approved = $2, updated_at = now() WHERE id = $1`, id, approved)
	return execExpectOne(tag, err, "set approval for tool %s", id)
}

func (s *Store) SetToolRating(ctx context.Context, id string, rating float64, count int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tools SET rating = $2, reviews_count = $3, updated_at = now() WHERE id = $1`,
		id, rating, count)
	return execExpectOne(tag, err, "set rating for tool %s", id)
}

func scanTool(row scannable) (tool.Tool, error) {
	var t tool.Tool
	var versionsJSON []byte
	err := row.Scan(&t.ID, &t.TenantID, &t.Name, &t.Slug, &t.Description, &t.CurrentVersion, &versionsJSON,
		&t.IsPublic, &t.IsPremium, &t.IsApproved, &t.Price, &t.Category, &t.Tags,
		&t.ClonesCount, &t.Rating, &t.ReviewsCount, &t.RowVersion, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if versionsJSON != nil {
		if err := json.Unmarshal(versionsJSON, &t.Versions); err != nil {
			return t, fmt.Errorf("unmarshal versions: %w", err)
		}
	}
	return t, nil
}
