package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/saasforge/saasforge/internal/domain/template"
)

const templateColumns = `id, name, slug, description, category, tags, color_theme,
	schema_config, default_pages, preview_images, is_public, is_premium,
	price, COALESCE(creator_id::text, ''), revenue_share, clones_count, created_at, updated_at`

func (s *Store) ListTemplates(ctx context.Context) ([]template.Template, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE is_public = TRUE ORDER BY clones_count DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []template.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// ListAllTemplates returns every template regardless of visibility. Admin
// console only.
func (s *Store) ListAllTemplates(ctx context.Context) ([]template.Template, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+templateColumns+` FROM templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all templates: %w", err)
	}
	defer rows.Close()

	var templates []template.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *Store) GetTemplate(ctx context.Context, id string) (*template.Template, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = $1`, id)

	t, err := scanTemplate(row)
	if err != nil {
		return nil, notFoundWrap(err, "get template %s", id)
	}
	return &t, nil
}

func (s *Store) GetTemplateBySlug(ctx context.Context, slug string) (*template.Template, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE slug = $1`, slug)

	t, err := scanTemplate(row)
	if err != nil {
		return nil, notFoundWrap(err, "get template by slug %s", slug)
	}
	return &t, nil
}

func (s *Store) CreateTemplate(ctx context.Context, t *template.Template) error {
	schemaJSON, pagesJSON, err := marshalTemplateBlobs(t)
	if err != nil {
		return err
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO templates (name, slug, description, category, tags, color_theme,
		                        schema_config, default_pages, preview_images, is_public,
		                        is_premium, price, creator_id, revenue_share)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, '')::uuid, $14)
		 RETURNING id, created_at, updated_at`,
		t.Name, t.Slug, t.Description, t.Category, pgTextArray(t.Tags), t.ColorTheme,
		schemaJSON, pagesJSON, pgTextArray(t.PreviewImages), t.IsPublic,
		t.IsPremium, t.Price, t.CreatorID, t.RevenueShare,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (s *Store) UpdateTemplate(ctx context.Context, t *template.Template) error {
	schemaJSON, pagesJSON, err := marshalTemplateBlobs(t)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE templates SET name = $2, description = $3, category = $4, tags = $5,
		        color_theme = $6, schema_config = $7, default_pages = $8, preview_images = $9,
		        is_public = $10, is_premium = $11, price = $12, revenue_share = $13, updated_at = now()
		 WHERE id = $1`,
		t.ID, t.Name, t.Description, t.Category, pgTextArray(t.Tags),
		t.ColorTheme, schemaJSON, pagesJSON, pgTextArray(t.PreviewImages),
		t.IsPublic, t.IsPremium, t.Price, t.RevenueShare)
	return execExpectOne(tag, err, "update template %s", t.ID)
}

func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete template %s", id)
}

func (s *Store) IncrementTemplateClones(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE templates SET clones_count = clones_count + 1, updated_at = now() WHERE id = $1`, id)
	return execExpectOne(tag, err, "increment clones for template %s", id)
}

func marshalTemplateBlobs(t *template.Template) (schemaJSON, pagesJSON []byte, err error) {
	schemaJSON, err = json.Marshal(t.SchemaConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal schema_config: %w", err)
	}
	pagesJSON, err = json.Marshal(t.DefaultPages)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal default_pages: %w", err)
	}
	return schemaJSON, pagesJSON, nil
}

func scanTemplate(row scannable) (template.Template, error) {
	var t template.Template
	var schemaJSON, pagesJSON []byte
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Description, &t.Category, &t.Tags, &t.ColorTheme,
		&schemaJSON, &pagesJSON, &t.PreviewImages, &t.IsPublic, &t.IsPremium,
		&t.Price, &t.CreatorID, &t.RevenueShare, &t.ClonesCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if schemaJSON != nil {
		if err := json.Unmarshal(schemaJSON, &t.SchemaConfig); err != nil {
			return t, fmt.Errorf("unmarshal schema_config: %w", err)
		}
	}
	if pagesJSON != nil {
		if err := json.Unmarshal(pagesJSON, &t.DefaultPages); err != nil {
			return t, fmt.Errorf("unmarshal default_pages: %w", err)
		}
	}
	return t, nil
}
