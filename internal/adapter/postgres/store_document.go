package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/saasforge/saasforge/internal/domain/document"
)

func (s *Store) CreateDocument(ctx context.Context, d *document.Document) error {
	dataJSON, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("marshal document data: %w", err)
	}

	d.TenantID = tenantFromCtx(ctx)
	err = s.pool.QueryRow(ctx,
		`INSERT INTO documents (tenant_id, collection, data)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		d.TenantID, d.Collection, dataJSON,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create document in %s: %w", d.Collection, err)
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, collection, id string) (*document.Document, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, collection, data, created_at, updated_at
		 FROM documents WHERE id = $1 AND collection = $2 AND tenant_id = $3`,
		id, collection, tenantFromCtx(ctx))

	d, err := scanDocument(row)
	if err != nil {
		return nil, notFoundWrap(err, "get document %s/%s", collection, id)
	}
	return &d, nil
}

func (s *Store) ListDocuments(ctx context.Context, collection string) ([]document.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, collection, data, created_at, updated_at
		 FROM documents WHERE collection = $1 AND tenant_id = $2 ORDER BY created_at DESC`,
		collection, tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list documents in %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) UpdateDocument(ctx context.Context, d *document.Document) error {
	dataJSON, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("marshal document data: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET data = $2, updated_at = now()
		 WHERE id = $1 AND collection = $3 AND tenant_id = $4`,
		d.ID, dataJSON, d.Collection, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "update document %s/%s", d.Collection, d.ID)
}

func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE id = $1 AND collection = $2 AND tenant_id = $3`,
		id, collection, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "delete document %s/%s", collection, id)
}

func scanDocument(row scannable) (document.Document, error) {
	var d document.Document
	var dataJSON []byte
	err := row.Scan(&d.ID, &d.TenantID, &d.Collection, &dataJSON, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return d, err
	}
	if dataJSON != nil {
		if err := json.Unmarshal(dataJSON, &d.Data); err != nil {
			return d, fmt.Errorf("unmarshal document data: %w", err)
		}
	}
	return d, nil
}
