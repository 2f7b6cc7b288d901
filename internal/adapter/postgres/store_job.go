package postgres

import (
	"context"
	"fmt"

	"github.com/saasforge/saasforge/internal/domain/generation"
)

const jobColumns = `id, tenant_id, name, description, prompt, state, error,
	COALESCE(tool_id::text, ''), created_at, updated_at`

func (s *Store) CreateJob(ctx context.Context, j *generation.Job) error {
	j.TenantID = tenantFromCtx(ctx)
	err := s.pool.QueryRow(ctx,
		`INSERT INTO generation_jobs (tenant_id, name, description, prompt, state)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		j.TenantID, j.Name, j.Description, j.Prompt, j.State,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create generation job: %w", err)
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*generation.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM generation_jobs WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx))

	j, err := scanJob(row)
	if err != nil {
		return nil, notFoundWrap(err, "get job %s", id)
	}
	return &j, nil
}

// GetJobAnyTenant looks a job up by id alone. Only the queue consumer uses
// this; it has no request tenant until the job row supplies one.
func (s *Store) GetJobAnyTenant(ctx context.Context, id string) (*generation.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM generation_jobs WHERE id = $1`, id)

	j, err := scanJob(row)
	if err != nil {
		return nil, notFoundWrap(err, "get job %s", id)
	}
	return &j, nil
}

func (s *Store) UpdateJob(ctx context.Context, j *generation.Job) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE generation_jobs
		 SET state = $2, error = $3, tool_id = NULLIF($4, '')::uuid, updated_at = now()
		 WHERE id = $1 AND tenant_id = $5`,
		j.ID, j.State, j.Error, j.ToolID, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "update job %s", j.ID)
}

func scanJob(row scannable) (generation.Job, error) {
	var j generation.Job
	err := row.Scan(&j.ID, &j.TenantID, &j.Name, &j.Description, &j.Prompt,
		&j.State, &j.Error, &j.ToolID, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}
