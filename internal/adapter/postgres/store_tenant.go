package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/saasforge/saasforge/internal/domain/tenant"
)

const tenantColumns = `id, name, owner_email, plan, is_active, earnings_balance,
	cloned_tool_ids, branding, created_at, updated_at`

func (s *Store) CreateTenant(ctx context.Context, t *tenant.Tenant) error {
	brandingJSON, err := json.Marshal(t.Branding)
	if err != nil {
		return fmt.Errorf("marshal branding: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO tenants (id, name, owner_email, plan, branding)
		 VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5)
		 RETURNING id, is_active, earnings_balance, created_at, updated_at`,
		t.ID, t.Name, t.OwnerEmail, string(t.Plan), brandingJSON,
	).Scan(&t.ID, &t.IsActive, &t.EarningsBalance, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (s *Store) GetTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)

	t, err := scanTenant(row)
	if err != nil {
		return nil, notFoundWrap(err, "get tenant %s", id)
	}
	return &t, nil
}

func (s *Store) ListTenants(ctx context.Context) ([]tenant.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (s *Store) UpdateTenantPlan(ctx context.Context, id string, plan tenant.Plan) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants SET plan = $2, updated_at = now() WHERE id = $1`, id, string(plan))
	return execExpectOne(tag, err, "update plan for tenant %s", id)
}

// RecordClonedTool appends toolID to the tenant's cloned set. Re-recording
// an already-cloned tool is a no-op, not an error.
func (s *Store) RecordClonedTool(ctx context.Context, tenantID, toolID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants
		 SET cloned_tool_ids = CASE WHEN $2 = ANY(cloned_tool_ids) THEN cloned_tool_ids
		                            ELSE array_append(cloned_tool_ids, $2) END,
		     updated_at = now()
		 WHERE id = $1`,
		tenantID, toolID)
	return execExpectOne(tag, err, "record cloned tool for tenant %s", tenantID)
}

func (s *Store) CreditEarnings(ctx context.Context, tenantID string, amountCents int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants SET earnings_balance = earnings_balance + $2, updated_at = now() WHERE id = $1`,
		tenantID, amountCents)
	return execExpectOne(tag, err, "credit earnings for tenant %s", tenantID)
}

func scanTenant(row scannable) (tenant.Tenant, error) {
	var t tenant.Tenant
	var plan string
	var brandingJSON []byte
	err := row.Scan(&t.ID, &t.Name, &t.OwnerEmail, &plan, &t.IsActive, &t.EarningsBalance,
		&t.ClonedToolIDs, &brandingJSON, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	t.Plan = tenant.Plan(plan)
	if brandingJSON != nil {
		if err := json.Unmarshal(brandingJSON, &t.Branding); err != nil {
			return t, fmt.Errorf("unmarshal branding: %w", err)
		}
	}
	return t, nil
}
