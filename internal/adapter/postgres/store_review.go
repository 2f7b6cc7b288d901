package postgres

import (
	"context"
	"fmt"

	"github.com/saasforge/saasforge/internal/domain/review"
)

// UpsertReview inserts or replaces the caller tenant's review of a tool.
func (s *Store) UpsertReview(ctx context.Context, r *review.Review) error {
	r.TenantID = tenantFromCtx(ctx)
	err := s.pool.QueryRow(ctx,
		`INSERT INTO reviews (tool_id, tenant_id, rating, comment)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (tool_id, tenant_id)
		 DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, created_at = now()
		 RETURNING id, created_at`,
		r.ToolID, r.TenantID, r.Rating, r.Comment,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}
	return nil
}

func (s *Store) ListReviews(ctx context.Context, toolID string) ([]review.Review, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tool_id, tenant_id, rating, comment, created_at
		 FROM reviews WHERE tool_id = $1 ORDER BY created_at DESC`, toolID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []review.Review
	for rows.Next() {
		var r review.Review
		if err := rows.Scan(&r.ID, &r.ToolID, &r.TenantID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (s *Store) ReviewAggregate(ctx context.Context, toolID string) (avg float64, count int, err error) {
	err = s.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE tool_id = $1`, toolID,
	).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("review aggregate for tool %s: %w", toolID, err)
	}
	return avg, count, nil
}
