// Package review defines marketplace tool reviews.
package review

import (
	"fmt"
	"time"

	"github.com/saasforge/saasforge/internal/domain"
)

// Review is one tenant's rating of a marketplace tool. One review per
// (tool, tenant); resubmitting replaces the prior review.
type Review struct {
	ID        string    `json:"id"`
	ToolID    string    `json:"tool_id"`
	TenantID  string    `json:"tenant_id"`
	Rating    int       `json:"rating"` // 1..5
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the rating range and comment length.
func (r Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5: %w", domain.ErrValidation)
	}
	if len(r.Comment) > 2000 {
		return fmt.Errorf("comment exceeds 2000 characters: %w", domain.ErrValidation)
	}
	return nil
}
