// Package identity defines the caller identity attached to every request.
// Identity arrives from the edge proxy as trusted headers; the core never
// issues or verifies tokens itself.
package identity

import "strings"

// Role values recognized by the API.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the request-scoped caller context. Every operation that
// needs to know "who is calling" takes it explicitly, never from globals.
type Identity struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
	Plan     string `json:"plan"`
}

// Anonymous reports whether the identity carries no authenticated user.
func (id Identity) Anonymous() bool {
	return id.UserID == ""
}

// IsAdmin reports whether the caller holds the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// EmailPrefix returns the local part of the caller's email address,
// used as the second component of vanity URLs.
func (id Identity) EmailPrefix() string {
	return EmailPrefix(id.Email)
}

// EmailPrefix returns the local part of an email address.
func EmailPrefix(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
