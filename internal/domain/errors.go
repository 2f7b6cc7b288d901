// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict (optimistic locking)
// or a uniqueness violation.
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrValidation indicates the request was structurally invalid.
// Wrap with context: fmt.Errorf("page name empty: %w", domain.ErrValidation).
var ErrValidation = errors.New("validation failed")

// ErrUnauthenticated indicates no caller identity was supplied.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden indicates the caller identity is known but not allowed.
var ErrForbidden = errors.New("forbidden")

// ErrUpgradeRequired indicates a plan entitlement failure. Distinct from
// ErrForbidden so callers can present an upgrade path.
var ErrUpgradeRequired = errors.New("plan upgrade required")
