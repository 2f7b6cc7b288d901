// Package schema defines the data-schema descriptor produced by the
// generation service (or supplied directly) and consumed by tool creation.
package schema

import (
	"fmt"
	"regexp"

	"github.com/saasforge/saasforge/internal/domain"
)

// Field types accepted in a schema descriptor.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeDate    = "date"
	TypeEnum    = "enum"
)

// Field describes one attribute of a generated collection.
type Field struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Unique   bool     `json:"unique,omitempty"`
	Options  []string `json:"options,omitempty"` // enum values
}

// Table describes one collection the tool binds module instances to.
type Table struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Descriptor is the full schema a tool is created from.
type Descriptor struct {
	Tables []Table `json:"tables"`
}

var nameRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// Validate checks the descriptor is well formed. All errors wrap
// domain.ErrValidation.
func (d Descriptor) Validate() error {
	if len(d.Tables) == 0 {
		return fmt.Errorf("schema has no tables: %w", domain.ErrValidation)
	}
	seen := make(map[string]struct{}, len(d.Tables))
	for _, tb := range d.Tables {
		if !nameRe.MatchString(tb.Name) {
			return fmt.Errorf("invalid table name %q: %w", tb.Name, domain.ErrValidation)
		}
		if _, dup := seen[tb.Name]; dup {
			return fmt.Errorf("duplicate table name %q: %w", tb.Name, domain.ErrValidation)
		}
		seen[tb.Name] = struct{}{}

		if len(tb.Fields) == 0 {
			return fmt.Errorf("table %q has no fields: %w", tb.Name, domain.ErrValidation)
		}
		fieldSeen := make(map[string]struct{}, len(tb.Fields))
		for _, f := range tb.Fields {
			if !nameRe.MatchString(f.Name) {
				return fmt.Errorf("table %q: invalid field name %q: %w", tb.Name, f.Name, domain.ErrValidation)
			}
			if _, dup := fieldSeen[f.Name]; dup {
				return fmt.Errorf("table %q: duplicate field %q: %w", tb.Name, f.Name, domain.ErrValidation)
			}
			fieldSeen[f.Name] = struct{}{}

			switch f.Type {
			case TypeString, TypeNumber, TypeBoolean, TypeDate:
			case TypeEnum:
				if len(f.Options) == 0 {
					return fmt.Errorf("table %q: enum field %q has no options: %w", tb.Name, f.Name, domain.ErrValidation)
				}
			default:
				return fmt.Errorf("table %q: field %q has unknown type %q: %w", tb.Name, f.Name, f.Type, domain.ErrValidation)
			}
		}
	}
	return nil
}

// CollectionNames returns the table names in declaration order.
func (d Descriptor) CollectionNames() []string {
	names := make([]string, len(d.Tables))
	for i, tb := range d.Tables {
		names[i] = tb.Name
	}
	return names
}
