package tool

import (
	"fmt"

	"github.com/saasforge/saasforge/internal/domain"
)

// AddPage appends a page to the current version. Page name matching is
// case-sensitive exact match.
func (t *Tool) AddPage(name string) error {
	if name == "" {
		return fmt.Errorf("page name is required: %w", domain.ErrValidation)
	}
	v := t.Current()
	if v == nil {
		return fmt.Errorf("tool has no current version: %w", domain.ErrValidation)
	}
	for _, p := range v.Pages {
		if p == name {
			return fmt.Errorf("page %q: %w", name, ErrDuplicatePage)
		}
	}
	v.Pages = append(v.Pages, name)
	return nil
}

// DeletePage removes a page and cascades deletion to exactly the instances
// bound to it. The last remaining page cannot be deleted.
func (t *Tool) DeletePage(name string) error {
	v := t.Current()
	if v == nil {
		return fmt.Errorf("tool has no current version: %w", domain.ErrValidation)
	}

	idx := -1
	for i, p := range v.Pages {
		if p == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("page %q: %w", name, ErrUnknownPage)
	}
	if len(v.Pages) == 1 {
		return fmt.Errorf("page %q: %w", name, ErrLastPage)
	}

	v.Pages = append(v.Pages[:idx], v.Pages[idx+1:]...)

	kept := v.Instances[:0]
	for _, in := range v.Instances {
		if in.PageName != name {
			kept = append(kept, in)
		}
	}
	v.Instances = kept
	return nil
}

// AddInstance places a module on an existing page and returns the new
// instance. Config overrides are merged over defaults by the caller; the
// ledger stores whatever config it is handed.
func (t *Tool) AddInstance(pageName, moduleSlug, collectionName string, config map[string]any) (Instance, error) {
	v := t.Current()
	if v == nil {
		return Instance{}, fmt.Errorf("tool has no current version: %w", domain.ErrValidation)
	}
	if moduleSlug == "" {
		return Instance{}, fmt.Errorf("module slug is required: %w", domain.ErrValidation)
	}

	found := false
	for _, p := range v.Pages {
		if p == pageName {
			found = true
			break
		}
	}
	if !found {
		return Instance{}, fmt.Errorf("page %q: %w", pageName, ErrUnknownPage)
	}

	if config == nil {
		config = map[string]any{}
	}
	in := Instance{
		ID:             NewInstanceID(moduleSlug),
		ModuleSlug:     moduleSlug,
		PageName:       pageName,
		CollectionName: collectionName,
		Config:         config,
	}
	v.Instances = append(v.Instances, in)
	return in, nil
}

// RemoveInstance removes an instance by its stable id. Removal is
// idempotent: removing an absent id is a no-op, never an error.
func (t *Tool) RemoveInstance(instanceID string) {
	v := t.Current()
	if v == nil {
		return
	}
	for i, in := range v.Instances {
		if in.ID == instanceID {
			v.Instances = append(v.Instances[:i], v.Instances[i+1:]...)
			return
		}
	}
}

// ReplaceCurrent atomically replaces the mutable fields of the current
// version. The candidate is validated before any state changes; on error
// the prior state is untouched.
func (t *Tool) ReplaceCurrent(pages []string, instances []Instance, layout map[string]any) error {
	v := t.Current()
	if v == nil {
		return fmt.Errorf("tool has no current version: %w", domain.ErrValidation)
	}

	candidate := Version{
		Number:    v.Number,
		Schemas:   v.Schemas,
		Pages:     pages,
		Instances: instances,
	}
	if err := candidate.Validate(); err != nil {
		return err
	}

	v.Pages = pages
	if instances == nil {
		instances = []Instance{}
	}
	v.Instances = instances
	if layout == nil {
		layout = map[string]any{}
	}
	v.LayoutConfig = layout
	return nil
}

// Snapshot appends a deep copy of the current version as a new version
// and moves the current pointer to it. Prior versions stay untouched.
func (t *Tool) Snapshot() (*Version, error) {
	v := t.Current()
	if v == nil {
		return nil, fmt.Errorf("tool has no current version: %w", domain.ErrValidation)
	}
	next := v.Clone()
	next.Number = len(t.Versions) + 1
	t.Versions = append(t.Versions, next)
	t.CurrentVersion = next.Number
	return t.Current(), nil
}
