package translate

import (
	"fmt"

	"github.com/ekaya-inc/schemaforge/pkg/apperrors"
	"github.com/ekaya-inc/schemaforge/pkg/models"
)

// BuildObjectSchema filters and translates every field of a describe result
// in the given mode. Disabled recipe rules are left out.
func BuildObjectSchema(d *models.ObjectDescribe, mode models.FetchMode, prefs *models.Preferences, opts Options) (*models.ObjectSchema, error) {
	if prefs == nil {
		return nil, apperrors.ErrPreferencesNotSet
	}

	out := &models.ObjectSchema{
		Name:     d.Name,
		Children: ExtractChildren(d.ChildRelationships),
	}

	switch mode {
	case models.FetchModeSchema:
		out.Columns = make(map[string]models.ColumnDescriptor, len(d.Fields))
	case models.FetchModeRecipe:
		out.Rules = make(map[string]models.GenerationRule, len(d.Fields))
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", mode)
	}

	for i := range d.Fields {
		f := &d.Fields[i]
		if !Include(f, prefs) {
			continue
		}
		if mode == models.FetchModeSchema {
			col, err := ForSchema(f, prefs, opts)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			out.Columns[f.Name] = col
			continue
		}
		rule, err := ForRecipe(d.Name, f, prefs)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		if rule.Enabled() {
			out.Rules[f.Name] = rule
		}
	}

	return out, nil
}

// ExtractChildren keeps, per child object, the first relationship that is
// neither deprecated nor unnamed.
func ExtractChildren(rels []models.ChildRelationship) map[string]models.ChildRelationship {
	if len(rels) == 0 {
		return nil
	}
	children := make(map[string]models.ChildRelationship)
	for _, r := range rels {
		if r.DeprecatedAndHidden || r.RelationshipName == nil {
			continue
		}
		if _, seen := children[r.ChildObject]; seen {
			continue
		}
		children[r.ChildObject] = r
	}
	if len(children) == 0 {
		return nil
	}
	return children
}
