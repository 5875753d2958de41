package translate

import (
	"github.com/ekaya-inc/schemaforge/pkg/apperrors"
	"github.com/ekaya-inc/schemaforge/pkg/models"
)

const (
	// DefaultStringSize applies to string columns without a declared length
	// and to unrestricted choice fields mapped to string.
	DefaultStringSize = 255
	// IDSize is the physical width of record identifiers.
	IDSize = 18
)

// Options holds translation switches that come from configuration rather
// than user preferences.
type Options struct {
	// ForceText maps every string column to text.
	ForceText bool
}

// ForSchema translates one field into a column descriptor.
func ForSchema(f *models.FieldDescriptor, prefs *models.Preferences, opts Options) (models.ColumnDescriptor, error) {
	if prefs == nil {
		return models.ColumnDescriptor{}, apperrors.ErrPreferencesNotSet
	}

	col := models.ColumnDescriptor{
		Name:       f.Name,
		Label:      f.Label,
		SourceType: f.Type,
		Type:       Resolve(f.Type, prefs),
		ExternalID: f.ExternalID,
	}

	if col.Type == models.ColumnString && !isIdentifier(f.Type) {
		if f.Length > DefaultStringSize || opts.ForceText {
			col.Type = models.ColumnText
		} else if f.Length > 0 {
			col.Size = f.Length
		} else {
			col.Size = DefaultStringSize
		}
	}

	switch col.Type {
	case models.ColumnReference:
		col.Target = append([]string(nil), f.ReferenceTo...)
	case models.ColumnEnum:
		col.Values = uniqueValues(f.PicklistValues)
		if prefs.Picklists.EnsureBlanks && !contains(col.Values, "") {
			col.Values = append(col.Values, "")
		}
	case models.ColumnDecimal, models.ColumnFloat:
		col.Precision = f.Precision
		col.Scale = f.Scale
	}

	if prefs.Picklists.Unrestricted && f.IsUnrestrictedChoice() {
		col.Type = models.ColumnString
		col.Size = DefaultStringSize
		col.Values = nil
	}

	if isIdentifier(f.Type) {
		col.Size = IDSize
	}

	def := f.DefaultValue
	if isNullDefault(def) {
		def = nil
		switch {
		case prefs.Defaults.TextEmptyString && (col.Type == models.ColumnString || col.Type == models.ColumnText):
			def = ""
		case prefs.Defaults.CheckboxDefaultFalse && col.Type == models.ColumnBoolean:
			def = false
		}
	}
	if prefs.Defaults.AttemptSFValues && def != nil {
		col.HasDefault = true
		col.Default = def
	}

	col.Index = (f.ExternalID && prefs.Indexes.ExternalIDs) ||
		(f.Type == "reference" && prefs.Indexes.Lookups) ||
		(col.Type == models.ColumnEnum && prefs.Indexes.Picklists)

	return col, nil
}

// isIdentifier reports whether a source type holds record IDs. Those keep
// their fixed width under every lookup representation.
func isIdentifier(sourceType string) bool {
	return sourceType == "reference" || sourceType == "id"
}

func isNullDefault(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == "null"
}

// uniqueValues returns picklist values in first-seen order without
// duplicates. The result is nil when there are no values.
func uniqueValues(values []models.PicklistValue) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v.Value]; ok {
			continue
		}
		seen[v.Value] = struct{}{}
		out = append(out, v.Value)
	}
	return out
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
