// Package translate converts catalog field descriptors into column
// descriptors and data generation rules.
package translate

import (
	"strings"

	"github.com/ekaya-inc/schemaforge/pkg/models"
)

// baseTypes maps catalog primitive type names to column types. It is never
// written after init.
var baseTypes = map[string]models.ColumnType{
	"base64":          models.ColumnText,
	"boolean":         models.ColumnBoolean,
	"byte":            models.ColumnBinary,
	"calculated":      models.ColumnString,
	"combobox":        models.ColumnString,
	"currency":        models.ColumnDecimal,
	"date":            models.ColumnDate,
	"datetime":        models.ColumnDateTime,
	"double":          models.ColumnDecimal,
	"email":           models.ColumnString,
	"encryptedstring": models.ColumnString,
	"id":              models.ColumnReference,
	"int":             models.ColumnInteger,
	"long":            models.ColumnBigInteger,
	"masterrecord":    models.ColumnString,
	"multipicklist":   models.ColumnString,
	"percent":         models.ColumnDecimal,
	"phone":           models.ColumnString,
	"picklist":        models.ColumnEnum,
	"reference":       models.ColumnReference,
	"string":          models.ColumnString,
	"textarea":        models.ColumnText,
	"time":            models.ColumnTime,
	"url":             models.ColumnString,
}

// Resolve maps a primitive type name to a column type. Unknown names resolve
// to text. A nil prefs resolves against the base table only.
func Resolve(sourceType string, prefs *models.Preferences) models.ColumnType {
	resolved, ok := baseTypes[strings.ToLower(sourceType)]
	if !ok {
		return models.ColumnText
	}
	if prefs == nil {
		return resolved
	}
	if resolved == models.ColumnEnum && prefs.Picklists.Type == models.PicklistAsString {
		return models.ColumnString
	}
	if resolved == models.ColumnReference && prefs.Lookups.Type == models.LookupAsString {
		return models.ColumnString
	}
	return resolved
}

// IsKnownType reports whether sourceType has an explicit mapping.
func IsKnownType(sourceType string) bool {
	_, ok := baseTypes[strings.ToLower(sourceType)]
	return ok
}
