package translate

import "github.com/ekaya-inc/schemaforge/pkg/models"

var auditFields = map[string]struct{}{
	"CreatedDate":        {},
	"CreatedById":        {},
	"LastModifiedDate":   {},
	"LastModifiedById":   {},
	"SystemModstamp":     {},
	"LastActivityDate":   {},
	"LastViewedDate":     {},
	"LastReferencedDate": {},
}

// IsAudit reports whether name is one of the system maintained audit fields.
func IsAudit(name string) bool {
	_, ok := auditFields[name]
	return ok
}

// IsReadOnly reports whether the field can never be written by a client.
func IsReadOnly(f *models.FieldDescriptor) bool {
	return f.Calculated || (!f.Createable && !f.Updateable)
}

// Include decides whether a field appears in translated output.
// Primary key fields are always included.
func Include(f *models.FieldDescriptor, prefs *models.Preferences) bool {
	if f.Type == "id" || prefs == nil {
		return true
	}
	if prefs.Defaults.SuppressReadOnly && IsReadOnly(f) {
		return false
	}
	if prefs.Defaults.SuppressAudit && IsAudit(f.Name) {
		return false
	}
	return true
}
