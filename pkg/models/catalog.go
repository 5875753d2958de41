package models

// GlobalObject is one entry of a describeGlobal listing.
type GlobalObject struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Createable bool   `json:"createable"`
	Custom     bool   `json:"custom,omitempty"`
}

// PicklistValue is one allowed value of a choice field.
type PicklistValue struct {
	Value        string `json:"value"`
	Label        string `json:"label,omitempty"`
	Active       bool   `json:"active"`
	DefaultValue bool   `json:"defaultValue,omitempty"`
}

// FieldDescriptor is a single field as returned by an object describe call.
// JSON tags follow the catalog's describe payload so responses decode directly.
// Treat values as immutable once received.
type FieldDescriptor struct {
	Name               string          `json:"name"`
	Label              string          `json:"label"`
	Type               string          `json:"type"`
	Length             int             `json:"length"`
	Precision          int             `json:"precision"`
	Scale              int             `json:"scale"`
	DefaultValue       any             `json:"defaultValue"`
	Createable         bool            `json:"createable"`
	Updateable         bool            `json:"updateable"`
	Calculated         bool            `json:"calculated"`
	ExternalID         bool            `json:"externalId"`
	Nillable           bool            `json:"nillable"`
	RestrictedPicklist bool            `json:"restrictedPicklist"`
	PicklistValues     []PicklistValue `json:"picklistValues,omitempty"`
	ReferenceTo        []string        `json:"referenceTo,omitempty"`
}

// IsChoice reports whether the field is a single or multi select choice field.
func (f *FieldDescriptor) IsChoice() bool {
	return f.Type == "picklist" || f.Type == "multipicklist"
}

// IsUnrestrictedChoice reports whether the field is a single select choice
// field that accepts values outside its declared list.
func (f *FieldDescriptor) IsUnrestrictedChoice() bool {
	return f.Type == "picklist" && !f.RestrictedPicklist
}

// ChildRelationship describes another object that references this one.
type ChildRelationship struct {
	ChildObject         string  `json:"childSObject"`
	Field               string  `json:"field"`
	RelationshipName    *string `json:"relationshipName"`
	CascadeDelete       bool    `json:"cascadeDelete"`
	DeprecatedAndHidden bool    `json:"deprecatedAndHidden,omitempty"`
}

// ObjectDescribe is the result of describing a single object.
type ObjectDescribe struct {
	Name               string              `json:"name"`
	Label              string              `json:"label,omitempty"`
	Fields             []FieldDescriptor   `json:"fields"`
	ChildRelationships []ChildRelationship `json:"childRelationships,omitempty"`
}

// LimitInfo is the API usage reported by the remote catalog with each response.
type LimitInfo struct {
	Used int `json:"used"`
	Max  int `json:"max"`
}
