package models

import "fmt"

// PicklistRepresentation selects how choice fields are typed.
type PicklistRepresentation string

const (
	PicklistAsEnum   PicklistRepresentation = "enum"
	PicklistAsString PicklistRepresentation = "string"
)

// LookupRepresentation selects how reference fields are typed.
type LookupRepresentation string

const (
	LookupAsFixedID LookupRepresentation = "char(18)"
	LookupAsString  LookupRepresentation = "string"
)

// Preferences controls one translation run. Field names mirror the
// preferences file and the UI form.
type Preferences struct {
	Theme     string              `json:"theme,omitempty" yaml:"theme,omitempty"`
	Indexes   IndexPreferences    `json:"indexes" yaml:"indexes"`
	Picklists PicklistPreferences `json:"picklists" yaml:"picklists"`
	Lookups   LookupPreferences   `json:"lookups" yaml:"lookups"`
	Defaults  DefaultPreferences  `json:"defaults" yaml:"defaults"`
}

// IndexPreferences selects which columns get an index.
type IndexPreferences struct {
	ExternalIDs bool `json:"externalIds" yaml:"externalIds"`
	Lookups     bool `json:"lookups" yaml:"lookups"`
	Picklists   bool `json:"picklists" yaml:"picklists"`
}

// PicklistPreferences controls choice field handling.
type PicklistPreferences struct {
	Type PicklistRepresentation `json:"type" yaml:"type"`
	// Unrestricted maps unrestricted choice fields to string(255).
	Unrestricted bool `json:"unrestricted" yaml:"unrestricted"`
	// EnsureBlanks appends an empty value to every enum.
	EnsureBlanks bool `json:"ensureBlanks" yaml:"ensureBlanks"`
}

// LookupPreferences controls reference field handling.
type LookupPreferences struct {
	Type LookupRepresentation `json:"type" yaml:"type"`
}

// DefaultPreferences controls default values and field suppression.
type DefaultPreferences struct {
	AttemptSFValues      bool `json:"attemptSFValues" yaml:"attemptSFValues"`
	TextEmptyString      bool `json:"textEmptyString" yaml:"textEmptyString"`
	CheckboxDefaultFalse bool `json:"checkboxDefaultFalse" yaml:"checkboxDefaultFalse"`
	SuppressReadOnly     bool `json:"suppressReadOnly" yaml:"suppressReadOnly"`
	SuppressAudit        bool `json:"suppressAudit" yaml:"suppressAudit"`
}

// NewDefaultPreferences returns the preferences used when nothing was saved.
func NewDefaultPreferences() Preferences {
	return Preferences{
		Theme: "Cyborg",
		Indexes: IndexPreferences{
			ExternalIDs: true,
			Lookups:     true,
			Picklists:   true,
		},
		Picklists: PicklistPreferences{
			Type:         PicklistAsEnum,
			Unrestricted: true,
			EnsureBlanks: true,
		},
		Lookups: LookupPreferences{
			Type: LookupAsFixedID,
		},
		Defaults: DefaultPreferences{
			AttemptSFValues:      false,
			TextEmptyString:      false,
			CheckboxDefaultFalse: true,
			SuppressReadOnly:     false,
			SuppressAudit:        false,
		},
	}
}

// Validate checks the two enumerated representation switches.
func (p *Preferences) Validate() error {
	switch p.Picklists.Type {
	case PicklistAsEnum, PicklistAsString:
	default:
		return fmt.Errorf("picklists.type must be %q or %q, got %q", PicklistAsEnum, PicklistAsString, p.Picklists.Type)
	}
	switch p.Lookups.Type {
	case LookupAsFixedID, LookupAsString:
	default:
		return fmt.Errorf("lookups.type must be %q or %q, got %q", LookupAsFixedID, LookupAsString, p.Lookups.Type)
	}
	return nil
}
