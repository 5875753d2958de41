package models

// ColumnType is the closed set of portable column type tags.
type ColumnType string

const (
	ColumnString     ColumnType = "string"
	ColumnText       ColumnType = "text"
	ColumnBinary     ColumnType = "binary"
	ColumnBoolean    ColumnType = "boolean"
	ColumnInteger    ColumnType = "integer"
	ColumnBigInteger ColumnType = "biginteger"
	ColumnDate       ColumnType = "date"
	ColumnDateTime   ColumnType = "datetime"
	ColumnDecimal    ColumnType = "decimal"
	ColumnFloat      ColumnType = "float"
	ColumnTime       ColumnType = "time"
	ColumnEnum       ColumnType = "enum"
	ColumnReference  ColumnType = "reference"
)

// ValidColumnTypes lists every tag in declaration order.
var ValidColumnTypes = []ColumnType{
	ColumnString, ColumnText, ColumnBinary, ColumnBoolean, ColumnInteger,
	ColumnBigInteger, ColumnDate, ColumnDateTime, ColumnDecimal, ColumnFloat,
	ColumnTime, ColumnEnum, ColumnReference,
}

// IsValid reports whether t is a known tag.
func (t ColumnType) IsValid() bool {
	for _, v := range ValidColumnTypes {
		if t == v {
			return true
		}
	}
	return false
}

// IsNumeric reports whether the type carries precision and scale.
func (t ColumnType) IsNumeric() bool {
	return t == ColumnDecimal || t == ColumnFloat
}

// ColumnDescriptor is the portable description of one output column.
//
// Default is serialized even when nil so a saved schema loads back with the
// same shape. HasDefault distinguishes "no default" from "default is null".
type ColumnDescriptor struct {
	Name       string     `json:"name"`
	Label      string     `json:"label,omitempty"`
	SourceType string     `json:"source_type,omitempty"`
	Type       ColumnType `json:"type"`
	Size       int        `json:"size,omitempty"`
	Precision  int        `json:"precision,omitempty"`
	Scale      int        `json:"scale,omitempty"`
	HasDefault bool       `json:"has_default,omitempty"`
	Default    any        `json:"default"`
	Values     []string   `json:"values,omitempty"`
	Target     []string   `json:"target,omitempty"`
	ExternalID bool       `json:"external_id,omitempty"`
	Index      bool       `json:"index,omitempty"`
}

// ObjectSchema is the per-object result of a translation run. Only the part
// matching the run's mode is populated.
type ObjectSchema struct {
	Name     string                       `json:"name"`
	Columns  map[string]ColumnDescriptor  `json:"columns,omitempty"`
	Rules    map[string]GenerationRule    `json:"rules,omitempty"`
	Children map[string]ChildRelationship `json:"children,omitempty"`
}

// SchemaDocument maps object name to its columns keyed by field name.
type SchemaDocument map[string]map[string]ColumnDescriptor
