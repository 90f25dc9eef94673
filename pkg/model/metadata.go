package model

// PrimitiveType is the declared storage type of a bound field.
type PrimitiveType string

const (
	PrimitiveBoolean PrimitiveType = "boolean"
	PrimitiveInteger PrimitiveType = "integer"
	PrimitiveDecimal PrimitiveType = "decimal"
	PrimitiveString  PrimitiveType = "string"
	PrimitiveDate    PrimitiveType = "date"
	PrimitiveFile    PrimitiveType = "file"
)

// Numeric reports whether the primitive holds numbers.
func (p PrimitiveType) Numeric() bool {
	return p == PrimitiveInteger || p == PrimitiveDecimal
}

// FieldKind is the descriptive data-kind annotation attached to a field.
type FieldKind string

const (
	KindEmail         FieldKind = "Email"
	KindPassword      FieldKind = "Password"
	KindURL           FieldKind = "Url"
	KindPhoneNumber   FieldKind = "PhoneNumber"
	KindDate          FieldKind = "Date"
	KindMultilineText FieldKind = "MultilineText"
	KindText          FieldKind = "Text"
)

// Known reports whether the kind is one of the recognised annotations.
// Unknown kinds are treated as absent.
func (k FieldKind) Known() bool {
	switch k {
	case KindEmail, KindPassword, KindURL, KindPhoneNumber, KindDate, KindMultilineText, KindText:
		return true
	default:
		return false
	}
}

// FieldMetadata is the read-only description of a field supplied by a model
// binder (struct reflection, OpenAPI schema, explicit configuration).
type FieldMetadata struct {
	Name        string        `json:"name,omitempty" yaml:"name,omitempty"`
	Type        PrimitiveType `json:"type,omitempty" yaml:"type,omitempty"`
	Kind        FieldKind     `json:"kind,omitempty" yaml:"kind,omitempty"`
	Required    bool          `json:"required,omitempty" yaml:"required,omitempty"`
	DisplayName string        `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	MinLength   *int          `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int          `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern     string        `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min         *float64      `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64      `json:"max,omitempty" yaml:"max,omitempty"`
}

// FieldDescriptor is the normalised presentation of a field, derived fresh on
// every compile and never persisted.
type FieldDescriptor struct {
	Name             string           `json:"name"`
	WidgetKind       QuestionType     `json:"widgetKind"`
	InputSubtype     string           `json:"inputSubtype"`
	Label            string           `json:"label"`
	Hint             string           `json:"hint"`
	InferredRequired bool             `json:"inferredRequired"`
	Constraints      []ValidationRule `json:"constraints,omitempty"`
}
