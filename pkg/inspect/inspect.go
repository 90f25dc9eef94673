// Package inspect turns bound field metadata into normalised field
// descriptors. Widget precedence is: boolean type, explicit kind annotation,
// declared primitive type, single-line text. Missing metadata degrades to
// defaults and never fails.
package inspect

import (
	"strings"

	"github.com/goliatone/go-formdef/pkg/model"
)

const (
	SubtypeText     = "text"
	SubtypeEmail    = "email"
	SubtypePassword = "password"
	SubtypeURL      = "url"
	SubtypeNumber   = "number"
)

// Inspect derives a FieldDescriptor from metadata. It is deterministic and
// has no side effects.
func Inspect(meta model.FieldMetadata) model.FieldDescriptor {
	label := meta.DisplayName
	if strings.TrimSpace(label) == "" {
		label = meta.Name
	}
	return model.FieldDescriptor{
		Name:             meta.Name,
		WidgetKind:       widgetKind(meta),
		InputSubtype:     inputSubtype(meta),
		Label:            label,
		Hint:             meta.Description,
		InferredRequired: meta.Required,
		Constraints:      constraints(meta),
	}
}

func widgetKind(meta model.FieldMetadata) model.QuestionType {
	if meta.Type == model.PrimitiveBoolean {
		return model.QuestionTypeCheckbox
	}
	if widget, ok := kindWidget(meta.Kind); ok {
		return widget
	}
	if widget, ok := primitiveWidget(meta.Type); ok {
		return widget
	}
	return model.QuestionTypeText
}

func kindWidget(kind model.FieldKind) (model.QuestionType, bool) {
	switch kind {
	case model.KindEmail:
		return model.QuestionTypeEmail, true
	case model.KindPassword:
		return model.QuestionTypePassword, true
	case model.KindURL:
		return model.QuestionTypeURL, true
	case model.KindDate:
		return model.QuestionTypeDate, true
	case model.KindMultilineText:
		return model.QuestionTypeTextArea, true
	case model.KindPhoneNumber, model.KindText:
		return model.QuestionTypeText, true
	default:
		return "", false
	}
}

func primitiveWidget(primitive model.PrimitiveType) (model.QuestionType, bool) {
	switch primitive {
	case model.PrimitiveInteger, model.PrimitiveDecimal:
		return model.QuestionTypeNumber, true
	case model.PrimitiveDate:
		return model.QuestionTypeDate, true
	case model.PrimitiveFile:
		return model.QuestionTypeFileUpload, true
	case model.PrimitiveString:
		return model.QuestionTypeText, true
	default:
		return "", false
	}
}

// inputSubtype applies the kind annotation first; the primitive type only
// matters when no known kind is present.
func inputSubtype(meta model.FieldMetadata) string {
	switch meta.Kind {
	case model.KindEmail:
		return SubtypeEmail
	case model.KindPassword:
		return SubtypePassword
	case model.KindURL:
		return SubtypeURL
	}
	if meta.Kind.Known() {
		return SubtypeText
	}
	if meta.Type.Numeric() {
		return SubtypeNumber
	}
	return SubtypeText
}

// SubtypeFor returns the input subtype of an explicitly typed question.
func SubtypeFor(kind model.QuestionType) string {
	switch kind {
	case model.QuestionTypeEmail:
		return SubtypeEmail
	case model.QuestionTypePassword:
		return SubtypePassword
	case model.QuestionTypeURL:
		return SubtypeURL
	case model.QuestionTypeNumber:
		return SubtypeNumber
	default:
		return SubtypeText
	}
}

func constraints(meta model.FieldMetadata) []model.ValidationRule {
	if meta.Type == model.PrimitiveBoolean {
		return nil
	}
	var out []model.ValidationRule
	switch meta.Kind {
	case model.KindEmail:
		out = append(out, model.ValidationRule{Type: model.RuleEmail})
	case model.KindURL:
		out = append(out, model.ValidationRule{Type: model.RuleURL})
	}
	if meta.MinLength != nil {
		out = append(out, model.ValidationRule{Type: model.RuleMinLength, Min: model.Float(float64(*meta.MinLength))})
	}
	if meta.MaxLength != nil {
		out = append(out, model.ValidationRule{Type: model.RuleMaxLength, Max: model.Float(float64(*meta.MaxLength))})
	}
	if meta.Pattern != "" {
		out = append(out, model.ValidationRule{Type: model.RulePattern, Pattern: meta.Pattern})
	}
	switch {
	case meta.Min != nil && meta.Max != nil:
		out = append(out, model.ValidationRule{Type: model.RuleRange, Min: model.Float(*meta.Min), Max: model.Float(*meta.Max)})
	case meta.Min != nil:
		out = append(out, model.ValidationRule{Type: model.RuleMin, Min: model.Float(*meta.Min)})
	case meta.Max != nil:
		out = append(out, model.ValidationRule{Type: model.RuleMax, Max: model.Float(*meta.Max)})
	}
	return out
}

// ParseKind maps loosely written kind names ("email", "phone", "multiline")
// onto FieldKind values. Unknown names return an empty kind.
func ParseKind(raw string) model.FieldKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "email":
		return model.KindEmail
	case "password", "secret":
		return model.KindPassword
	case "url", "uri":
		return model.KindURL
	case "phone", "phonenumber", "tel":
		return model.KindPhoneNumber
	case "date":
		return model.KindDate
	case "multiline", "multilinetext", "textarea":
		return model.KindMultilineText
	case "text":
		return model.KindText
	default:
		return ""
	}
}
