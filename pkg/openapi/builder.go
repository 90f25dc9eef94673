package openapi

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formdef/pkg/inspect"
	"github.com/goliatone/go-formdef/pkg/model"
)

// BuildDefinition parses raw and builds the form definition for operationID.
func BuildDefinition(ctx context.Context, raw []byte, operationID string, options ...Option) (model.FormDefinition, error) {
	operations, err := Operations(ctx, raw, options...)
	if err != nil {
		return model.FormDefinition{}, err
	}
	op, ok := operations[operationID]
	if !ok {
		return model.FormDefinition{}, fmt.Errorf("openapi: operation %q not found (available: %s)", operationID, strings.Join(OperationIDs(operations), ", "))
	}
	return Definition(op), nil
}

// OperationIDs lists operation ids in sorted order.
func OperationIDs(operations map[string]Operation) []string {
	ids := make([]string, 0, len(operations))
	for id := range operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Definition turns an operation into a single-section form definition.
// Enumerated properties become Dropdown questions; every other property is
// left untyped so the compiler infers its widget from the metadata.
func Definition(op Operation) model.FormDefinition {
	questions := make([]model.FormQuestion, 0, len(op.Fields))
	for _, field := range op.Fields {
		questions = append(questions, question(field))
	}

	title := op.Summary
	if title == "" {
		title = op.ID
	}
	return model.FormDefinition{
		ID:     op.ID,
		Title:  title,
		Action: op.Path,
		Method: op.Method,
		Sections: []model.FormSection{{
			Hint:      op.Description,
			Questions: questions,
		}},
	}
}

func question(field Field) model.FormQuestion {
	meta := field.Metadata
	if len(field.Enum) == 0 || meta.Type == model.PrimitiveBoolean {
		q := inspect.Questions([]model.FieldMetadata{meta})[0]
		q.Value = field.Default
		return q
	}

	options := make([]model.QuestionOption, 0, len(field.Enum))
	for _, value := range field.Enum {
		options = append(options, model.QuestionOption{ID: value, Label: value, Value: value})
	}
	label := meta.DisplayName
	if label == "" {
		label = meta.Name
	}
	return model.FormQuestion{
		ID:         meta.Name,
		Type:       model.QuestionTypeDropdown,
		Label:      label,
		Hint:       meta.Description,
		IsRequired: meta.Required,
		Value:      field.Default,
		Options:    options,
	}
}
