package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-formdef/pkg/model"
)

// Transformer mutates a FormDefinition before it is compiled. Implementations
// can relabel questions, inject hints or perform arbitrary rewrites.
type Transformer interface {
	Transform(ctx context.Context, def *model.FormDefinition) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, def *model.FormDefinition) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, def *model.FormDefinition) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, def)
}

// PresetTransformer applies declarative overrides loaded from a JSON
// document. Form-level keys patch the definition, question patches are keyed
// by question id:
//
//	{
//	  "title": "Adopt a pet",
//	  "submitButtonText": "Adopt",
//	  "questions": {
//	    "petName": {"label": "Name", "hint": "As it answers to", "required": true}
//	  }
//	}
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Title            string                   `json:"title"`
	Action           string                   `json:"action"`
	Method           string                   `json:"method"`
	SubmitButtonText string                   `json:"submitButtonText"`
	Questions        map[string]questionPatch `json:"questions"`
}

type questionPatch struct {
	Label    string    `json:"label"`
	Hint     string    `json:"hint"`
	Required *bool     `json:"required"`
	Disabled *bool     `json:"disabled"`
	Value    *[]string `json:"value"`
}

// NewPresetTransformer constructs a transformer from raw JSON bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the declarative patches onto def. A patch naming an
// unknown question is an error.
func (t *PresetTransformer) Transform(ctx context.Context, def *model.FormDefinition) error {
	if def == nil {
		return errors.New("preset transformer: definition is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := t.document
	if doc.Title != "" {
		def.Title = doc.Title
	}
	if doc.Action != "" {
		def.Action = doc.Action
	}
	if doc.Method != "" {
		def.Method = doc.Method
	}
	if doc.SubmitButtonText != "" {
		def.SubmitButtonText = doc.SubmitButtonText
	}

	for id, patch := range doc.Questions {
		question := findQuestion(def, id)
		if question == nil {
			return fmt.Errorf("preset transformer: question %q not found", id)
		}
		applyQuestionPatch(question, patch)
	}
	return nil
}

func applyQuestionPatch(question *model.FormQuestion, patch questionPatch) {
	if patch.Label != "" {
		question.Label = patch.Label
	}
	if patch.Hint != "" {
		question.Hint = patch.Hint
	}
	if patch.Required != nil {
		question.IsRequired = *patch.Required
	}
	if patch.Disabled != nil {
		question.IsDisabled = *patch.Disabled
	}
	if patch.Value != nil {
		question.Value = append(model.Values(nil), (*patch.Value)...)
	}
}

func findQuestion(def *model.FormDefinition, id string) *model.FormQuestion {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	for s := range def.Sections {
		questions := def.Sections[s].Questions
		for q := range questions {
			if questions[q].ID == id {
				return &questions[q]
			}
		}
	}
	return nil
}
