// Package testsupport holds fixtures and helpers shared by package tests.
// Packages imported by compiler or loader cannot use it.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/model"
)

// MustCompile compiles def with the default compiler or fails the test.
func MustCompile(t *testing.T, def model.FormDefinition, opts ...compiler.Option) *model.CompiledForm {
	t.Helper()

	form, err := compiler.New(opts...).Compile(def)
	if err != nil {
		t.Fatalf("compile %q: %v", def.ID, err)
	}
	return form
}

// PetsDefinition is the canonical two question form: a yes/no radio that
// shows a pet name field.
func PetsDefinition() model.FormDefinition {
	return model.FormDefinition{
		ID:     "pets",
		Title:  "Pets",
		Action: "/pets",
		Sections: []model.FormSection{{
			Title: "About your pet",
			Questions: []model.FormQuestion{
				{
					ID:    "hasPet",
					Type:  model.QuestionTypeRadio,
					Label: "Do you have a pet?",
					Options: []model.QuestionOption{
						{ID: "yes", Label: "Yes", Value: "yes"},
						{ID: "no", Label: "No", Value: "no"},
					},
				},
				{
					ID:    "petName",
					Type:  model.QuestionTypeText,
					Label: "Pet name",
					Dependencies: []model.QuestionDependency{
						{SourceQuestionID: "hasPet", TriggerValue: "yes", Action: model.ActionShow},
					},
				},
			},
		}},
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput runs a render function that also writes to an
// io.Writer and returns both the result and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
