package jsondoc

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/render"
	"github.com/goliatone/go-formdef/pkg/testsupport"
)

func compiled(t *testing.T) *model.CompiledForm {
	t.Helper()
	form, err := compiler.Compile(model.FormDefinition{
		ID: "contact",
		Sections: []model.FormSection{{Questions: []model.FormQuestion{
			{ID: "email", Type: model.QuestionTypeEmail, Label: "Email", ValidationRules: []model.ValidationRule{
				{Type: model.RuleEmail},
				{Type: model.RuleMaxLength, Max: model.Float(64)},
			}},
		}}},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return form
}

func TestRenderEmbedsCompiledForm(t *testing.T) {
	out, err := New().Render(context.Background(), compiled(t), render.RenderOptions{
		Errors: map[string][]string{"email": {"taken"}},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var payload struct {
		Form struct {
			Sections []struct {
				Fields []struct {
					ID    string           `json:"id"`
					Rules []map[string]any `json:"rules"`
				} `json:"fields"`
			} `json:"sections"`
		} `json:"form"`
		Document map[string]any      `json:"document"`
		Errors   render.ErrorMapping `json:"errors"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := []map[string]any{
		{"type": "Email", "errorMessage": "Email must be a valid email address"},
		{"type": "MaxLength", "max": float64(64), "errorMessage": "Email must be at most 64 characters"},
	}
	if diff := cmp.Diff(want, payload.Form.Sections[0].Fields[0].Rules); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
	if payload.Document == nil {
		t.Fatalf("expected document tree")
	}
	if diff := cmp.Diff([]string{"taken"}, payload.Errors.Fields["email"]); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderWithoutDocument(t *testing.T) {
	out, err := New(WithoutDocument(), WithIndent("  ")).Render(context.Background(), compiled(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := payload["document"]; ok {
		t.Fatalf("expected document omitted")
	}
}

func TestRenderGolden(t *testing.T) {
	form := testsupport.MustCompile(t, testsupport.PetsDefinition())
	out, err := New(WithIndent("  ")).Render(testsupport.Context(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	path := filepath.Join("testdata", "pets.golden.json")
	if testsupport.WriteMaybeGolden(t, path, out) {
		return
	}
	if diff := testsupport.CompareGoldenJSON(t, testsupport.MustReadGolden(t, path), out); diff != "" {
		t.Fatalf("golden mismatch (-want +got):\n%s", diff)
	}
}
