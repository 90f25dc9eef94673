package render

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/document"
	"github.com/goliatone/go-formdef/pkg/model"
)

func compiledPets(t *testing.T) *model.CompiledForm {
	t.Helper()
	form, err := compiler.Compile(model.FormDefinition{
		ID:     "pets",
		Action: "/pets",
		Method: "patch",
		Sections: []model.FormSection{{
			Title: "Pets",
			Questions: []model.FormQuestion{
				{
					ID: "hasPet", Type: model.QuestionTypeRadio, Label: "Do you have a pet?", IsRequired: true,
					Options: []model.QuestionOption{{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"}},
				},
				{
					ID: "petName", Type: model.QuestionTypeText, Label: "Pet name", Hint: "As it answers to",
					ValidateOnBlur: true,
					Dependencies: []model.QuestionDependency{
						{SourceQuestionID: "hasPet", TriggerValue: "yes", Action: model.ActionShow},
					},
				},
			},
		}},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return form
}

func TestBuildEmbedsClientContract(t *testing.T) {
	doc, err := Build(compiledPets(t), RenderOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	petName := doc.Root.Find(document.ByAttr(AttrField, "petName"))
	if petName == nil {
		t.Fatalf("petName wrapper missing")
	}
	raw, ok := petName.Attr(AttrDependencies)
	if !ok {
		t.Fatalf("expected dependency metadata on petName")
	}
	var deps []map[string]string
	if err := json.Unmarshal([]byte(raw), &deps); err != nil {
		t.Fatalf("decode dependencies: %v", err)
	}
	want := []map[string]string{{"sourceQuestionId": "hasPet", "triggerValue": "yes", "action": "Show"}}
	if diff := cmp.Diff(want, deps); diff != "" {
		t.Fatalf("dependency descriptor mismatch (-want +got):\n%s", diff)
	}
	if petName.Has(AttrValidation) {
		t.Fatalf("petName declares no rules and must carry no validation metadata")
	}
	if v, _ := petName.Attr(AttrValidateOnBlur); v != "true" {
		t.Fatalf("expected validate-on-blur flag")
	}

	hasPet := doc.Root.Find(document.ByAttr(AttrField, "hasPet"))
	if hasPet.Has(AttrDependencies) {
		t.Fatalf("hasPet is not a dependency target")
	}
	var rules []map[string]any
	raw, _ = hasPet.Attr(AttrValidation)
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		t.Fatalf("decode rules: %v", err)
	}
	wantRules := []map[string]any{{"type": "Required", "errorMessage": "Do you have a pet? is required"}}
	if diff := cmp.Diff(wantRules, rules); diff != "" {
		t.Fatalf("validation descriptor mismatch (-want +got):\n%s", diff)
	}

	options := hasPet.FindAll(document.ByTag("input"))
	if len(options) != 2 {
		t.Fatalf("expected one input per option, got %d", len(options))
	}
	if key, _ := options[0].Attr("data-option-key"); key != "hasPet_yes" {
		t.Fatalf("unexpected option key %q", key)
	}
}

func TestBuildMethodOverrideAndHiddenFields(t *testing.T) {
	doc, err := Build(compiledPets(t), RenderOptions{
		CSRFToken:    "tok",
		HiddenFields: map[string]string{"version": "3", " ": "dropped"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if method, _ := doc.Root.Attr("method"); method != "post" {
		t.Fatalf("PATCH must submit through post, got %s", method)
	}

	var hidden []string
	for _, node := range doc.Root.FindAll(document.ByAttr("type", "hidden")) {
		name, _ := node.Attr("name")
		value, _ := node.Attr("value")
		hidden = append(hidden, name+"="+value)
	}
	want := []string{"_method=PATCH", "_csrf=tok", "version=3"}
	if diff := cmp.Diff(want, hidden); diff != "" {
		t.Fatalf("hidden inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildThemeAndErrors(t *testing.T) {
	doc, err := Build(compiledPets(t), RenderOptions{
		Theme: &theme.RendererConfig{
			Theme:    "acme",
			Variant:  "dark",
			CSSVars:  map[string]string{"--brand": "#123456", "accent": "#fff"},
			AssetURL: func(key string) string {
				if key == StylesheetName {
					return "/assets/themes/acme/formdef.css"
				}
				return ""
			},
		},
		Errors: map[string][]string{
			"/petName": {"Pet name is required", "Pet name is required"},
			"__all__":  {"Try again"},
			"ghost":    {"Unknown field"},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if v, _ := doc.Root.Attr(AttrTheme); v != "acme" {
		t.Fatalf("expected theme attribute, got %q", v)
	}
	if v, _ := doc.Root.Attr("style"); v != "--brand:#123456;--accent:#fff" {
		t.Fatalf("unexpected css vars %q", v)
	}
	link := doc.Root.Find(document.ByTag("link"))
	if href, _ := link.Attr("href"); href != "/assets/themes/acme/formdef.css" {
		t.Fatalf("expected themed stylesheet link, got %q", href)
	}

	input := doc.Root.Find(document.ByAttr("id", "petName"))
	if v, _ := input.Attr("aria-invalid"); v != "true" {
		t.Fatalf("expected aria-invalid on petName")
	}
	list := doc.Root.Find(document.ByAttr("id", "petName-error"))
	if list == nil || len(list.Children) != 1 {
		t.Fatalf("expected one deduplicated error, got %#v", list)
	}

	formErrors := doc.Root.Find(document.ByAttr("class", "formdef-form-errors"))
	if formErrors == nil || len(formErrors.Children) != 2 {
		t.Fatalf("expected two form-level errors, got %#v", formErrors)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	form := compiledPets(t)
	opts := RenderOptions{HiddenFields: map[string]string{"a": "1", "b": "2", "c": "3"}}
	a, _ := Build(form, opts)
	b, _ := Build(form, opts)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("build not deterministic:\n%s", diff)
	}
}

func TestBuildRequiresForm(t *testing.T) {
	if _, err := Build(nil, RenderOptions{}); err == nil {
		t.Fatalf("expected error for nil form")
	}
}

func TestMapErrors(t *testing.T) {
	form := compiledPets(t)
	mapping := MapErrors(*form, map[string][]string{
		"body.hasPet": {" Pick one "},
		"petName":     {"Too short"},
		"form":        {"Broken"},
		"empty":       {" "},
	})
	want := ErrorMapping{
		Fields: map[string][]string{"hasPet": {"Pick one"}, "petName": {"Too short"}},
		Form:   []string{"Broken"},
	}
	if diff := cmp.Diff(want, mapping); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
}

type stubRenderer struct{ name string }

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(context.Context, *model.CompiledForm, RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistryDefaults(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(stubRenderer{name: "html"})
	reg.MustRegister(stubRenderer{name: "json"})

	if err := reg.Register(stubRenderer{name: "html"}); !errors.Is(err, ErrDuplicateRenderer) {
		t.Fatalf("expected duplicate registration error, got %v", err)
	}
	if got, _ := reg.Get(""); got.Name() != "html" {
		t.Fatalf("expected first registration as default, got %s", got.Name())
	}
	if err := reg.SetDefault("json"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if got, _ := reg.Get(""); got.Name() != "json" {
		t.Fatalf("expected json default, got %s", got.Name())
	}
	if err := reg.SetDefault("pdf"); err == nil {
		t.Fatalf("expected error for unknown default")
	}
	if _, err := reg.Get("pdf"); !errors.Is(err, ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
	if !reg.Has("json") || reg.Has("pdf") {
		t.Fatalf("unexpected Has results")
	}
	if diff := cmp.Diff([]string{"html", "json"}, reg.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}
