package template

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/render"
	"github.com/goliatone/go-formdef/pkg/testsupport"
	"github.com/goliatone/go-formdef/pkg/widgets"
)

func compiledPets(t *testing.T) *model.CompiledForm {
	t.Helper()
	form, err := compiler.Compile(model.FormDefinition{
		ID:     "pets",
		Title:  "Pets",
		Action: "/pets",
		Method: "put",
		Sections: []model.FormSection{{
			Title: "About",
			Questions: []model.FormQuestion{
				{
					ID: "hasPet", Type: model.QuestionTypeRadio, Label: "Do you have a pet?", IsRequired: true,
					Value:   model.Values{"no"},
					Options: []model.QuestionOption{{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"}},
				},
				{
					ID: "petName", Type: model.QuestionTypeText, Label: "Pet name", Hint: "As it answers to",
					Dependencies: []model.QuestionDependency{
						{SourceQuestionID: "hasPet", TriggerValue: "yes", Action: model.ActionShow},
					},
				},
				{
					ID: "kind", Type: model.QuestionTypeDropdown, Label: "Kind",
					Options: []model.QuestionOption{{Label: "Cat", Value: "cat"}, {Label: "Dog", Value: "dog"}},
				},
				{ID: "notes", Type: model.QuestionTypeTextArea, Label: "Notes", Value: model.Values{"a", "b"}},
			},
		}},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return form
}

func renderString(t *testing.T, r *Renderer, form *model.CompiledForm, opts render.RenderOptions) string {
	t.Helper()
	out, err := r.Render(context.Background(), form, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return string(out)
}

func TestRenderEmbeddedTemplates(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	html := renderString(t, r, compiledPets(t), render.RenderOptions{
		CSRFToken: "tok",
		Errors:    map[string][]string{"petName": {"Too short"}, "server": {"Try again"}},
	})

	for _, want := range []string{
		`<form id="formdef-pets" class="formdef" action="/pets" method="post" data-form-id="pets">`,
		`<h2 class="formdef-title">Pets</h2>`,
		`<ul class="formdef-form-errors" role="alert"><li>Try again</li></ul>`,
		`<input type="hidden" name="_method" value="PUT">`,
		`<input type="hidden" name="_csrf" value="tok">`,
		`<section class="formdef-section" data-section="0">`,
		`<h3>About</h3>`,
		`data-field="hasPet" data-widget="radio-group" data-validation="[{&quot;errorMessage&quot;:`,
		`<input id="hasPet_no" name="hasPet" type="radio" value="no" data-option-key="hasPet_no" required checked>`,
		`data-dependencies="[{&quot;action&quot;:&quot;Show&quot;,&quot;sourceQuestionId&quot;:&quot;hasPet&quot;,&quot;triggerValue&quot;:&quot;yes&quot;}]"`,
		`<input id="petName" name="petName" type="text" aria-describedby="petName-hint petName-error" aria-invalid="true">`,
		`<ul id="petName-error" class="formdef-errors" role="alert"><li>Too short</li></ul>`,
		`<option id="kind_dog" value="dog" data-option-key="kind_dog">Dog</option>`,
		`<textarea id="notes" name="notes">a
b</textarea>`,
		`<button type="submit">`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in output:\n%s", want, html)
		}
	}
	if strings.Contains(html, `id="hasPet_yes" name="hasPet" type="radio" value="yes" data-option-key="hasPet_yes" required checked`) {
		t.Fatalf("unselected option rendered checked")
	}
}

func TestRenderGolden(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	form := testsupport.MustCompile(t, testsupport.PetsDefinition())
	out := renderString(t, r, form, render.RenderOptions{
		Errors: map[string][]string{"petName": {"Too short"}},
	})
	testsupport.AssertGolden(t, filepath.Join("testdata", "pets.golden.html"), []byte(out))
}

func TestRenderTheme(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	html := renderString(t, r, compiledPets(t), render.RenderOptions{
		Locale: "es",
		Theme: &theme.RendererConfig{
			Theme:    "acme",
			Variant:  "dark",
			CSSVars:  map[string]string{"accent": "#f00"},
			AssetURL: func(key string) string { return "/assets/" + key },
		},
	})
	for _, want := range []string{
		`lang="es" data-theme="acme" data-theme-variant="dark" style="--accent:#f00">`,
		`<link rel="stylesheet" href="/assets/formdef.stylesheet">`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in output:\n%s", want, html)
		}
	}
}

func TestRenderCustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"templates/form.tpl": {Data: []byte(`{{ form.id }}:{% for section in sections %}{% for field in section.fields %}{{ field.id }}={{ field.widget }};{% endfor %}{% endfor %}`)},
	}
	r, err := New(WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	html := renderString(t, r, compiledPets(t), render.RenderOptions{})
	want := "pets:hasPet=radio-group;petName=input;kind=select;notes=textarea;"
	if html != want {
		t.Fatalf("unexpected output %q", html)
	}
}

func starsRegistry() *widgets.Registry {
	registry := widgets.NewRegistry()
	registry.Register("stars", 10, widgets.OfType(model.QuestionTypeText), widgets.Input)
	return registry
}

func TestRenderCustomWidget(t *testing.T) {
	r, err := New(WithWidgets(starsRegistry()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	form := testsupport.MustCompile(t, testsupport.PetsDefinition())
	html := renderString(t, r, form, render.RenderOptions{})
	for _, want := range []string{
		`data-field="petName" data-widget="stars"`,
		`<input id="petName" name="petName" type="text" data-custom-widget="stars">`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in output:\n%s", want, html)
		}
	}

	files := fstest.MapFS{
		"templates/form.tpl": {Data: []byte(`{% for section in sections %}{% for field in section.fields %}{{ field.id }}={{ field.control }};{% endfor %}{% endfor %}`)},
	}
	r, err = New(WithTemplatesFS(files), WithWidgets(starsRegistry()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := renderString(t, r, form, render.RenderOptions{}); got != "hasPet=radio;petName=custom;" {
		t.Fatalf("unexpected controls %q", got)
	}
}

func TestRenderCustomFilter(t *testing.T) {
	files := fstest.MapFS{
		"templates/form.tpl": {Data: []byte(`{% for section in sections %}{% for field in section.fields %}{{ field.label|formdefShout }}|{% endfor %}{% endfor %}`)},
	}
	r, err := New(
		WithTemplatesFS(files),
		WithFilter("formdefShout", func(input any, _ any) (any, error) {
			return strings.ToUpper(fmt.Sprint(input)), nil
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := renderString(t, r, compiledPets(t), render.RenderOptions{})
	if got != "DO YOU HAVE A PET?|PET NAME|KIND|NOTES|" {
		t.Fatalf("unexpected output %q", got)
	}
}

type plainEngine struct{}

func (plainEngine) RenderTemplate(string, any, ...io.Writer) (string, error) { return "", nil }
func (plainEngine) RenderString(string, any, ...io.Writer) (string, error)   { return "", nil }

func TestFilterNeedsRegistrar(t *testing.T) {
	_, err := New(
		WithTemplateRenderer(plainEngine{}),
		WithFilter("noop", func(input any, _ any) (any, error) { return input, nil }),
	)
	if err == nil {
		t.Fatalf("expected error for engine without filter support")
	}
}

func TestRenderRequiresForm(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Render(context.Background(), nil, render.RenderOptions{}); err == nil {
		t.Fatalf("expected error for nil form")
	}
	if r.Name() != Name || !strings.HasPrefix(r.ContentType(), "text/html") {
		t.Fatalf("unexpected identity %q %q", r.Name(), r.ContentType())
	}
}
