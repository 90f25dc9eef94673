package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdef/pkg/cache"
	"github.com/goliatone/go-formdef/pkg/loader"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/orchestrator"
	"github.com/goliatone/go-formdef/pkg/render"
	"github.com/goliatone/go-formdef/pkg/renderers/jsondoc"
	"github.com/goliatone/go-formdef/pkg/testsupport"
)

func petsStore(t *testing.T) *loader.Store {
	t.Helper()
	store, err := loader.NewStore(testsupport.PetsDefinition())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

type stubRenderer struct {
	name string
	last *model.CompiledForm
}

func (s *stubRenderer) Name() string        { return s.name }
func (s *stubRenderer) ContentType() string { return "text/plain" }
func (s *stubRenderer) Render(_ context.Context, form *model.CompiledForm, _ render.RenderOptions) ([]byte, error) {
	s.last = form
	return []byte(form.ID), nil
}

func TestRenderDefaultsToHTML(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithStore(petsStore(t)))

	out, err := orch.Render(testsupport.Context(), orchestrator.Request{FormID: "pets"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out.Renderer != "html" || !strings.HasPrefix(out.ContentType, "text/html") {
		t.Fatalf("unexpected renderer %q (%s)", out.Renderer, out.ContentType)
	}
	if !strings.Contains(string(out.Body), `data-form-id="pets"`) {
		t.Fatalf("expected form markup, got %s", out.Body)
	}
	if diff := cmp.Diff([]string{"html", "json", "template"}, orch.Renderers()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"pets"}, orch.FormIDs()); diff != "" {
		t.Fatalf("form ids mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateInlineDefinitionAsJSON(t *testing.T) {
	def := testsupport.PetsDefinition()
	orch := orchestrator.New()

	body, err := orch.Generate(context.Background(), orchestrator.Request{Definition: &def, Renderer: jsondoc.Name})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var payload jsondoc.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Form == nil || payload.Form.ID != "pets" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestUnknownFormAndRenderer(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithStore(petsStore(t)))
	ctx := context.Background()

	if _, err := orch.Generate(ctx, orchestrator.Request{FormID: "missing"}); !errors.Is(err, orchestrator.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
	if _, err := orch.Generate(ctx, orchestrator.Request{}); err == nil {
		t.Fatalf("expected error without form id")
	}
	if _, err := orch.Generate(ctx, orchestrator.Request{FormID: "pets", Renderer: "pdf"}); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
}

func TestCompileErrorsKeepTheirKind(t *testing.T) {
	def := model.FormDefinition{
		ID: "loop",
		Sections: []model.FormSection{{Questions: []model.FormQuestion{
			{ID: "a", Type: model.QuestionTypeText, Dependencies: []model.QuestionDependency{
				{SourceQuestionID: "b", TriggerValue: "x", Action: model.ActionShow},
			}},
			{ID: "b", Type: model.QuestionTypeText, Dependencies: []model.QuestionDependency{
				{SourceQuestionID: "a", TriggerValue: "x", Action: model.ActionShow},
			}},
		}}},
	}
	_, err := orchestrator.New().Compile(context.Background(), orchestrator.Request{Definition: &def})
	if !errors.Is(err, model.ErrCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestTransformersRunOnACopy(t *testing.T) {
	store := petsStore(t)
	preset, err := orchestrator.NewPresetTransformerFromFS(fstest.MapFS{
		"preset.json": {Data: []byte(`{"submitButtonText":"Adopt","questions":{"petName":{"label":"Name","required":true}}}`)},
	}, "preset.json")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	stub := &stubRenderer{name: "stub"}
	registry := render.NewRegistry()
	registry.MustRegister(stub)

	scribble := orchestrator.TransformerFunc(func(_ context.Context, def *model.FormDefinition) error {
		questions := def.Sections[0].Questions
		questions[0].Options[0].Label = "Mutated"
		questions[1].Dependencies[0].TriggerValue = "no"
		return nil
	})

	orch := orchestrator.New(
		orchestrator.WithStore(store),
		orchestrator.WithRegistry(registry),
		orchestrator.WithTransformers(preset, scribble),
	)
	if _, err := orch.Generate(context.Background(), orchestrator.Request{FormID: "pets"}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if stub.last.SubmitButtonText != "Adopt" {
		t.Fatalf("expected patched submit text, got %q", stub.last.SubmitButtonText)
	}
	field, _ := stub.last.Field("petName")
	if field.Label != "Name" || !field.Required {
		t.Fatalf("expected patched question, got %+v", field)
	}

	original, _ := store.Form("pets")
	if original.Sections[0].Questions[1].Label != "Pet name" || original.Sections[0].Questions[1].IsRequired {
		t.Fatalf("store definition was mutated: %+v", original.Sections[0].Questions[1])
	}
	if label := original.Sections[0].Questions[0].Options[0].Label; label != "Yes" {
		t.Fatalf("stored option label mutated to %q", label)
	}
	if trigger := original.Sections[0].Questions[1].Dependencies[0].TriggerValue; trigger != "yes" {
		t.Fatalf("stored trigger mutated to %q", trigger)
	}
}

func TestPresetRejectsUnknownQuestion(t *testing.T) {
	preset, err := orchestrator.NewPresetTransformer([]byte(`{"questions":{"nope":{"label":"x"}}}`))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	def := testsupport.PetsDefinition()
	orch := orchestrator.New(orchestrator.WithTransformers(preset))
	if _, err := orch.Generate(context.Background(), orchestrator.Request{Definition: &def}); err == nil {
		t.Fatalf("expected error for unknown question")
	}
	if _, err := orchestrator.NewPresetTransformer([]byte("  ")); err == nil {
		t.Fatalf("expected error for empty preset")
	}
}

func TestMemoizedCompiler(t *testing.T) {
	store, err := cache.NewMemoryStore(8, cache.DefaultConfig())
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	memo := cache.New(nil, store)
	orch := orchestrator.New(orchestrator.WithStore(petsStore(t)), orchestrator.WithCompiler(memo))

	for i := 0; i < 3; i++ {
		if _, err := orch.Generate(context.Background(), orchestrator.Request{FormID: "pets"}); err != nil {
			t.Fatalf("generate %d: %v", i, err)
		}
	}
	if diff := cmp.Diff(cache.Stats{Hits: 2, Misses: 1}, memo.Stats()); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateExtraRendererFails(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithRenderers(&stubRenderer{name: "html"}))
	def := testsupport.PetsDefinition()
	if _, err := orch.Generate(context.Background(), orchestrator.Request{Definition: &def}); !errors.Is(err, render.ErrDuplicateRenderer) {
		t.Fatalf("expected registration error, got %v", err)
	}
}
